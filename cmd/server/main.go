package main

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth/gothic"

	"pustakalu_backend/internal/config"
	"pustakalu_backend/internal/database"
	"pustakalu_backend/internal/gateway"
	"pustakalu_backend/internal/handlers/admin"
	"pustakalu_backend/internal/handlers/payments"
	"pustakalu_backend/internal/handlers/user"
	"pustakalu_backend/internal/routes"
	"pustakalu_backend/internal/service"
	"pustakalu_backend/internal/store"
)

func main() {
	config.Load()

	database.Connect()

	rzp, err := gateway.New()
	if err != nil {
		log.Fatalf("❌ Razorpay init failed: %v", err)
	}
	log.Println("✅ Razorpay initialised")

	initSessions()
	user.RegisterOAuthProviders()

	orders := service.NewOrders(
		store.NewMongoBooks(database.Books()),
		store.NewMongoOrders(database.Orders()),
		rzp,
		store.NewMongoTx(database.MongoClient),
	)
	payments.Setup(orders)
	user.Setup(orders)
	admin.Setup(orders)

	r := gin.Default()
	routes.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Telugu books backend listening on port", port)
	r.Run(":" + port)
}

// initSessions backs gothic's OAuth handshake with a cookie store.
func initSessions() {
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("❌ SESSION_SECRET missing from .env")
	}

	cookieStore := sessions.NewCookieStore([]byte(sessionSecret))
	cookieStore.MaxAge(86400 * 30)
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   os.Getenv("GIN_MODE") == "release",
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = cookieStore

	gothic.GetProviderName = func(req *http.Request) (string, error) {
		if provider := req.URL.Query().Get("provider"); provider != "" {
			return provider, nil
		}
		if provider := req.FormValue("provider"); provider != "" {
			return provider, nil
		}
		return "", errors.New("provider not found")
	}
}
