package user

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pustakalu_backend/internal/database"
	"pustakalu_backend/internal/models"
)

// RegisterOAuthProviders wires the Google provider from env. Called once at
// startup; providers without credentials are skipped.
func RegisterOAuthProviders() {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		log.Println("ℹ️ Google OAuth not configured, skipping")
		return
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	goth.UseProviders(google.New(clientID, clientSecret, baseURL+"/api/auth/google/callback", "email", "profile"))
	log.Println("✅ Google OAuth configured")
}

// BeginOAuth redirects the browser to the provider's consent screen.
func BeginOAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no provider specified"})
		return
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// OAuthCallback completes the provider handshake and logs the account in,
// creating it on first sight of the email.
func OAuthCallback(c *gin.Context) {
	provider := c.Param("provider")
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ OAuth callback failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication failed"})
		return
	}
	if gothUser.Email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "provider did not return an email"})
		return
	}

	ctx := c.Request.Context()
	var user models.User
	err = database.Users().FindOne(ctx, bson.M{"email": gothUser.Email}).Decode(&user)
	if err != nil {
		user = models.User{
			ID:        primitive.NewObjectID(),
			Name:      gothUser.Name,
			Email:     gothUser.Email,
			Role:      "user",
			Provider:  provider,
			CreatedAt: time.Now(),
		}
		if _, err := database.Users().InsertOne(ctx, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create account"})
			return
		}
		log.Printf("✅ new %s account for %s", provider, gothUser.Email)
	}

	touchLastLogin(c, user.ID)
	respondWithTokens(c, http.StatusOK, &user)
}
