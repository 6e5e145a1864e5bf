package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pustakalu_backend/internal/handlers/admin"
	"pustakalu_backend/internal/handlers/book"
	"pustakalu_backend/internal/handlers/payments"
	"pustakalu_backend/internal/handlers/user"
	"pustakalu_backend/internal/middleware"
)

// RegisterRoutes wires the whole HTTP surface onto the engine.
func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://telugubooks.org"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.APIRateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// catalog (public)
	api.GET("/books", book.ListBooks)
	api.GET("/books/featured", book.GetFeaturedBooks)
	api.GET("/books/search", book.SearchBooks)
	api.GET("/books/:id", book.GetBook)

	// auth
	auth := api.Group("/auth")
	auth.POST("/register", user.Register)
	auth.POST("/login", middleware.LoginRateLimit(), user.Login)
	auth.POST("/refresh", user.RefreshAccessToken)
	auth.POST("/logout", middleware.AuthRequired(), user.Logout)
	auth.POST("/otp/request", middleware.OTPRateLimit(), user.RequestOTP)
	auth.POST("/otp/verify", user.VerifyOTPLogin)
	auth.GET("/:provider", user.BeginOAuth)
	auth.GET("/:provider/callback", user.OAuthCallback)

	// account (authenticated)
	me := api.Group("/users/me", middleware.AuthRequired())
	me.GET("", user.GetProfile)
	me.PUT("", user.UpdateProfile)
	me.GET("/addresses", user.ListAddresses)
	me.POST("/addresses", user.AddAddress)
	me.PUT("/addresses/:addressId", user.UpdateAddress)
	me.DELETE("/addresses/:addressId", user.DeleteAddress)
	me.PUT("/addresses/:addressId/default", user.SetDefaultAddress)
	me.GET("/wishlist", user.GetWishlist)
	me.POST("/wishlist/:bookId", user.AddToWishlist)
	me.DELETE("/wishlist/:bookId", user.RemoveFromWishlist)

	// reviews (authenticated)
	api.POST("/books/:id/reviews", middleware.AuthRequired(), book.CreateReview)

	// checkout + payment callbacks (authenticated)
	pay := api.Group("/payments", middleware.AuthRequired())
	pay.POST("/create-order", payments.CreateOrder)
	pay.POST("/verify", payments.Verify)
	pay.POST("/failure", payments.RecordFailure)

	// orders (authenticated)
	orders := api.Group("/orders", middleware.AuthRequired())
	orders.GET("", user.GetMyOrders)
	orders.GET("/:orderId", user.GetOrder)
	orders.PUT("/:orderId/cancel", user.CancelOrder)
	orders.PUT("/:orderId/status", middleware.RequireAdmin, admin.UpdateOrderStatus)

	// admin console
	adm := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	adm.GET("/dashboard", admin.Dashboard)
	adm.GET("/orders", admin.ListOrders)
	adm.POST("/books", admin.CreateBook)
	adm.PUT("/books/:id", admin.UpdateBook)
	adm.PUT("/books/:id/stock", admin.RestockBook)
	adm.DELETE("/books/:id", admin.DeactivateBook)
}
