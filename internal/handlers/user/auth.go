package user

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pustakalu_backend/internal/cache"
	"pustakalu_backend/internal/database"
	"pustakalu_backend/internal/models"
	"pustakalu_backend/internal/utils"
)

// Register creates a local account. Identity is email OR phone; at least one
// is required.
func Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "password of at least 6 characters is required", "details": err.Error()})
		return
	}

	user := models.User{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      "user",
		Provider:  "local",
		CreatedAt: time.Now(),
	}
	if err := user.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if existing := findByIdentity(c, req.Email, req.Phone); existing != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "an account with this email or phone already exists"})
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create account"})
		return
	}
	user.Password = hashed
	user.ID = primitive.NewObjectID()

	if _, err := database.Users().InsertOne(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create account"})
		return
	}

	respondWithTokens(c, http.StatusCreated, &user)
}

// Login authenticates a local account by email or phone + password.
func Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "password is required"})
		return
	}

	user := findByIdentity(c, req.Email, req.Phone)
	if user == nil || user.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})
		return
	}
	ok, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})
		return
	}

	touchLastLogin(c, user.ID)
	respondWithTokens(c, http.StatusOK, user)
}

// RefreshAccessToken swaps a valid refresh token for a new access token.
func RefreshAccessToken(c *gin.Context) {
	var req struct {
		UserID       string `json:"userId" binding:"required"`
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userId and refreshToken are required"})
		return
	}

	stored, err := cache.GetRefreshToken(c.Request.Context(), req.UserID)
	if err != nil || stored != req.RefreshToken {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or expired refresh token"})
		return
	}

	id, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid user id"})
		return
	}
	var user models.User
	if err := database.Users().FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&user); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "account not found"})
		return
	}

	token, _, err := utils.GenerateAccessToken(user.ID.Hex(), user.Email, user.Phone, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"token": token}})
}

// Logout revokes the current access token and drops the refresh token.
func Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	tokenID := c.GetString("token_id")

	ctx := c.Request.Context()
	if err := cache.DeleteRefreshToken(ctx, userID); err != nil {
		log.Printf("⚠️ refresh token delete failed for %s: %v", userID, err)
	}
	// blacklist for the access token's remaining lifetime
	if err := cache.BlacklistToken(ctx, tokenID, 24*time.Hour); err != nil {
		log.Printf("⚠️ token blacklist failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

// GetProfile returns the caller's account.
func GetProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// UpdateProfile changes name/email/phone, keeping the identity invariant.
func UpdateProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
		Phone *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid payload"})
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if err := user.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	_, err := database.Users().UpdateOne(c.Request.Context(), bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{"name": user.Name, "email": user.Email, "phone": user.Phone},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// ------- shared helpers -------

// respondWithTokens issues the access/refresh pair and writes the login body.
func respondWithTokens(c *gin.Context, status int, user *models.User) {
	token, _, err := utils.GenerateAccessToken(user.ID.Hex(), user.Email, user.Phone, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to issue token"})
		return
	}
	refresh, err := utils.GenerateRefreshToken()
	if err == nil {
		if err := cache.StoreRefreshToken(c.Request.Context(), user.ID.Hex(), refresh); err != nil {
			log.Printf("⚠️ refresh token store failed: %v", err)
		}
	}

	c.JSON(status, gin.H{
		"success": true,
		"data": gin.H{
			"token":        token,
			"refreshToken": refresh,
			"user": gin.H{
				"id":    user.ID.Hex(),
				"name":  user.Name,
				"email": user.Email,
				"phone": user.Phone,
				"role":  user.Role,
			},
		},
	})
}

// findByIdentity looks an account up by email or phone. Nil when absent.
func findByIdentity(c *gin.Context, email, phone string) *models.User {
	or := []bson.M{}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if phone != "" {
		or = append(or, bson.M{"phone": phone})
	}
	if len(or) == 0 {
		return nil
	}

	var user models.User
	if err := database.Users().FindOne(c.Request.Context(), bson.M{"$or": or}).Decode(&user); err != nil {
		return nil
	}
	return &user
}

// currentUser loads the authenticated account; writes the error response and
// returns nil when that fails.
func currentUser(c *gin.Context) *models.User {
	id, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
		return nil
	}
	var user models.User
	if err := database.Users().FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "account not found"})
		return nil
	}
	return &user
}

func touchLastLogin(c *gin.Context, id primitive.ObjectID) {
	_, err := database.Users().UpdateOne(c.Request.Context(), bson.M{"_id": id},
		bson.M{"$set": bson.M{"lastLoginAt": time.Now()}})
	if err != nil {
		log.Printf("⚠️ lastLoginAt update failed: %v", err)
	}
}
