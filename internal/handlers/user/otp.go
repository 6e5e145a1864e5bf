package user

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pustakalu_backend/internal/cache"
	"pustakalu_backend/internal/database"
	"pustakalu_backend/internal/models"
	"pustakalu_backend/internal/utils"
)

// RequestOTP issues a 6-digit login code for an email or phone identity.
// Email codes go out over SMTP; phone codes are logged until an SMS provider
// is wired in.
func RequestOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || (req.Email == "" && req.Phone == "") {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "email or phone is required"})
		return
	}

	identity := req.Email
	if identity == "" {
		identity = req.Phone
	}

	code, err := cache.IssueOTP(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, cache.ErrOTPResendTooFast) {
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to send code"})
		return
	}

	if req.Email != "" {
		if err := utils.SendOTPEmail(req.Email, code); err != nil {
			log.Printf("❌ OTP email to %s failed: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to send code"})
			return
		}
	} else {
		// TODO: plug in the SMS provider once the account is provisioned
		log.Printf("📤 OTP for %s: %s", req.Phone, code)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "code sent"})
}

// VerifyOTPLogin checks the submitted code and logs the identity in, creating
// the account on first use.
func VerifyOTPLogin(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
		Code  string `json:"code" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || (req.Email == "" && req.Phone == "") {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "email or phone and a 6-digit code are required"})
		return
	}

	identity := req.Email
	if identity == "" {
		identity = req.Phone
	}

	if err := cache.VerifyOTP(c.Request.Context(), identity, req.Code); err != nil {
		switch {
		case errors.Is(err, cache.ErrOTPNotFound), errors.Is(err, cache.ErrOTPMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
		case errors.Is(err, cache.ErrOTPTooMany):
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "verification failed"})
		}
		return
	}

	user := findByIdentity(c, req.Email, req.Phone)
	if user == nil {
		user = &models.User{
			ID:        primitive.NewObjectID(),
			Email:     req.Email,
			Phone:     req.Phone,
			Role:      "user",
			Provider:  "otp",
			CreatedAt: time.Now(),
		}
		if _, err := database.Users().InsertOne(c.Request.Context(), user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create account"})
			return
		}
	}

	touchLastLogin(c, user.ID)
	respondWithTokens(c, http.StatusOK, user)
}
