package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pustakalu_backend/internal/cache"
	"pustakalu_backend/internal/utils"
)

// AuthRequired accepts the session token from an Authorization bearer header
// or the "token" cookie, validates it, and puts the claims on the context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			return
		}

		claims, err := utils.ParseAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or expired token"})
			return
		}
		if cache.IsTokenBlacklisted(c.Request.Context(), claims.ID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "token revoked"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("phone", claims.Phone)
		c.Set("role", claims.Role)
		c.Set("token_id", claims.ID)
		c.Next()
	}
}

// RequireAdmin must run after AuthRequired.
func RequireAdmin(c *gin.Context) {
	if c.GetString("role") != "admin" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "admin access required"})
		return
	}
	c.Next()
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
