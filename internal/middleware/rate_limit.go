package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pustakalu_backend/internal/database"
)

// Per-endpoint-class budgets. Counters and cooldowns live in Redis, so limits
// hold across restarts and instances.
const (
	apiMaxRequests = 100
	apiWindow      = 1 * time.Minute

	loginMaxAttempts = 5
	loginCooldown    = 15 * time.Minute

	otpMaxRequests = 3
	otpCooldown    = 10 * time.Minute
)

// APIRateLimit is the fixed per-IP request budget in front of all routes.
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "api_requests:" + c.ClientIP()

		requests, _ := database.Redis.Get(ctx, key).Int()
		if requests >= apiMaxRequests {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false, "message": "too many requests, try again in a minute",
			})
			return
		}

		pipe := database.Redis.Pipeline()
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, apiWindow)
		pipe.Exec(ctx)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", apiMaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", apiMaxRequests-requests-1))
		c.Next()
	}
}

// LoginRateLimit counts failed password logins per identity and applies a
// cooldown after too many failures. Success resets the counter.
func LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := peekIdentity(c)
		if identity == "" {
			c.Next()
			return
		}

		ctx := context.Background()
		key := "login_attempts:" + identity
		cooldownKey := "login_cooldown:" + identity

		if database.Redis.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := database.Redis.TTL(ctx, cooldownKey).Val()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": fmt.Sprintf("too many failed attempts, retry in %d minutes", int(ttl.Minutes())+1),
			})
			return
		}

		attempts, _ := database.Redis.Get(ctx, key).Int()
		if attempts >= loginMaxAttempts {
			database.Redis.Set(ctx, cooldownKey, "1", loginCooldown)
			database.Redis.Del(ctx, key)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": fmt.Sprintf("too many failed attempts, locked for %d minutes", int(loginCooldown.Minutes())),
			})
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			database.Redis.Incr(ctx, key)
			database.Redis.Expire(ctx, key, loginCooldown)
		case http.StatusOK:
			database.Redis.Del(ctx, key, cooldownKey)
		}
	}
}

// OTPRateLimit caps code requests per identity.
func OTPRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := peekIdentity(c)
		if identity == "" {
			c.Next()
			return
		}

		ctx := context.Background()
		key := "otp_requests:" + identity

		requests, _ := database.Redis.Get(ctx, key).Int()
		if requests >= otpMaxRequests {
			ttl := database.Redis.TTL(ctx, key).Val()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": fmt.Sprintf("too many code requests, retry in %d minutes", int(ttl.Minutes())+1),
			})
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			database.Redis.Incr(ctx, key)
			database.Redis.Expire(ctx, key, otpCooldown)
		}
	}
}

// peekIdentity reads email/phone from the JSON body without consuming it.
func peekIdentity(c *gin.Context) string {
	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	var input struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if json.Unmarshal(bodyBytes, &input) != nil {
		return ""
	}
	if input.Email != "" {
		return input.Email
	}
	return input.Phone
}
