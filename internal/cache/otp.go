package cache

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"pustakalu_backend/internal/database"
)

// OTP state lives in Redis with a TTL instead of an in-process map, so codes
// survive restarts and work across multiple instances.
const (
	otpTTL         = 5 * time.Minute
	otpMaxAttempts = 5
	otpResendGap   = 60 * time.Second
)

var (
	ErrOTPNotFound      = errors.New("no active code for this identity")
	ErrOTPMismatch      = errors.New("incorrect code")
	ErrOTPTooMany       = errors.New("too many wrong attempts, request a new code")
	ErrOTPResendTooFast = errors.New("a code was sent recently, wait before requesting another")
)

// IssueOTP generates a 6-digit code for the identity (email or phone) and
// stores it for otpTTL. At most one code per identity per resend window.
func IssueOTP(ctx context.Context, identity string) (string, error) {
	gapKey := "otp_sent:" + identity
	if database.Redis.Exists(ctx, gapKey).Val() > 0 {
		return "", ErrOTPResendTooFast
	}

	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	pipe := database.Redis.Pipeline()
	pipe.Set(ctx, "otp:"+identity, code, otpTTL)
	pipe.Del(ctx, "otp_attempts:"+identity)
	pipe.Set(ctx, gapKey, "1", otpResendGap)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return code, nil
}

// VerifyOTP checks a submitted code. Wrong attempts are counted; the code is
// burned after otpMaxAttempts failures or one success.
func VerifyOTP(ctx context.Context, identity, code string) error {
	stored, err := database.Redis.Get(ctx, "otp:"+identity).Result()
	if errors.Is(err, redis.Nil) {
		return ErrOTPNotFound
	}
	if err != nil {
		return err
	}

	if stored != code {
		attempts, _ := database.Redis.Incr(ctx, "otp_attempts:"+identity).Result()
		database.Redis.Expire(ctx, "otp_attempts:"+identity, otpTTL)
		if attempts >= otpMaxAttempts {
			database.Redis.Del(ctx, "otp:"+identity, "otp_attempts:"+identity)
			return ErrOTPTooMany
		}
		return ErrOTPMismatch
	}

	database.Redis.Del(ctx, "otp:"+identity, "otp_attempts:"+identity, "otp_sent:"+identity)
	return nil
}
