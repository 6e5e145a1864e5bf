package cache

import (
	"context"
	"time"

	"pustakalu_backend/internal/database"
)

const refreshTokenTTL = 30 * 24 * time.Hour

// StoreRefreshToken keeps the opaque refresh token server-side, keyed by user.
func StoreRefreshToken(ctx context.Context, userID, token string) error {
	return database.Redis.Set(ctx, "refresh:"+userID, token, refreshTokenTTL).Err()
}

func GetRefreshToken(ctx context.Context, userID string) (string, error) {
	return database.Redis.Get(ctx, "refresh:"+userID).Result()
}

func DeleteRefreshToken(ctx context.Context, userID string) error {
	return database.Redis.Del(ctx, "refresh:"+userID).Err()
}

// BlacklistToken marks a jti as revoked until its natural expiry.
func BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return database.Redis.Set(ctx, "blacklist:"+tokenID, "1", ttl).Err()
}

func IsTokenBlacklisted(ctx context.Context, tokenID string) bool {
	return database.Redis.Exists(ctx, "blacklist:"+tokenID).Val() > 0
}
