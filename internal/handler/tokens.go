package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker 记录已登出的令牌，直到令牌自然过期
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RedisRevoker struct {
	client  *redis.Client
	timeout time.Duration
}

func NewRedisRevoker(client *redis.Client, timeout time.Duration) *RedisRevoker {
	return &RedisRevoker{client: client, timeout: timeout}
}

func revokedTokenKey(jti string) string {
	return fmt.Sprintf("revoked_token_%s", jti)
}

func (rr *RedisRevoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, rr.timeout)
	defer cancel()

	return rr.client.Set(ctx, revokedTokenKey(jti), 1, ttl).Err()
}

func (rr *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, rr.timeout)
	defer cancel()

	if err := rr.client.Get(ctx, revokedTokenKey(jti)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
