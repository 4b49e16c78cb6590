package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/modulearn/backend/internal/platform/config"
	"github.com/modulearn/backend/internal/platform/logger"
)

// SessionStore keeps refresh tokens and the access-token denylist in redis so
// logout takes effect across replicas immediately instead of waiting for the
// JWT to expire.
type SessionStore interface {
	SaveRefreshToken(ctx context.Context, userID uuid.UUID, refreshToken string, ttl time.Duration) error
	GetRefreshTokenUserID(ctx context.Context, refreshToken string) (uuid.UUID, error)
	DeleteRefreshToken(ctx context.Context, refreshToken string) error
	RevokeAccessToken(ctx context.Context, accessToken string, ttl time.Duration) error
	IsAccessTokenRevoked(ctx context.Context, accessToken string) (bool, error)
	Close() error
}

type sessionStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewSessionStore(cfg *config.Config, baseLog *logger.Logger) (SessionStore, error) {
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &sessionStore{
		log: baseLog.With("service", "RedisSessionStore"),
		rdb: rdb,
	}, nil
}

func refreshKey(token string) string { return "session:refresh:" + token }
func revokedKey(token string) string { return "session:revoked:" + token }

func (s *sessionStore) SaveRefreshToken(ctx context.Context, userID uuid.UUID, refreshToken string, ttl time.Duration) error {
	if refreshToken == "" || userID == uuid.Nil {
		return fmt.Errorf("refresh token and user id required")
	}
	return s.rdb.Set(ctx, refreshKey(refreshToken), userID.String(), ttl).Err()
}

func (s *sessionStore) GetRefreshTokenUserID(ctx context.Context, refreshToken string) (uuid.UUID, error) {
	raw, err := s.rdb.Get(ctx, refreshKey(refreshToken)).Result()
	if err == goredis.Nil {
		return uuid.Nil, fmt.Errorf("refresh token not found or expired")
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(raw)
}

func (s *sessionStore) DeleteRefreshToken(ctx context.Context, refreshToken string) error {
	return s.rdb.Del(ctx, refreshKey(refreshToken)).Err()
}

func (s *sessionStore) RevokeAccessToken(ctx context.Context, accessToken string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, nothing to deny.
		return nil
	}
	return s.rdb.Set(ctx, revokedKey(accessToken), "1", ttl).Err()
}

func (s *sessionStore) IsAccessTokenRevoked(ctx context.Context, accessToken string) (bool, error) {
	_, err := s.rdb.Get(ctx, revokedKey(accessToken)).Result()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *sessionStore) Close() error {
	return s.rdb.Close()
}
