package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"
)

// Auth resolves bearer tokens into account emails. Tokens live in Redis
// hashes written by the token manager; the upstream identity provider is
// out of scope here, the server only ever sees opaque tokens.
type Auth struct {
	enabled     bool
	redis       *redis.Client
	tokenHeader string
}

func NewAuth(config *Config) (*Auth, error) {
	if !config.Server.EnableAuth {
		return &Auth{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Auth{
		enabled:     true,
		redis:       client,
		tokenHeader: config.Auth.TokenHeader,
	}, nil
}

func (a *Auth) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// ResolveEmail looks the token up and returns the email behind it.
func (a *Auth) ResolveEmail(ctx context.Context, token string) (string, error) {
	if !a.enabled {
		return "", fmt.Errorf("auth is disabled")
	}

	key := fmt.Sprintf(identityKeyTpl, token)

	fields, err := a.redis.HGetAll(ctx, key).Result()
	if err == redis.Nil || len(fields) == 0 {
		logger.Debug.Printf("Token not found for key: %s", key)
		return "", fmt.Errorf("token not found")
	}
	if err != nil {
		logger.Debug.Printf("Redis error: %v", err)
		return "", fmt.Errorf("redis error: %w", err)
	}

	email := fields["email"]
	if email == "" {
		logger.Debug.Printf("Token %s has no email attached", key)
		return "", fmt.Errorf("invalid token")
	}

	return email, nil
}
