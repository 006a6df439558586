package store

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kochabx/workforce/store/redis"
)

// Redis 令牌存在 Redis 的一个键上
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: key}
}

func (r *Redis) Get(ctx context.Context) (string, error) {
	token, err := r.client.UniversalClient().Get(ctx, r.key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrTokenNotFound
	}
	return token, err
}

func (r *Redis) Set(ctx context.Context, token string) error {
	return r.client.UniversalClient().Set(ctx, r.key, token, 0).Err()
}

func (r *Redis) Clear(ctx context.Context) error {
	return r.client.UniversalClient().Del(ctx, r.key).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
