package cacheredis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "attestd:notary_key:"

// Cache stores notary keys in redis so replicas share one fetch per notary.
type Cache struct {
	client *redis.Client
}

func New(addr, password string, db int) (*Cache, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{client: client}, nil
}

func (c *Cache) Get(ctx context.Context, url string) (string, bool, error) {
	pem, err := c.client.Get(ctx, keyPrefix+url).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return pem, true, nil
}

func (c *Cache) Put(ctx context.Context, url, pem string, ttl time.Duration) error {
	return c.client.Set(ctx, keyPrefix+url, pem, ttl).Err()
}
