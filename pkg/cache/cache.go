package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/config"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/domain/embedding"
	"github.com/go-redis/redis/v8"
)

// Cache wraps redis with a write-through local map for hot keys.
type Cache struct {
	client     *redis.Client
	localCache sync.Map
}

const EmbeddingKeyPattern = "embedding:%s:%s" // model, entity id

func NewCache(cfg config.RedisConfig) (*Cache, error) {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}
	client := redis.NewClient(options)

	return &Cache{
		client:     client,
		localCache: sync.Map{},
	}, nil
}

func NewCacheFromClient(client *redis.Client) *Cache {
	return &Cache{client: client, localCache: sync.Map{}}
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if value, ok := c.localCache.Load(key); ok {
		str, err := safeStringCast(value)
		if err != nil {
			return "", fmt.Errorf("cache value error: %w", err)
		}
		return str, nil
	}
	return c.client.Get(ctx, key).Result()
}

func (c *Cache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return err
	}
	c.localCache.Store(key, value)
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return err
	}
	c.localCache.Delete(key)
	return nil
}

// GetEmbedding returns the cached vector for an entity, or redis.Nil when absent.
func (c *Cache) GetEmbedding(ctx context.Context, model, entityID string) (*embedding.Embedding, error) {
	key := fmt.Sprintf(EmbeddingKeyPattern, model, entityID)
	res, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	emb := new(embedding.Embedding)
	if err := json.Unmarshal([]byte(res), emb); err != nil {
		return nil, err
	}
	return emb, nil
}

func (c *Cache) SaveEmbedding(ctx context.Context, model string, emb *embedding.Embedding, ttl time.Duration) error {
	key := fmt.Sprintf(EmbeddingKeyPattern, model, emb.EntityID)
	raw, err := json.Marshal(emb)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, string(raw), ttl)
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

func safeStringCast(value interface{}) (string, error) {
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid type assertion to string")
	}
	return str, nil
}
