package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// CacheRepository is the optional Redis side cache for query-time
// artifacts: query fingerprints and assembled context packages. Keys are
// content hashes and every entry carries a bounded TTL, so the cache is
// never a source of truth. A nil CacheRepository is valid and means
// caching is disabled.
type CacheRepository interface {
	GetVector(ctx context.Context, text string) ([]float32, bool)
	SetVector(ctx context.Context, text string, vector []float32)
	GetJSON(ctx context.Context, key string, dest interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

type redisCacheRepository struct {
	redisClient  *redis.Client
	embeddingTTL time.Duration
}

// NewCacheRepository creates a Redis-backed cache repository.
func NewCacheRepository(redisClient *redis.Client, embeddingTTL time.Duration) CacheRepository {
	if embeddingTTL <= 0 {
		embeddingTTL = 24 * time.Hour
	}
	return &redisCacheRepository{redisClient: redisClient, embeddingTTL: embeddingTTL}
}

// ContentKey builds a cache key from a namespace and the SHA-256 of the
// content it derives from.
func ContentKey(namespace, content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%s:%s", namespace, hex.EncodeToString(sum[:]))
}

// GetVector returns a cached query fingerprint, if present.
func (r *redisCacheRepository) GetVector(ctx context.Context, text string) ([]float32, bool) {
	data, err := r.redisClient.Get(ctx, ContentKey("embed", text)).Result()
	if err != nil {
		return nil, false
	}
	var vector []float32
	if err := json.Unmarshal([]byte(data), &vector); err != nil {
		return nil, false
	}
	return vector, true
}

// SetVector caches a query fingerprint. Failures are ignored; the cache
// is best-effort.
func (r *redisCacheRepository) SetVector(ctx context.Context, text string, vector []float32) {
	data, err := json.Marshal(vector)
	if err != nil {
		return
	}
	_ = r.redisClient.Set(ctx, ContentKey("embed", text), data, r.embeddingTTL).Err()
}

// GetJSON loads a cached JSON value into dest.
func (r *redisCacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	data, err := r.redisClient.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(data), dest) == nil
}

// SetJSON stores a JSON value under the key with the given TTL.
func (r *redisCacheRepository) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = r.redisClient.Set(ctx, key, data, ttl).Err()
}
