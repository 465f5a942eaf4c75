package redis

import (
	"context"
	"encoding/json"
	"time"

	"ai-qa-be/internal/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

// EmbeddingCacheRepository shares query vectors between instances.
type EmbeddingCacheRepository struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger logger.ILogger
}

func NewEmbeddingCacheRepository(rdb *goredis.Client, ttl time.Duration, log logger.ILogger) *EmbeddingCacheRepository {
	return &EmbeddingCacheRepository{rdb: rdb, ttl: ttl, logger: log}
}

func (r *EmbeddingCacheRepository) Get(ctx context.Context, key string) ([]float32, bool) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			r.logger.Warn("EMBEDDING_CACHE", "Redis get failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}

	var values []float32
	if err := json.Unmarshal(raw, &values); err != nil {
		r.logger.Warn("EMBEDDING_CACHE", "Dropping undecodable cache entry", map[string]interface{}{"key": key})
		r.rdb.Del(ctx, key)
		return nil, false
	}
	return values, true
}

func (r *EmbeddingCacheRepository) Set(ctx context.Context, key string, values []float32) {
	raw, err := json.Marshal(values)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn("EMBEDDING_CACHE", "Redis set failed", map[string]interface{}{"error": err.Error()})
	}
}
