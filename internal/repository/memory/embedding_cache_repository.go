package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

type EmbeddingCacheRepository struct {
	cache *cache.Cache
}

func NewEmbeddingCacheRepository(ttl time.Duration) *EmbeddingCacheRepository {
	// purge expired vectors every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &EmbeddingCacheRepository{
		cache: c,
	}
}

func (r *EmbeddingCacheRepository) Set(_ context.Context, key string, values []float32) {
	r.cache.Set(key, values, cache.DefaultExpiration)
}

func (r *EmbeddingCacheRepository) Get(_ context.Context, key string) ([]float32, bool) {
	if x, found := r.cache.Get(key); found {
		return x.([]float32), true
	}
	return nil, false
}

func (r *EmbeddingCacheRepository) Delete(key string) {
	r.cache.Delete(key)
}
