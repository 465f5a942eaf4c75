package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"ai-qa-be/pkg/embedding"
)

// Store keeps computed vectors by key. A failed or missing lookup is a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Set(ctx context.Context, key string, values []float32)
}

// CachedProvider serves repeated texts from a Store and only calls the
// wrapped provider on a miss.
type CachedProvider struct {
	next      embedding.EmbeddingProvider
	store     Store
	namespace string
}

var _ embedding.EmbeddingProvider = &CachedProvider{}

// New wraps next. namespace separates vectors of different models sharing a
// store.
func New(next embedding.EmbeddingProvider, store Store, namespace string) *CachedProvider {
	return &CachedProvider{next: next, store: store, namespace: namespace}
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	key := Key(p.namespace, taskType, text)
	if values, ok := p.store.Get(ctx, key); ok {
		return &embedding.EmbeddingResponse{Values: values}, nil
	}

	res, err := p.next.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	p.store.Set(ctx, key, res.Values)
	return res, nil
}

// Key derives the cache key for one text.
func Key(namespace, taskType, text string) string {
	sum := sha256.Sum256([]byte(namespace + "\x00" + taskType + "\x00" + text))
	return "embedding:" + hex.EncodeToString(sum[:])
}
