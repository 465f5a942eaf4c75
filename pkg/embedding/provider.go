package embedding

import "context"

// Task types tell providers that distinguish them whether a text is a stored
// document or a search query.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

type EmbeddingResponse struct {
	Values []float32 `json:"values"`
}

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}
