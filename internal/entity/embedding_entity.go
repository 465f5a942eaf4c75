package entity

import (
	"time"

	"github.com/google/uuid"
)

type Embedding struct {
	Id             uuid.UUID
	EmbeddingValue []float32
	Model          string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
