package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Embedding rows are hard-deleted together with their text. The column has
// no fixed dimension so the embedding model can change without a migration.
type Embedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector;not null"`
	Model          string          `gorm:"type:varchar(100)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (Embedding) TableName() string {
	return "embeddings"
}
