package contract

import (
	"context"

	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/repository/specification"

	"github.com/google/uuid"
)

type EmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.Embedding) error
	Update(ctx context.Context, embedding *entity.Embedding) error
	DeleteByIds(ctx context.Context, ids []uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Embedding, error)
	// ListAll returns the whole corpus ordered by creation time, then id.
	ListAll(ctx context.Context) ([]*entity.Embedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
