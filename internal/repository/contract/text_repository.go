package contract

import (
	"context"

	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TextRepository interface {
	Create(ctx context.Context, text *entity.Text) error
	Update(ctx context.Context, text *entity.Text) error
	// SetEmbeddingId updates only the embedding link so a concurrent content
	// edit is never overwritten.
	SetEmbeddingId(ctx context.Context, id uuid.UUID, embeddingId *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByFolderIds(ctx context.Context, folderIds []uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Text, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Text, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
