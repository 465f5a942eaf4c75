package mapper

import (
	"time"

	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type EmbeddingMapper struct{}

func NewEmbeddingMapper() *EmbeddingMapper {
	return &EmbeddingMapper{}
}

func (m *EmbeddingMapper) ToEntity(e *model.Embedding) *entity.Embedding {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		u := e.UpdatedAt
		updatedAt = &u
	}

	return &entity.Embedding{
		Id:             e.Id,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		Model:          e.Model,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *EmbeddingMapper) ToModel(e *entity.Embedding) *model.Embedding {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.Embedding{
		Id:             e.Id,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		Model:          e.Model,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *EmbeddingMapper) ToEntities(embeddings []*model.Embedding) []*entity.Embedding {
	entities := make([]*entity.Embedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
