package mapper

import (
	"time"

	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/model"

	"gorm.io/gorm"
)

type TextMapper struct{}

func NewTextMapper() *TextMapper {
	return &TextMapper{}
}

func (m *TextMapper) ToEntity(t *model.Text) *entity.Text {
	if t == nil {
		return nil
	}

	var deletedAt *time.Time
	if t.DeletedAt.Valid {
		d := t.DeletedAt.Time
		deletedAt = &d
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		u := t.UpdatedAt
		updatedAt = &u
	}

	return &entity.Text{
		Id:          t.Id,
		Name:        t.Name,
		Content:     t.Content,
		FolderId:    t.FolderId,
		EmbeddingId: t.EmbeddingId,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   t.DeletedAt.Valid,
	}
}

func (m *TextMapper) ToModel(t *entity.Text) *model.Text {
	if t == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if t.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *t.DeletedAt, Valid: true}
	} else if t.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	return &model.Text{
		Id:          t.Id,
		Name:        t.Name,
		Content:     t.Content,
		FolderId:    t.FolderId,
		EmbeddingId: t.EmbeddingId,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *TextMapper) ToEntities(texts []*model.Text) []*entity.Text {
	entities := make([]*entity.Text, len(texts))
	for i, t := range texts {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
