package implementation

import (
	"context"
	"errors"

	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/mapper"
	"ai-qa-be/internal/model"
	"ai-qa-be/internal/repository/contract"
	"ai-qa-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TextRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TextMapper
}

func NewTextRepository(db *gorm.DB) contract.TextRepository {
	return &TextRepositoryImpl{
		db:     db,
		mapper: mapper.NewTextMapper(),
	}
}

func (r *TextRepositoryImpl) Create(ctx context.Context, text *entity.Text) error {
	m := r.mapper.ToModel(text)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*text = *r.mapper.ToEntity(m)
	return nil
}

func (r *TextRepositoryImpl) Update(ctx context.Context, text *entity.Text) error {
	m := r.mapper.ToModel(text)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*text = *r.mapper.ToEntity(m)
	return nil
}

func (r *TextRepositoryImpl) SetEmbeddingId(ctx context.Context, id uuid.UUID, embeddingId *uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Text{}).
		Where("id = ?", id).
		Update("embedding_id", embeddingId).Error
}

func (r *TextRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Text{}, id).Error
}

func (r *TextRepositoryImpl) DeleteByFolderIds(ctx context.Context, folderIds []uuid.UUID) error {
	if len(folderIds) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("folder_id IN ?", folderIds).Delete(&model.Text{}).Error
}

func (r *TextRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Text, error) {
	var m model.Text
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TextRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Text, error) {
	var models []*model.Text
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *TextRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Text{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
