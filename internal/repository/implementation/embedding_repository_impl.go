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

type EmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EmbeddingMapper
}

func NewEmbeddingRepository(db *gorm.DB) contract.EmbeddingRepository {
	return &EmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewEmbeddingMapper(),
	}
}

func (r *EmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.Embedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *EmbeddingRepositoryImpl) Update(ctx context.Context, embedding *entity.Embedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *EmbeddingRepositoryImpl) DeleteByIds(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Embedding{}).Error
}

func (r *EmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Embedding, error) {
	var m model.Embedding
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EmbeddingRepositoryImpl) ListAll(ctx context.Context) ([]*entity.Embedding, error) {
	var models []*model.Embedding
	err := applySpecifications(r.db.WithContext(ctx),
		specification.OrderBy{Field: "created_at"},
		specification.OrderBy{Field: "id"},
	).Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *EmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Embedding{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
