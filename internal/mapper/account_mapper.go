package mapper

import (
	"time"

	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/model"

	"gorm.io/gorm"
)

type AccountMapper struct{}

func NewAccountMapper() *AccountMapper {
	return &AccountMapper{}
}

func (m *AccountMapper) ToEntity(a *model.Account) *entity.Account {
	if a == nil {
		return nil
	}

	var deletedAt *time.Time
	if a.DeletedAt.Valid {
		d := a.DeletedAt.Time
		deletedAt = &d
	}

	var updatedAt *time.Time
	if !a.UpdatedAt.IsZero() {
		u := a.UpdatedAt
		updatedAt = &u
	}

	return &entity.Account{
		Id:          a.Id,
		Email:       a.Email,
		FullName:    a.FullName,
		GoogleId:    a.GoogleId,
		AvatarURL:   a.AvatarURL,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   a.DeletedAt.Valid,
	}
}

func (m *AccountMapper) ToModel(a *entity.Account) *model.Account {
	if a == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if a.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *a.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if a.UpdatedAt != nil {
		updatedAt = *a.UpdatedAt
	}

	return &model.Account{
		Id:          a.Id,
		Email:       a.Email,
		FullName:    a.FullName,
		GoogleId:    a.GoogleId,
		AvatarURL:   a.AvatarURL,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}
