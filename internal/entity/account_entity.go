package entity

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	Id          uuid.UUID
	Email       string
	FullName    string
	GoogleId    string
	AvatarURL   *string
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
