package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Account struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName    string    `gorm:"type:varchar(255);not null"`
	GoogleId    string    `gorm:"type:varchar(255);index"`
	AvatarURL   *string   `gorm:"type:text"`
	LastLoginAt *time.Time
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Account) TableName() string {
	return "accounts"
}
