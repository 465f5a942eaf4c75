package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Text struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string         `gorm:"type:varchar(255);not null"`
	Content     string         `gorm:"type:text"`
	FolderId    *uuid.UUID     `gorm:"type:uuid;index"`
	EmbeddingId *uuid.UUID     `gorm:"type:uuid;uniqueIndex"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Text) TableName() string {
	return "texts"
}
