package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByFolderID filters texts by folder. A nil folder selects unfiled texts.
type ByFolderID struct {
	FolderID *uuid.UUID
}

func (s ByFolderID) Apply(db *gorm.DB) *gorm.DB {
	if s.FolderID == nil {
		return db.Where("folder_id IS NULL")
	}
	return db.Where("folder_id = ?", *s.FolderID)
}

type ByFolderIDs struct {
	FolderIDs []uuid.UUID
}

func (s ByFolderIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("folder_id IN ?", s.FolderIDs)
}

type ByEmbeddingID struct {
	EmbeddingID uuid.UUID
}

func (s ByEmbeddingID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding_id = ?", s.EmbeddingID)
}

// NameContains matches text names case-insensitively.
type NameContains struct {
	Query string
}

func (s NameContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name ILIKE ?", "%"+s.Query+"%")
}
