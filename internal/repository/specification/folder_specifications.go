package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByParentID struct {
	ParentID *uuid.UUID
}

func (s ByParentID) Apply(db *gorm.DB) *gorm.DB {
	if s.ParentID == nil {
		return db.Where("parent_id IS NULL")
	}
	return db.Where("parent_id = ?", s.ParentID)
}

type ByParentIDs struct {
	ParentIDs []uuid.UUID
}

func (s ByParentIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("parent_id IN ?", s.ParentIDs)
}
