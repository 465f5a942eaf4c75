package entity

import (
	"time"

	"github.com/google/uuid"
)

// Text is one stored passage. A nil EmbeddingId means it is not indexed yet.
type Text struct {
	Id          uuid.UUID
	Name        string
	Content     string
	FolderId    *uuid.UUID
	EmbeddingId *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
