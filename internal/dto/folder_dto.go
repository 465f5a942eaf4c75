package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateFolderRequest struct {
	Name     string     `json:"name" validate:"required,max=255"`
	ParentId *uuid.UUID `json:"parent_id"`
}

type CreateFolderResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateFolderRequest struct {
	Id       uuid.UUID
	Name     string     `json:"name" validate:"required,max=255"`
	ParentId *uuid.UUID `json:"parent_id"`
}

type UpdateFolderResponse struct {
	Id uuid.UUID `json:"id"`
}

// FolderTreeNode is one folder with its texts and sub-folders.
type FolderTreeNode struct {
	Id        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	ParentId  *uuid.UUID        `json:"parent_id"`
	Texts     []*TextSummary    `json:"texts"`
	Children  []*FolderTreeNode `json:"children"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt *time.Time        `json:"updated_at"`
}

type FolderTreeResponse struct {
	Folders []*FolderTreeNode `json:"folders"`
	// Unfiled holds texts without a folder.
	Unfiled []*TextSummary `json:"unfiled"`
}

type DeleteFolderResponse struct {
	FolderCount int `json:"folder_count"`
	TextCount   int `json:"text_count"`
}
