package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTextRequest struct {
	Name     string     `json:"name" validate:"required,max=255"`
	Content  string     `json:"content"`
	FolderId *uuid.UUID `json:"folder_id"`
}

type CreateTextResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowTextResponse struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Content   string     `json:"content"`
	FolderId  *uuid.UUID `json:"folder_id"`
	Indexed   bool       `json:"indexed"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type TextSummary struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Indexed   bool       `json:"indexed"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type RenameTextRequest struct {
	Id   uuid.UUID
	Name string `json:"name" validate:"required,max=255"`
}

type UpdateTextContentRequest struct {
	Id      uuid.UUID
	Content string `json:"content"`
}

type UpdateTextResponse struct {
	Id uuid.UUID `json:"id"`
}

// PublishIndexTextMessage asks the indexing worker to re-embed one text.
type PublishIndexTextMessage struct {
	TextId uuid.UUID `json:"text_id"`
}
