package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is a corpus change broadcast to every instance.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TEXT_INDEXED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string { return e.Type }
func (e BaseEvent) Payload() map[string]interface{} { return e.Data }
func (e BaseEvent) Timestamp() time.Time { return e.OccurredAt }

const (
	TypeTextIndexed   = "TEXT_INDEXED"
	TypeTextDeleted   = "TEXT_DELETED"
	TypeFolderDeleted = "FOLDER_DELETED"
)

// CorpusChanged matches every event that alters the scored corpus.
const CorpusChanged = "corpus.>"

// Publisher sends events to the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

func NewTextIndexed(textId uuid.UUID, embeddingId *uuid.UUID) Event {
	data := map[string]interface{}{
		"text_id": textId.String(),
	}
	if embeddingId != nil {
		data["embedding_id"] = embeddingId.String()
	}
	return BaseEvent{Type: TypeTextIndexed, Data: data, OccurredAt: time.Now()}
}

func NewTextDeleted(textId uuid.UUID) Event {
	return BaseEvent{
		Type:       TypeTextDeleted,
		Data:       map[string]interface{}{"text_id": textId.String()},
		OccurredAt: time.Now(),
	}
}

func NewFolderDeleted(folderIds []uuid.UUID, textCount int) Event {
	ids := make([]string, len(folderIds))
	for i, id := range folderIds {
		ids[i] = id.String()
	}
	return BaseEvent{
		Type: TypeFolderDeleted,
		Data: map[string]interface{}{
			"folder_ids": ids,
			"text_count": textCount,
		},
		OccurredAt: time.Now(),
	}
}
