package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "paper.created").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewPaperCreated fires after a paper upload commits and its vectors are
// queued for indexing.
func NewPaperCreated(paperId, organizationId, uploadedBy uuid.UUID, title string) Event {
	return BaseEvent{
		Type: "paper.created",
		Data: map[string]interface{}{
			"paper_id":        paperId.String(),
			"organization_id": organizationId.String(),
			"uploaded_by":     uploadedBy.String(),
			"title":           title,
		},
		OccurredAt: time.Now(),
	}
}

// NewPaperDeleted fires after a paper and its vectors are removed.
func NewPaperDeleted(paperId, organizationId uuid.UUID) Event {
	return BaseEvent{
		Type: "paper.deleted",
		Data: map[string]interface{}{
			"paper_id":        paperId.String(),
			"organization_id": organizationId.String(),
		},
		OccurredAt: time.Now(),
	}
}

// NewPaperIndexed fires after the async indexing consumer finishes
// embedding a paper's chunks.
func NewPaperIndexed(paperId, organizationId uuid.UUID, chunkCount int) Event {
	return BaseEvent{
		Type: "paper.indexed",
		Data: map[string]interface{}{
			"paper_id":        paperId.String(),
			"organization_id": organizationId.String(),
			"chunk_count":     chunkCount,
		},
		OccurredAt: time.Now(),
	}
}
