package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadPaperRequest struct {
	Title string `form:"title" validate:"required,min=1,max=500"`
}

type UploadPaperResponse struct {
	Id         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	UploadedAt time.Time `json:"uploaded_at"`
	// Indexing runs asynchronously; the paper is queryable through the
	// corpus immediately, through vector search once indexing finishes.
	IndexingQueued bool `json:"indexing_queued"`
}

type GetPaperResponse struct {
	Id          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
	DownloadURL string    `json:"download_url,omitempty"`
}

// PublishIndexPaperMessage is the queue payload that triggers async
// vector indexing of a freshly uploaded paper.
type PublishIndexPaperMessage struct {
	PaperId        uuid.UUID `json:"paper_id"`
	OrganizationId uuid.UUID `json:"organization_id"`
}

type OrganizationStatsResponse struct {
	OrganizationId uuid.UUID `json:"organization_id"`
	PaperCount     int64     `json:"paper_count"`
	VectorCount    int64     `json:"vector_count"`
}
