package vectorindex

import (
	"context"

	"github.com/google/uuid"
)

// Match is the single normalized record shape every index backend must
// produce. Downstream code never sees a backend's raw response.
type Match struct {
	PaperId    uuid.UUID
	Title      string
	ChunkIndex int
	Text       string
	FilePath   string
	Score      float64 // similarity in [0,1], higher is closer
}

// Index abstracts the nearest-neighbor store holding per-chunk embeddings.
type Index interface {
	Upsert(ctx context.Context, paperId uuid.UUID, organizationId uuid.UUID, title string, filePath string, chunks []string, embeddings [][]float32) error
	Search(ctx context.Context, embedding []float32, organizationId uuid.UUID, topK int) ([]Match, error)
	Delete(ctx context.Context, paperId uuid.UUID) error
}
