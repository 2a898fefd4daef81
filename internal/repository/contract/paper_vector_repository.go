package contract

import (
	"context"

	"github.com/google/uuid"
)

// ScoredPaperChunk is a pgvector search hit before normalization into the
// retrieval layer's Chunk record.
type ScoredPaperChunk struct {
	PaperId    uuid.UUID
	Title      string
	ChunkIndex int
	Text       string
	FilePath   string
	Similarity float64
}

// PaperVectorRepository stores and searches per-chunk embeddings when the
// pgvector backend is selected.
type PaperVectorRepository interface {
	CreateBulk(ctx context.Context, paperId uuid.UUID, orgId uuid.UUID, title string, filePath string, chunks []string, embeddings [][]float32) error
	DeleteByPaperId(ctx context.Context, paperId uuid.UUID) error
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, orgId uuid.UUID) ([]*ScoredPaperChunk, error)
	CountByOrganization(ctx context.Context, orgId uuid.UUID) (int64, error)
}
