package vectorindex

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/internal/repository/contract"
)

// PgVectorIndex stores embeddings in Postgres instead of a hosted index.
// It delegates persistence to the paper chunk repository and only adapts
// the result shape.
type PgVectorIndex struct {
	repo contract.PaperVectorRepository
}

var _ Index = &PgVectorIndex{}

func NewPgVectorIndex(repo contract.PaperVectorRepository) *PgVectorIndex {
	return &PgVectorIndex{repo: repo}
}

func (p *PgVectorIndex) Upsert(ctx context.Context, paperId uuid.UUID, organizationId uuid.UUID, title string, filePath string, chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	return p.repo.CreateBulk(ctx, paperId, organizationId, title, filePath, chunks, embeddings)
}

func (p *PgVectorIndex) Search(ctx context.Context, embedding []float32, organizationId uuid.UUID, topK int) ([]Match, error) {
	scored, err := p.repo.SearchSimilarWithScore(ctx, embedding, topK, organizationId)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(scored))
	for _, s := range scored {
		matches = append(matches, Match{
			PaperId:    s.PaperId,
			Title:      s.Title,
			ChunkIndex: s.ChunkIndex,
			Text:       s.Text,
			FilePath:   s.FilePath,
			Score:      s.Similarity,
		})
	}
	return matches, nil
}

func (p *PgVectorIndex) Delete(ctx context.Context, paperId uuid.UUID) error {
	return p.repo.DeleteByPaperId(ctx, paperId)
}

// CountByOrganization exposes the per-tenant vector count for stats.
func (p *PgVectorIndex) CountByOrganization(ctx context.Context, organizationId uuid.UUID) (int64, error) {
	return p.repo.CountByOrganization(ctx, organizationId)
}
