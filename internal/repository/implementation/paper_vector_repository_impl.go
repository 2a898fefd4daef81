package implementation

import (
	"context"
	"fmt"

	"github.com/barnabasli/alexandria/internal/model"
	"github.com/barnabasli/alexandria/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PaperVectorRepositoryImpl struct {
	db *gorm.DB
}

func NewPaperVectorRepository(db *gorm.DB) contract.PaperVectorRepository {
	return &PaperVectorRepositoryImpl{db: db}
}

func (r *PaperVectorRepositoryImpl) CreateBulk(
	ctx context.Context,
	paperId uuid.UUID,
	orgId uuid.UUID,
	title string,
	filePath string,
	chunks []string,
	embeddings [][]float32,
) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}

	rows := make([]*model.PaperChunk, len(chunks))
	for i := range chunks {
		rows[i] = &model.PaperChunk{
			Id:             uuid.New(),
			PaperId:        paperId,
			OrganizationId: orgId,
			Title:          title,
			ChunkIndex:     i,
			Text:           chunks[i],
			FilePath:       filePath,
			EmbeddingValue: pgvector.NewVector(embeddings[i]),
		}
	}

	return r.db.WithContext(ctx).Create(rows).Error
}

func (r *PaperVectorRepositoryImpl) DeleteByPaperId(ctx context.Context, paperId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("paper_id = ?", paperId).Delete(&model.PaperChunk{}).Error
}

// SearchSimilarWithScore returns chunks with cosine similarity, best first.
// pgvector's <=> is cosine distance, so similarity = 1 - distance.
func (r *PaperVectorRepositoryImpl) SearchSimilarWithScore(
	ctx context.Context,
	embedding []float32,
	limit int,
	orgId uuid.UUID,
) ([]*contract.ScoredPaperChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.PaperChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("paper_chunks").
		Select("paper_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("paper_chunks.organization_id = ?", orgId).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredPaperChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredPaperChunk{
			PaperId:    res.PaperId,
			Title:      res.Title,
			ChunkIndex: res.ChunkIndex,
			Text:       res.Text,
			FilePath:   res.FilePath,
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *PaperVectorRepositoryImpl) CountByOrganization(ctx context.Context, orgId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PaperChunk{}).
		Where("organization_id = ?", orgId).
		Count(&count).Error
	return count, err
}
