package retrieval

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/pkg/embedding"
	"github.com/barnabasli/alexandria/pkg/vectorindex"
)

// Chunk is the normalized retrieval unit every downstream component
// consumes. Scores are similarities in [0,1].
type Chunk struct {
	PaperId    uuid.UUID
	Title      string
	ChunkIndex int
	Text       string
	FilePath   string
	Score      float64
}

// Retriever runs semantic nearest-neighbor search over a tenant's chunks.
// Retrieval is a quality optimization: every failure path degrades to an
// empty result so the query can proceed on the QA engine alone.
type Retriever struct {
	index    vectorindex.Index
	embedder embedding.EmbeddingProvider
	topK     int
	logger   *log.Logger
}

func NewRetriever(index vectorindex.Index, embedder embedding.EmbeddingProvider, topK int, logger *log.Logger) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		index:    index,
		embedder: embedder,
		topK:     topK,
		logger:   logger,
	}
}

// Search returns chunks ordered by descending score, ties broken by
// ascending chunk index. An empty question short-circuits to nil because
// semantic search is undefined for it.
func (r *Retriever) Search(ctx context.Context, question string, organizationId uuid.UUID) []Chunk {
	if strings.TrimSpace(question) == "" {
		return nil
	}

	embedded, err := r.embedder.Generate(question, "RETRIEVAL_QUERY")
	if err != nil {
		r.logger.Printf("[RETRIEVAL] Query embedding failed, degrading to engine-only: %v", err)
		return nil
	}

	matches, err := r.index.Search(ctx, embedded.Embedding.Values, organizationId, r.topK)
	if err != nil {
		r.logger.Printf("[RETRIEVAL] Index search failed, degrading to engine-only: %v", err)
		return nil
	}

	chunks := make([]Chunk, 0, len(matches))
	for _, m := range matches {
		chunks = append(chunks, Chunk{
			PaperId:    m.PaperId,
			Title:      m.Title,
			ChunkIndex: m.ChunkIndex,
			Text:       m.Text,
			FilePath:   m.FilePath,
			Score:      m.Score,
		})
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Score != chunks[j].Score {
			return chunks[i].Score > chunks[j].Score
		}
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})

	return chunks
}
