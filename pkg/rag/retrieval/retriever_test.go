package retrieval

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/pkg/embedding"
	"github.com/barnabasli/alexandria/pkg/vectorindex"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2}},
	}, nil
}

type stubIndex struct {
	matches []vectorindex.Match
	err     error
}

func (s *stubIndex) Upsert(ctx context.Context, paperId uuid.UUID, organizationId uuid.UUID, title string, filePath string, chunks []string, embeddings [][]float32) error {
	return nil
}

func (s *stubIndex) Search(ctx context.Context, embedded []float32, organizationId uuid.UUID, topK int) ([]vectorindex.Match, error) {
	return s.matches, s.err
}

func (s *stubIndex) Delete(ctx context.Context, paperId uuid.UUID) error {
	return nil
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func TestSearchEmptyQuestionReturnsNothing(t *testing.T) {
	r := NewRetriever(&stubIndex{}, &stubEmbedder{err: fmt.Errorf("must not be called")}, 5, testLogger())

	chunks := r.Search(context.Background(), "   ", uuid.New())
	if chunks != nil {
		t.Errorf("expected nil for empty question, got %d chunks", len(chunks))
	}
}

func TestSearchDegradesOnUpstreamFailure(t *testing.T) {
	tests := []struct {
		name     string
		embedder *stubEmbedder
		index    *stubIndex
	}{
		{
			name:     "embedding failure",
			embedder: &stubEmbedder{err: fmt.Errorf("embedder down")},
			index:    &stubIndex{},
		},
		{
			name:     "index failure",
			embedder: &stubEmbedder{},
			index:    &stubIndex{err: fmt.Errorf("index down")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetriever(tt.index, tt.embedder, 5, testLogger())
			chunks := r.Search(context.Background(), "what is a widget?", uuid.New())
			if len(chunks) != 0 {
				t.Errorf("expected empty result, got %d chunks", len(chunks))
			}
		})
	}
}

func TestSearchOrdersByScoreThenChunkIndex(t *testing.T) {
	paperId := uuid.New()
	index := &stubIndex{
		matches: []vectorindex.Match{
			{PaperId: paperId, ChunkIndex: 4, Score: 0.8},
			{PaperId: paperId, ChunkIndex: 2, Score: 0.9},
			{PaperId: paperId, ChunkIndex: 7, Score: 0.8},
			{PaperId: paperId, ChunkIndex: 1, Score: 0.8},
		},
	}

	r := NewRetriever(index, &stubEmbedder{}, 5, testLogger())
	chunks := r.Search(context.Background(), "what is a widget?", uuid.New())

	wantOrder := []int{2, 1, 4, 7}
	if len(chunks) != len(wantOrder) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(wantOrder))
	}
	for i, want := range wantOrder {
		if chunks[i].ChunkIndex != want {
			t.Errorf("position %d: chunkIndex = %d, want %d", i, chunks[i].ChunkIndex, want)
		}
	}
}
