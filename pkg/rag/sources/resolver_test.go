package sources

import (
	"log"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/pkg/rag/retrieval"
)

type mapIndex map[uuid.UUID]PaperMeta

func (m mapIndex) Lookup(paperId uuid.UUID) (PaperMeta, bool) {
	meta, ok := m[paperId]
	return meta, ok
}

func testResolver() *Resolver {
	return NewResolver(5, log.New(os.Stderr, "", 0))
}

func TestResolveBuildsAuthorYearCitation(t *testing.T) {
	paperId := uuid.New()
	index := mapIndex{
		paperId: {Title: "Smith (2020) — Widgets", Url: "https://storage.example/widgets.pdf"},
	}
	chunks := []retrieval.Chunk{
		{PaperId: paperId, ChunkIndex: 0, Score: 0.9},
	}

	citations, enriched := testResolver().Resolve(chunks, index)

	if len(citations) != 1 {
		t.Fatalf("got %d citations, want 1", len(citations))
	}
	if citations[0].Citation != "Smith (2020), page 1" {
		t.Errorf("citation = %q, want %q", citations[0].Citation, "Smith (2020), page 1")
	}
	if len(enriched) != 1 || enriched[0].Score != 0.9 {
		t.Errorf("enriched row missing or missing score: %+v", enriched)
	}
}

func TestResolveFallsBackToFirstTitleToken(t *testing.T) {
	paperId := uuid.New()
	index := mapIndex{
		paperId: {Title: "Turbine Cooling Handbook", Url: "https://storage.example/turbine.pdf"},
	}
	chunks := []retrieval.Chunk{
		{PaperId: paperId, ChunkIndex: 4, Score: 0.8},
	}

	citations, _ := testResolver().Resolve(chunks, index)

	if len(citations) != 1 {
		t.Fatalf("got %d citations, want 1", len(citations))
	}
	if citations[0].Citation != "Turbine, page 5" {
		t.Errorf("citation = %q, want %q", citations[0].Citation, "Turbine, page 5")
	}
}

func TestResolveDeduplicatesByUrlButKeepsEnrichedRows(t *testing.T) {
	paperId := uuid.New()
	index := mapIndex{
		paperId: {Title: "Smith (2020) — Widgets", Url: "https://storage.example/widgets.pdf"},
	}
	chunks := []retrieval.Chunk{
		{PaperId: paperId, ChunkIndex: 0, Score: 0.9},
		{PaperId: paperId, ChunkIndex: 3, Score: 0.7},
	}

	citations, enriched := testResolver().Resolve(chunks, index)

	if len(citations) != 1 {
		t.Errorf("same paper must appear once in the plain list, got %d", len(citations))
	}
	if len(enriched) != 2 {
		t.Errorf("every chunk must appear in the enriched list, got %d", len(enriched))
	}
}

func TestResolveSkipsMissingPaper(t *testing.T) {
	known := uuid.New()
	index := mapIndex{
		known: {Title: "Known Paper", Url: "https://storage.example/known.pdf"},
	}
	chunks := []retrieval.Chunk{
		{PaperId: uuid.New(), ChunkIndex: 0, Score: 0.95}, // deleted paper
		{PaperId: known, ChunkIndex: 1, Score: 0.8},
	}

	citations, enriched := testResolver().Resolve(chunks, index)

	if len(citations) != 1 || citations[0].Title != "Known Paper" {
		t.Errorf("expected only the known paper, got %+v", citations)
	}
	if len(enriched) != 1 {
		t.Errorf("expected 1 enriched row, got %d", len(enriched))
	}
}

func TestResolveHonorsTopN(t *testing.T) {
	index := mapIndex{}
	var chunks []retrieval.Chunk
	for i := 0; i < 8; i++ {
		paperId := uuid.New()
		index[paperId] = PaperMeta{Title: "Paper", Url: uuid.New().String()}
		chunks = append(chunks, retrieval.Chunk{PaperId: paperId, ChunkIndex: i})
	}

	resolver := NewResolver(5, log.New(os.Stderr, "", 0))
	_, enriched := resolver.Resolve(chunks, index)

	if len(enriched) != 5 {
		t.Errorf("expected top 5 chunks resolved, got %d", len(enriched))
	}
}
