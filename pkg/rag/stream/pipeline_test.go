package stream

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/pkg/embedding"
	"github.com/barnabasli/alexandria/pkg/llm"
	"github.com/barnabasli/alexandria/pkg/qa"
	"github.com/barnabasli/alexandria/pkg/rag/budget"
	"github.com/barnabasli/alexandria/pkg/rag/retrieval"
	"github.com/barnabasli/alexandria/pkg/rag/sources"
	"github.com/barnabasli/alexandria/pkg/rag/synthesis"
	"github.com/barnabasli/alexandria/pkg/vectorindex"
)

type cannedLLM struct {
	answer string
	err    error
	delay  time.Duration
}

func (c *cannedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return c.answer, c.err
}

func (c *cannedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return c.Chat(ctx, nil, opts...)
}

type fixedEmbedder struct{}

func (f *fixedEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.5, 0.5}},
	}, nil
}

type fixedIndex struct {
	matches []vectorindex.Match
}

func (f *fixedIndex) Upsert(ctx context.Context, paperId uuid.UUID, organizationId uuid.UUID, title string, filePath string, chunks []string, embeddings [][]float32) error {
	return nil
}

func (f *fixedIndex) Search(ctx context.Context, embedded []float32, organizationId uuid.UUID, topK int) ([]vectorindex.Match, error) {
	return f.matches, nil
}

func (f *fixedIndex) Delete(ctx context.Context, paperId uuid.UUID) error {
	return nil
}

type mapPaperIndex map[uuid.UUID]sources.PaperMeta

func (m mapPaperIndex) Lookup(paperId uuid.UUID) (sources.PaperMeta, bool) {
	meta, ok := m[paperId]
	return meta, ok
}

type fixture struct {
	pipeline *Pipeline
	corpus   *qa.Corpus
	orgId    uuid.UUID
	papers   mapPaperIndex
}

func newFixture(t *testing.T, llmProvider llm.LLMProvider, matches []vectorindex.Match, papers mapPaperIndex) *fixture {
	t.Helper()
	logger := log.New(os.Stderr, "", 0)

	engine := qa.NewLLMEngine(llmProvider, logger)
	orgId := uuid.New()
	corpus := engine.NewCorpus(orgId)
	if err := engine.Ingest(corpus, "Smith (2020) — Widgets", "widgets.txt", []byte("Widgets are small mechanical parts.")); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	retriever := retrieval.NewRetriever(&fixedIndex{matches: matches}, &fixedEmbedder{}, 5, logger)
	budgeter := budget.NewBudgeter(0.3, logger)
	synth := synthesis.NewSynthesizer(engine, synthesis.NewCleaner(nil, 0.7), nil, logger)
	resolver := sources.NewResolver(5, logger)

	pipeline := NewPipeline(retriever, budgeter, synth, resolver, PipelineConfig{
		Pacing:           Pacing{}, // run synchronously
		FragmentCount:    20,
		MaxContextTokens: 3000,
		SynthesisTimeout: 5 * time.Second,
	}, logger)

	return &fixture{pipeline: pipeline, corpus: corpus, orgId: orgId, papers: papers}
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	for e := range events {
		out = append(out, e)
	}
	return out
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func TestPipelineHappyPath(t *testing.T) {
	paperId := uuid.New()
	matches := []vectorindex.Match{
		{PaperId: paperId, Title: "Smith (2020) — Widgets", ChunkIndex: 0, Text: "Widgets are small mechanical parts.", Score: 0.92},
	}
	papers := mapPaperIndex{
		paperId: {Title: "Smith (2020) — Widgets", Url: "https://storage.example/widgets.pdf"},
	}
	f := newFixture(t,
		&cannedLLM{answer: "Widgets are small mechanical parts. References: [1] Smith 2020, Widgets."},
		matches, papers)

	events := collect(t, f.pipeline.Run(context.Background(), f.corpus, f.orgId, "What is a widget?", f.papers))

	var thinking, fragments int
	var answer strings.Builder
	var sourceLists []Event
	for _, e := range events {
		switch e.Type {
		case EventThinking:
			thinking++
		case EventAnswerFragment:
			fragments++
			answer.WriteString(e.Text)
		case EventSourceList:
			sourceLists = append(sourceLists, e)
		}
	}

	if thinking < 1 {
		t.Error("expected at least one thinking event")
	}
	if fragments < 1 {
		t.Error("expected at least one answer fragment")
	}
	if got := answer.String(); got != "Widgets are small mechanical parts." {
		t.Errorf("fragment concatenation = %q, want references stripped", got)
	}
	if len(sourceLists) != 1 {
		t.Fatalf("expected exactly one source list, got %d", len(sourceLists))
	}
	if c := sourceLists[0].Citations[0].Citation; c != "Smith (2020), page 1" {
		t.Errorf("citation = %q, want %q", c, "Smith (2020), page 1")
	}
	if events[len(events)-1].Type != EventDone {
		t.Errorf("stream must terminate with Done, got %s", events[len(events)-1].Type)
	}
}

func TestPipelineEventOrdering(t *testing.T) {
	paperId := uuid.New()
	f := newFixture(t,
		&cannedLLM{answer: "Widgets are small mechanical parts used in many assemblies worldwide."},
		[]vectorindex.Match{{PaperId: paperId, ChunkIndex: 0, Score: 0.9}},
		mapPaperIndex{paperId: {Title: "Widgets", Url: "https://storage.example/w.pdf"}})

	events := collect(t, f.pipeline.Run(context.Background(), f.corpus, f.orgId, "What is a widget?", f.papers))

	rank := map[EventType]int{
		EventThinking:        0,
		EventAnswerFragment:  1,
		EventSourceList:      2,
		EventEnrichedSources: 3,
		EventDone:            4,
		EventError:           4,
	}
	last := -1
	for _, tp := range eventTypes(events) {
		if rank[tp] < last {
			t.Fatalf("event %s out of order in %v", tp, eventTypes(events))
		}
		last = rank[tp]
	}
}

func TestPipelineInsufficientEvidence(t *testing.T) {
	f := newFixture(t, &cannedLLM{answer: "I cannot answer this question."}, nil, mapPaperIndex{})

	events := collect(t, f.pipeline.Run(context.Background(), f.corpus, f.orgId, "What is a widget?", f.papers))

	var fragments []Event
	for _, e := range events {
		switch e.Type {
		case EventAnswerFragment:
			fragments = append(fragments, e)
		case EventSourceList, EventEnrichedSources:
			t.Error("no source events may follow an insufficient-evidence answer")
		}
	}

	if len(fragments) != 1 {
		t.Fatalf("expected a single fragment, got %d", len(fragments))
	}
	if fragments[0].Text != synthesis.InsufficientEvidenceMessage {
		t.Errorf("fragment = %q, want the fixed message", fragments[0].Text)
	}
	if !fragments[0].InsufficientEvidence {
		t.Error("fragment must carry the insufficiency flag")
	}
	if events[len(events)-1].Type != EventDone {
		t.Error("insufficient evidence still terminates with Done")
	}
}

func TestPipelineSynthesisFailureEmitsError(t *testing.T) {
	f := newFixture(t, &cannedLLM{err: fmt.Errorf("model unreachable")}, nil, mapPaperIndex{})

	events := collect(t, f.pipeline.Run(context.Background(), f.corpus, f.orgId, "What is a widget?", f.papers))

	if len(events) == 0 {
		t.Fatal("expected events")
	}
	terminal := events[len(events)-1]
	if terminal.Type != EventError {
		t.Errorf("expected terminal Error, got %s", terminal.Type)
	}
}

func TestPipelineSynthesisTimeout(t *testing.T) {
	f := newFixture(t, &cannedLLM{answer: "late", delay: time.Second}, nil, mapPaperIndex{})
	f.pipeline.synthesisTimeout = 20 * time.Millisecond

	events := collect(t, f.pipeline.Run(context.Background(), f.corpus, f.orgId, "What is a widget?", f.papers))

	terminal := events[len(events)-1]
	if terminal.Type != EventError || terminal.Text != "timeout" {
		t.Errorf("expected Error(timeout), got %s(%q)", terminal.Type, terminal.Text)
	}
}

func TestPipelineStopsOnCancellation(t *testing.T) {
	f := newFixture(t, &cannedLLM{answer: "Widgets are small mechanical parts used in many assemblies worldwide."}, nil, mapPaperIndex{})
	f.pipeline.pacing = Pacing{ThinkingTick: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	events := f.pipeline.Run(ctx, f.corpus, f.orgId, "What is a widget?", f.papers)

	// Read the first thinking event, then disconnect.
	<-events
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return // channel closed, pipeline abandoned its work
			}
		case <-deadline:
			t.Fatal("pipeline kept running after cancellation")
		}
	}
}

func TestGroupIntoFragmentsReassemblesExactly(t *testing.T) {
	text := strings.Repeat("One sentence here. ", 50)
	text = strings.TrimSpace(text)

	fragments := groupIntoFragments(text, 20)
	if len(fragments) > 20 {
		t.Errorf("got %d fragments, want at most 20", len(fragments))
	}
	if got := strings.Join(fragments, ""); got != text {
		t.Errorf("fragments do not reassemble the answer:\n got: %q\nwant: %q", got, text)
	}
}
