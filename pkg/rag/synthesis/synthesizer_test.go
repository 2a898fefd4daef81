package synthesis

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/pkg/llm"
	"github.com/barnabasli/alexandria/pkg/qa"
)

type cannedLLM struct {
	answer string
	err    error
}

func (c *cannedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return c.answer, c.err
}

func (c *cannedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return c.answer, c.err
}

func newTestSynthesizer(t *testing.T, answer string, err error) (*Synthesizer, *qa.Corpus) {
	t.Helper()
	logger := log.New(os.Stderr, "", 0)
	engine := qa.NewLLMEngine(&cannedLLM{answer: answer, err: err}, logger)

	corpus := engine.NewCorpus(uuid.New())
	if ingestErr := engine.Ingest(corpus, "Widgets", "widgets.txt", []byte("Widgets are small mechanical parts.")); ingestErr != nil {
		t.Fatalf("ingest: %v", ingestErr)
	}

	return NewSynthesizer(engine, NewCleaner(nil, 0.7), nil, logger), corpus
}

func TestAnswerCleansSufficientResponse(t *testing.T) {
	s, corpus := newTestSynthesizer(t,
		"Widgets are small mechanical parts used everywhere. References: [1] Smith 2020.", nil)

	result, err := s.Answer(context.Background(), corpus, "What is a widget?", "")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if result.InsufficientEvidence {
		t.Error("unexpected insufficiency flag")
	}
	if want := "Widgets are small mechanical parts used everywhere."; result.Text != want {
		t.Errorf("got %q, want %q", result.Text, want)
	}
}

func TestAnswerDetectsInsufficiency(t *testing.T) {
	rawAnswers := []string{
		"I cannot answer this question.",
		"There is NOT ENOUGH INFORMATION in the documents.",
		"The corpus has insufficient information about this topic.",
		"No relevant information found.",
	}

	for _, raw := range rawAnswers {
		t.Run(raw, func(t *testing.T) {
			s, corpus := newTestSynthesizer(t, raw, nil)

			result, err := s.Answer(context.Background(), corpus, "What is a widget?", "")
			if err != nil {
				t.Fatalf("answer: %v", err)
			}
			if !result.InsufficientEvidence {
				t.Error("insufficiency not detected")
			}
			if result.Text != InsufficientEvidenceMessage {
				t.Errorf("raw answer must be replaced by the fixed message, got %q", result.Text)
			}
		})
	}
}

func TestAnswerPropagatesEngineFailure(t *testing.T) {
	s, corpus := newTestSynthesizer(t, "", fmt.Errorf("model unreachable"))

	if _, err := s.Answer(context.Background(), corpus, "What is a widget?", ""); err == nil {
		t.Fatal("expected engine failure to propagate")
	}
}
