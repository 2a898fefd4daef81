package synthesis

import (
	"context"
	"log"
	"strings"

	"github.com/barnabasli/alexandria/pkg/qa"
)

// Result is a finished answer. InsufficientEvidence marks the engine's own
// "I don't know" signal; it is a successful outcome, not an error.
type Result struct {
	Text                 string
	InsufficientEvidence bool
}

// Synthesizer drives the full-corpus QA pass and post-processes the raw
// answer. The engine call dominates query latency.
type Synthesizer struct {
	engine  qa.Engine
	cleaner *Cleaner
	phrases []string
	logger  *log.Logger
}

func NewSynthesizer(engine qa.Engine, cleaner *Cleaner, insufficiencyPhrases []string, logger *log.Logger) *Synthesizer {
	if len(insufficiencyPhrases) == 0 {
		insufficiencyPhrases = DefaultInsufficiencyPhrases
	}
	return &Synthesizer{
		engine:  engine,
		cleaner: cleaner,
		phrases: insufficiencyPhrases,
		logger:  logger,
	}
}

// Answer runs the QA pass. Evidence is the budgeted retrieval context;
// pass "" when retrieval degraded to nothing.
func (s *Synthesizer) Answer(ctx context.Context, corpus *qa.Corpus, question string, evidence string) (Result, error) {
	raw, err := s.engine.Query(ctx, corpus, question, evidence)
	if err != nil {
		return Result{}, err
	}

	if s.isInsufficient(raw) {
		// Discard the raw answer entirely; no cleaning, no citations.
		s.logger.Printf("[SYNTHESIS] Engine reported insufficient evidence")
		return Result{
			Text:                 InsufficientEvidenceMessage,
			InsufficientEvidence: true,
		}, nil
	}

	return Result{Text: s.cleaner.Clean(question, raw)}, nil
}

func (s *Synthesizer) isInsufficient(raw string) bool {
	lowered := strings.ToLower(raw)
	for _, phrase := range s.phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
