package budget

import (
	"log"
	"os"
	"strings"
	"testing"

	"github.com/pkoukk/tiktoken-go"

	"github.com/barnabasli/alexandria/pkg/rag/retrieval"
)

func heuristicBudgeter(noiseFloor float64) *Budgeter {
	return &Budgeter{
		noiseFloor: noiseFloor,
		encoder:    nil,
		logger:     log.New(os.Stderr, "", 0),
	}
}

func TestEstimateHeuristicFallback(t *testing.T) {
	b := heuristicBudgeter(0.3)

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"abcd", 1},
		{strings.Repeat("x", 100), 25},
	}
	for _, tt := range tests {
		if got := b.Estimate(tt.text); got != tt.want {
			t.Errorf("Estimate(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestEstimateExactTokenizer(t *testing.T) {
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		t.Skipf("tokenizer unavailable: %v", err)
	}
	b := &Budgeter{noiseFloor: 0.3, encoder: encoder, logger: log.New(os.Stderr, "", 0)}

	got := b.Estimate("hello world")
	want := len(encoder.Encode("hello world", nil, nil))
	if got != want {
		t.Errorf("Estimate = %d, want %d", got, want)
	}
	if got == 0 {
		t.Error("exact tokenizer returned zero tokens for non-empty text")
	}
}

func TestSelectDropsNoiseAndRespectsBudget(t *testing.T) {
	b := heuristicBudgeter(0.3)

	chunks := []retrieval.Chunk{
		{Title: "A", Text: strings.Repeat("alpha ", 50), Score: 0.9},
		{Title: "B", Text: strings.Repeat("beta ", 50), Score: 0.6},
		{Title: "C", Text: strings.Repeat("noise ", 50), Score: 0.3},
		{Title: "D", Text: strings.Repeat("floor ", 50), Score: 0.1},
	}

	maxTokens := 200
	out := b.Select(chunks, maxTokens)

	if strings.Contains(out, "noise") || strings.Contains(out, "floor") {
		t.Error("noise-floor chunks leaked into selection")
	}
	if got := b.Estimate(out); got > maxTokens {
		t.Errorf("selection uses %d tokens, budget is %d", got, maxTokens)
	}
	if !strings.Contains(out, "alpha") {
		t.Error("highest scoring chunk missing from selection")
	}
}

func TestSelectStopsAtFirstOverflowingChunk(t *testing.T) {
	b := heuristicBudgeter(0.3)

	chunks := []retrieval.Chunk{
		{Title: "big", Text: strings.Repeat("a", 400), Score: 0.9},
		{Title: "huge", Text: strings.Repeat("b", 4000), Score: 0.8},
		{Title: "small", Text: strings.Repeat("c", 40), Score: 0.7},
	}

	out := b.Select(chunks, 150)

	// Greedy selection stops at the first chunk that does not fit; it
	// never splits a chunk to use the remaining budget.
	if !strings.Contains(out, "big") {
		t.Error("first chunk should fit")
	}
	if strings.Contains(out, "huge") {
		t.Error("oversized chunk must not be included")
	}
	if strings.Contains(out, "small") {
		t.Error("selection must stop at the first overflowing chunk")
	}
}

func TestSelectEmptyInput(t *testing.T) {
	b := heuristicBudgeter(0.3)
	if out := b.Select(nil, 100); out != "" {
		t.Errorf("expected empty context, got %q", out)
	}
}
