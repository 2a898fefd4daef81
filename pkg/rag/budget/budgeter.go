package budget

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/barnabasli/alexandria/pkg/rag/retrieval"
)

// Budgeter estimates token costs and packs retrieved chunks into a bounded
// context string.
type Budgeter struct {
	noiseFloor float64
	encoder    *tiktoken.Tiktoken
	logger     *log.Logger
}

// NewBudgeter prepares a budgeter backed by the cl100k_base tokenizer.
// When the encoding cannot be loaded (offline environments) estimation
// falls back to the len/4 heuristic.
func NewBudgeter(noiseFloor float64, logger *log.Logger) *Budgeter {
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Printf("[BUDGET] Tokenizer unavailable, using character heuristic: %v", err)
		encoder = nil
	}
	return &Budgeter{
		noiseFloor: noiseFloor,
		encoder:    encoder,
		logger:     logger,
	}
}

// Estimate returns the token count of text. The heuristic path rounds
// down, which under-counts dense text; budget limits stay conservative
// because headers are estimated with the same method.
func (b *Budgeter) Estimate(text string) int {
	if b.encoder != nil {
		return len(b.encoder.Encode(text, nil, nil))
	}
	return len(text) / 4
}

// Select packs the highest-scoring chunks into a context string without
// exceeding maxTokens. Chunks scoring at or below the noise floor are
// dropped. A chunk is taken whole or not at all.
func (b *Budgeter) Select(chunks []retrieval.Chunk, maxTokens int) string {
	candidates := make([]retrieval.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Score > b.noiseFloor {
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	var builder strings.Builder
	used := 0
	taken := 0
	for _, c := range candidates {
		block := formatChunk(c)
		cost := b.Estimate(block)
		if used+cost > maxTokens {
			break
		}
		builder.WriteString(block)
		used += cost
		taken++
	}

	if b.logger != nil {
		b.logger.Printf("[BUDGET] Selected %d/%d chunks, %d/%d tokens", taken, len(chunks), used, maxTokens)
	}

	return strings.TrimSpace(builder.String())
}

func formatChunk(c retrieval.Chunk) string {
	return fmt.Sprintf("[Source: %s, score %.2f]\n%s\n\n", c.Title, c.Score, c.Text)
}
