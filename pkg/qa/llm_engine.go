package qa

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/pkg/document"
	"github.com/barnabasli/alexandria/pkg/llm"
	"github.com/barnabasli/alexandria/pkg/utils"
)

const (
	segmentSize    = 1200
	segmentOverlap = 200

	// Segments fed into one query prompt. Keeps the evidence block well
	// under typical model context windows.
	maxEvidenceSegments = 12
)

// LLMEngine builds question answers by selecting the corpus segments most
// lexically similar to the question and grounding an LLM call on them.
type LLMEngine struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

var _ Engine = &LLMEngine{}

func NewLLMEngine(provider llm.LLMProvider, logger *log.Logger) *LLMEngine {
	return &LLMEngine{
		provider: provider,
		logger:   logger,
	}
}

func (e *LLMEngine) NewCorpus(organizationId uuid.UUID) *Corpus {
	return newCorpus(organizationId)
}

func (e *LLMEngine) Ingest(corpus *Corpus, title string, filename string, content []byte) error {
	parser, err := document.ParserFor(filename)
	if err != nil {
		return err
	}

	text, err := parser.Parse(content)
	if err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("document %s is empty after parsing", filename)
	}

	segments := utils.SplitText(text, segmentSize, segmentOverlap)

	corpus.mu.Lock()
	corpus.docs = append(corpus.docs, corpusDocument{
		title:    title,
		segments: segments,
	})
	corpus.mu.Unlock()

	e.logger.Printf("[INGEST] Document '%s' split into %d segments", title, len(segments))
	return nil
}

func (e *LLMEngine) Query(ctx context.Context, corpus *Corpus, question string, evidence string) (string, error) {
	corpus.mu.RLock()
	docs := corpus.docs
	corpus.mu.RUnlock()

	if len(docs) == 0 {
		return "", ErrEmptyCorpus
	}

	ranked := rankSegments(docs, question, maxEvidenceSegments)
	e.logger.Printf("[QUERY] Grounding answer on %d of %d segments", len(ranked), corpus.SegmentCount())

	prompt := buildEvidencePrompt(question, evidence, ranked)
	answer, err := e.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: evidenceSystemPrompt},
		{Role: "user", Content: prompt},
	}, llm.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("qa query failed: %w", err)
	}

	return answer, nil
}

const evidenceSystemPrompt = "You are a research assistant. Answer strictly from the reference material you are given. " +
	"If the material does not contain the answer, reply exactly: \"There is not enough information in the documents to answer this question.\""

type rankedSegment struct {
	title string
	text  string
	score float64
}

func buildEvidencePrompt(question string, evidence string, ranked []rankedSegment) string {
	var prompt strings.Builder

	prompt.WriteString("<reference_material>\n")
	prompt.WriteString("CRITICAL: This is the ONLY data source. Do NOT use outside knowledge.\n\n")
	if evidence != "" {
		prompt.WriteString("--- RETRIEVED PASSAGES ---\n")
		prompt.WriteString(evidence)
		prompt.WriteString("\n--- END RETRIEVED PASSAGES ---\n")
	}
	for _, seg := range ranked {
		prompt.WriteString(fmt.Sprintf("\n--- EXCERPT FROM: %s ---\n", seg.title))
		prompt.WriteString(seg.text)
		prompt.WriteString(fmt.Sprintf("\n--- END EXCERPT: %s ---\n", seg.title))
	}
	prompt.WriteString("</reference_material>\n\n")

	prompt.WriteString("<task_instructions>\n")
	prompt.WriteString("1. Answer the question directly using only the excerpts above.\n")
	prompt.WriteString("2. Do not repeat the question back.\n")
	prompt.WriteString("3. Do not append a references or bibliography section.\n")
	prompt.WriteString("</task_instructions>\n\n")

	prompt.WriteString(fmt.Sprintf("Question: %s", question))

	return prompt.String()
}

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// rankSegments scores every segment by term overlap with the question and
// returns the best ones in score order. Lexical scoring here is a cheap
// pre-filter; semantic ranking happens in the vector retriever.
func rankSegments(docs []corpusDocument, question string, limit int) []rankedSegment {
	queryTerms := map[string]bool{}
	for _, w := range wordPattern.FindAllString(strings.ToLower(question), -1) {
		if len(w) > 2 {
			queryTerms[w] = true
		}
	}

	var ranked []rankedSegment
	for _, doc := range docs {
		for _, seg := range doc.segments {
			score := overlapScore(seg, queryTerms)
			ranked = append(ranked, rankedSegment{
				title: doc.title,
				text:  seg,
				score: score,
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func overlapScore(segment string, queryTerms map[string]bool) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	matched := map[string]bool{}
	for _, w := range wordPattern.FindAllString(strings.ToLower(segment), -1) {
		if queryTerms[w] {
			matched[w] = true
		}
	}
	return float64(len(matched)) / float64(len(queryTerms))
}
