package stream

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/pkg/qa"
	"github.com/barnabasli/alexandria/pkg/rag/budget"
	"github.com/barnabasli/alexandria/pkg/rag/retrieval"
	"github.com/barnabasli/alexandria/pkg/rag/sources"
	"github.com/barnabasli/alexandria/pkg/rag/synthesis"
)

// Pacing sets the artificial delays between emitted events. They exist
// for perceived responsiveness only; a zero value disables the delay so
// tests run synchronously.
type Pacing struct {
	ThinkingTick time.Duration
	FragmentTick time.Duration
}

// DefaultThinkingPhrases are emitted while the engine call is in flight.
var DefaultThinkingPhrases = []string{
	"Analyzing documents",
	"Searching through sources",
	"Gathering relevant passages",
}

const defaultFragmentCount = 20

// Pipeline orchestrates one query into an ordered, cancellable event
// stream. Each instance serves a single query; instances share no state.
type Pipeline struct {
	retriever *retrieval.Retriever
	budgeter  *budget.Budgeter
	synth     *synthesis.Synthesizer
	resolver  *sources.Resolver

	pacing           Pacing
	fragmentCount    int
	maxContextTokens int
	synthesisTimeout time.Duration
	thinkingPhrases  []string
	logger           *log.Logger
}

type PipelineConfig struct {
	Pacing           Pacing
	FragmentCount    int
	MaxContextTokens int
	SynthesisTimeout time.Duration
	ThinkingPhrases  []string
}

func NewPipeline(
	retriever *retrieval.Retriever,
	budgeter *budget.Budgeter,
	synth *synthesis.Synthesizer,
	resolver *sources.Resolver,
	cfg PipelineConfig,
	logger *log.Logger,
) *Pipeline {
	phrases := cfg.ThinkingPhrases
	if len(phrases) == 0 {
		phrases = DefaultThinkingPhrases
	}
	fragments := cfg.FragmentCount
	if fragments <= 0 {
		fragments = defaultFragmentCount
	}
	return &Pipeline{
		retriever:        retriever,
		budgeter:         budgeter,
		synth:            synth,
		resolver:         resolver,
		pacing:           cfg.Pacing,
		fragmentCount:    fragments,
		maxContextTokens: cfg.MaxContextTokens,
		synthesisTimeout: cfg.SynthesisTimeout,
		thinkingPhrases:  phrases,
		logger:           logger,
	}
}

// Run starts the pipeline and returns its event channel. The channel is
// closed after the terminal event, or without one when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, corpus *qa.Corpus, organizationId uuid.UUID, question string, index sources.PaperIndex) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)
		p.run(ctx, corpus, organizationId, question, index, events)
	}()

	return events
}

func (p *Pipeline) run(ctx context.Context, corpus *qa.Corpus, organizationId uuid.UUID, question string, index sources.PaperIndex, events chan<- Event) {
	// Vector retrieval runs while thinking events pace out, so its
	// latency hides behind the cosmetic phase.
	retrieved := make(chan []retrieval.Chunk, 1)
	go func() {
		retrieved <- p.retriever.Search(ctx, question, organizationId)
	}()

	for _, phrase := range p.thinkingPhrases {
		if !p.emit(ctx, events, thinkingEvent(phrase)) {
			return
		}
		if !p.pause(ctx, p.pacing.ThinkingTick) {
			return
		}
	}

	var chunks []retrieval.Chunk
	select {
	case chunks = <-retrieved:
	case <-ctx.Done():
		return
	}

	evidence := p.budgeter.Select(chunks, p.maxContextTokens)

	result, err := p.synthesize(ctx, corpus, question, evidence)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		message := "Failed to generate an answer. Please try again."
		if errors.Is(err, context.DeadlineExceeded) {
			message = "timeout"
		}
		p.logger.Printf("[STREAM] Synthesis failed: %v", err)
		p.emit(ctx, events, errorEvent(message, false))
		return
	}

	if result.InsufficientEvidence {
		// Single fragment with the fixed message; no sources.
		if !p.emit(ctx, events, Event{
			Type:                 EventAnswerFragment,
			Text:                 result.Text,
			InsufficientEvidence: true,
		}) {
			return
		}
		p.emit(ctx, events, doneEvent())
		return
	}

	for _, fragment := range groupIntoFragments(result.Text, p.fragmentCount) {
		if !p.emit(ctx, events, fragmentEvent(fragment)) {
			return
		}
		if !p.pause(ctx, p.pacing.FragmentTick) {
			return
		}
	}

	citations, enriched := p.resolver.Resolve(chunks, index)
	if len(citations) > 0 {
		if !p.emit(ctx, events, Event{Type: EventSourceList, Citations: citations}) {
			return
		}
	}
	if len(enriched) > 0 {
		if !p.emit(ctx, events, Event{Type: EventEnrichedSources, Enriched: enriched}) {
			return
		}
	}

	p.emit(ctx, events, doneEvent())
}

func (p *Pipeline) synthesize(ctx context.Context, corpus *qa.Corpus, question string, evidence string) (synthesis.Result, error) {
	synthCtx := ctx
	if p.synthesisTimeout > 0 {
		var cancel context.CancelFunc
		synthCtx, cancel = context.WithTimeout(ctx, p.synthesisTimeout)
		defer cancel()
	}
	return p.synth.Answer(synthCtx, corpus, question, evidence)
}

// emit sends one event, checking cancellation before the send so a
// disconnected client is noticed at every emission point.
func (p *Pipeline) emit(ctx context.Context, events chan<- Event, event Event) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Pipeline) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

var fragmentBoundaryPattern = regexp.MustCompile(`[.!?]+(\s+|$)`)

// groupIntoFragments splits the answer into sentences and regroups them
// into at most count roughly equal fragments. Concatenating the fragments
// reproduces the answer exactly.
func groupIntoFragments(text string, count int) []string {
	if text == "" {
		return nil
	}

	var sentences []string
	rest := text
	for {
		loc := fragmentBoundaryPattern.FindStringIndex(rest)
		if loc == nil {
			if rest != "" {
				sentences = append(sentences, rest)
			}
			break
		}
		sentences = append(sentences, rest[:loc[1]])
		rest = rest[loc[1]:]
		if rest == "" {
			break
		}
	}

	if len(sentences) <= count {
		return sentences
	}

	perGroup := (len(sentences) + count - 1) / count
	var fragments []string
	for i := 0; i < len(sentences); i += perGroup {
		end := i + perGroup
		if end > len(sentences) {
			end = len(sentences)
		}
		fragments = append(fragments, strings.Join(sentences[i:end], ""))
	}
	return fragments
}
