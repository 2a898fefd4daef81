package qa

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Engine answers questions over an ingested document corpus.
type Engine interface {
	// NewCorpus creates an empty corpus for an organization.
	NewCorpus(organizationId uuid.UUID) *Corpus

	// Ingest parses a document and adds its content to the corpus.
	Ingest(corpus *Corpus, title string, filename string, content []byte) error

	// Query answers a question from the corpus content. Evidence, when
	// non-empty, is pre-budgeted retrieval context injected ahead of the
	// engine's own segment ranking. The raw answer may contain echoed
	// questions or trailing references; cleaning is the caller's concern.
	Query(ctx context.Context, corpus *Corpus, question string, evidence string) (string, error)
}

var ErrEmptyCorpus = fmt.Errorf("corpus has no ingested documents")

func newCorpus(organizationId uuid.UUID) *Corpus {
	return &Corpus{
		organizationId: organizationId,
		builtAt:        time.Now(),
	}
}
