package qa

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Corpus holds the engine's internal representation of every ingested
// document for one organization. Callers treat it as an opaque handle.
type Corpus struct {
	organizationId uuid.UUID
	builtAt        time.Time

	mu   sync.RWMutex
	docs []corpusDocument
}

type corpusDocument struct {
	title    string
	segments []string
}

func (c *Corpus) OrganizationId() uuid.UUID {
	return c.organizationId
}

func (c *Corpus) BuiltAt() time.Time {
	return c.builtAt
}

// DocumentCount reports how many documents were ingested into this corpus.
func (c *Corpus) DocumentCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// SegmentCount reports the total number of text segments across all documents.
func (c *Corpus) SegmentCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0
	for _, d := range c.docs {
		total += len(d.segments)
	}
	return total
}
