package corpuscache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/barnabasli/alexandria/pkg/qa"
)

// ErrNoPapers signals that the organization has nothing to build a corpus
// from. Callers surface it as an "upload a document first" condition.
var ErrNoPapers = errors.New("organization has no papers")

// Cache holds at most one live corpus per organization. Entries expire by
// TTL and are destroyed unconditionally on invalidation. Concurrent first
// queries for the same organization coalesce into a single build.
type Cache struct {
	engine qa.Engine
	source PaperSource

	entries *gocache.Cache // organizationId -> *qa.Corpus
	bytes   *gocache.Cache // organizationId:paperId -> []byte

	group        singleflight.Group
	buildTimeout time.Duration
	bus          InvalidationBus
	logger       *log.Logger
}

type Options struct {
	CorpusTTL    time.Duration
	ByteCacheTTL time.Duration
	BuildTimeout time.Duration
	Bus          InvalidationBus // optional cross-instance invalidation
}

func NewCache(engine qa.Engine, source PaperSource, opts Options, logger *log.Logger) *Cache {
	c := &Cache{
		engine:       engine,
		source:       source,
		entries:      gocache.New(opts.CorpusTTL, opts.CorpusTTL),
		bytes:        gocache.New(opts.ByteCacheTTL, opts.ByteCacheTTL),
		buildTimeout: opts.BuildTimeout,
		bus:          opts.Bus,
		logger:       logger,
	}

	if c.bus != nil {
		c.bus.Subscribe(func(organizationId uuid.UUID) {
			c.dropLocal(organizationId)
		})
	}

	return c
}

// Get returns the cached corpus for the organization, building it when
// absent or expired. The bool reports whether the corpus came from cache.
func (c *Cache) Get(ctx context.Context, organizationId uuid.UUID) (*qa.Corpus, bool, error) {
	key := organizationId.String()

	if cached, found := c.entries.Get(key); found {
		return cached.(*qa.Corpus), true, nil
	}

	corpus, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent builder may have finished while this caller was
		// queued on the flight group.
		if cached, found := c.entries.Get(key); found {
			return cached, nil
		}

		buildCtx := ctx
		if c.buildTimeout > 0 {
			var cancel context.CancelFunc
			buildCtx, cancel = context.WithTimeout(ctx, c.buildTimeout)
			defer cancel()
		}

		built, err := c.build(buildCtx, organizationId)
		if err != nil {
			// A failed build is never cached.
			return nil, err
		}

		c.entries.SetDefault(key, built)
		return built, nil
	})
	if err != nil {
		return nil, false, err
	}

	return corpus.(*qa.Corpus), false, nil
}

// Invalidate destroys the organization's corpus entry and its byte cache.
// It is idempotent and must be called synchronously after any paper
// create or delete.
func (c *Cache) Invalidate(ctx context.Context, organizationId uuid.UUID) {
	c.dropLocal(organizationId)

	if c.bus != nil {
		if err := c.bus.Publish(ctx, organizationId); err != nil {
			c.logger.Printf("[CACHE] Invalidation broadcast failed for %s: %v", organizationId, err)
		}
	}
}

func (c *Cache) dropLocal(organizationId uuid.UUID) {
	key := organizationId.String()
	c.entries.Delete(key)

	prefix := key + ":"
	for itemKey := range c.bytes.Items() {
		if len(itemKey) > len(prefix) && itemKey[:len(prefix)] == prefix {
			c.bytes.Delete(itemKey)
		}
	}
}

func (c *Cache) build(ctx context.Context, organizationId uuid.UUID) (*qa.Corpus, error) {
	started := time.Now()

	papers, err := c.source.ListPapers(ctx, organizationId)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	if len(papers) == 0 {
		return nil, ErrNoPapers
	}

	corpus := c.engine.NewCorpus(organizationId)
	for _, paper := range papers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := c.paperBytes(ctx, organizationId, paper)
		if err != nil {
			c.logger.Printf("[CACHE] Skipping paper '%s': %v", paper.Title, err)
			continue
		}

		filename := filepath.Base(paper.StoragePath)
		if err := c.engine.Ingest(corpus, paper.Title, filename, content); err != nil {
			c.logger.Printf("[CACHE] Skipping paper '%s': %v", paper.Title, err)
			continue
		}
	}

	if corpus.DocumentCount() == 0 {
		return nil, fmt.Errorf("corpus build failed: no paper could be ingested")
	}

	c.logger.Printf("[CACHE] Built corpus for %s: %d/%d papers in %s",
		organizationId, corpus.DocumentCount(), len(papers), time.Since(started).Round(time.Millisecond))
	return corpus, nil
}

func (c *Cache) paperBytes(ctx context.Context, organizationId uuid.UUID, paper PaperRef) ([]byte, error) {
	key := organizationId.String() + ":" + paper.Id.String()

	if cached, found := c.bytes.Get(key); found {
		return cached.([]byte), nil
	}

	content, err := c.source.FetchPaperBytes(ctx, paper.StoragePath)
	if err != nil {
		return nil, err
	}

	c.bytes.SetDefault(key, content)
	return content, nil
}
