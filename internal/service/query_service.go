package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/internal/pkg/logger"
	"github.com/barnabasli/alexandria/internal/repository/specification"
	"github.com/barnabasli/alexandria/internal/repository/unitofwork"
	"github.com/barnabasli/alexandria/pkg/rag/corpuscache"
	"github.com/barnabasli/alexandria/pkg/rag/sources"
	"github.com/barnabasli/alexandria/pkg/rag/stream"
	"github.com/barnabasli/alexandria/pkg/storage"
)

// Signed download links embedded in citations stay valid long enough for
// a reader to follow them from the rendered answer.
const citationLinkExpiry = time.Hour

type IQueryService interface {
	// StreamQuery gates the caller, resolves the tenant corpus, and
	// starts the answer pipeline. Precondition failures (membership, no
	// papers) return synchronously; everything later arrives as events.
	StreamQuery(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID, question string) (<-chan stream.Event, error)
}

type queryService struct {
	membershipService IMembershipService
	uowFactory        unitofwork.RepositoryFactory
	cache             *corpuscache.Cache
	pipeline          *stream.Pipeline
	store             storage.PaperStore
	log               logger.ILogger
}

func NewQueryService(
	membershipService IMembershipService,
	uowFactory unitofwork.RepositoryFactory,
	cache *corpuscache.Cache,
	pipeline *stream.Pipeline,
	store storage.PaperStore,
	log logger.ILogger,
) IQueryService {
	return &queryService{
		membershipService: membershipService,
		uowFactory:        uowFactory,
		cache:             cache,
		pipeline:          pipeline,
		store:             store,
		log:               log,
	}
}

func (s *queryService) StreamQuery(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID, question string) (<-chan stream.Event, error) {
	if err := s.membershipService.RequireApprovedMember(ctx, userId, organizationId); err != nil {
		return nil, err
	}

	corpus, fromCache, err := s.cache.Get(ctx, organizationId)
	if err != nil {
		return nil, err
	}

	s.log.Info("query", "Starting answer pipeline", map[string]interface{}{
		"organization_id": organizationId.String(),
		"corpus_cached":   fromCache,
		"documents":       corpus.DocumentCount(),
	})

	index, err := s.snapshotPaperIndex(ctx, organizationId)
	if err != nil {
		return nil, err
	}

	return s.pipeline.Run(ctx, corpus, organizationId, question, index), nil
}

type paperIndexSnapshot map[uuid.UUID]sources.PaperMeta

func (p paperIndexSnapshot) Lookup(paperId uuid.UUID) (sources.PaperMeta, bool) {
	meta, ok := p[paperId]
	return meta, ok
}

// snapshotPaperIndex resolves the organization's papers once per query so
// citation building never touches the database mid-stream.
func (s *queryService) snapshotPaperIndex(ctx context.Context, organizationId uuid.UUID) (sources.PaperIndex, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	papers, err := uow.PaperRepository().FindAll(ctx,
		specification.OwnedByOrganization{OrganizationID: organizationId},
	)
	if err != nil {
		return nil, err
	}

	index := paperIndexSnapshot{}
	for _, paper := range papers {
		url, err := s.store.SignedURL(ctx, paper.StoragePath, citationLinkExpiry)
		if err != nil {
			s.log.Warn("query", "Signed URL failed, citing storage path", map[string]interface{}{
				"paper_id": paper.Id.String(),
				"error":    err.Error(),
			})
			url = paper.StoragePath
		}
		index[paper.Id] = sources.PaperMeta{
			Title: paper.Title,
			Url:   url,
		}
	}
	return index, nil
}
