package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/internal/dto"
	"github.com/barnabasli/alexandria/internal/entity"
	"github.com/barnabasli/alexandria/internal/pkg/logger"
	"github.com/barnabasli/alexandria/internal/repository/specification"
	"github.com/barnabasli/alexandria/internal/repository/unitofwork"
	"github.com/barnabasli/alexandria/pkg/document"
	"github.com/barnabasli/alexandria/pkg/events"
	pktNats "github.com/barnabasli/alexandria/pkg/nats"
	"github.com/barnabasli/alexandria/pkg/rag/corpuscache"
	"github.com/barnabasli/alexandria/pkg/storage"
	"github.com/barnabasli/alexandria/pkg/vectorindex"
)

type IPaperService interface {
	Upload(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID, req *dto.UploadPaperRequest, filename string, content []byte, contentType string) (*dto.UploadPaperResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID) ([]*dto.GetPaperResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID, paperId uuid.UUID) error
	Stats(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID) (*dto.OrganizationStatsResponse, error)
}

type paperService struct {
	uowFactory        unitofwork.RepositoryFactory
	membershipService IMembershipService
	store             storage.PaperStore
	cache             *corpuscache.Cache
	index             vectorindex.Index
	publisherService  IPublisherService
	eventPublisher    *pktNats.Publisher
	log               logger.ILogger
}

func NewPaperService(
	uowFactory unitofwork.RepositoryFactory,
	membershipService IMembershipService,
	store storage.PaperStore,
	cache *corpuscache.Cache,
	index vectorindex.Index,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IPaperService {
	return &paperService{
		uowFactory:        uowFactory,
		membershipService: membershipService,
		store:             store,
		cache:             cache,
		index:             index,
		publisherService:  publisherService,
		eventPublisher:    eventPublisher,
		log:               log,
	}
}

func (s *paperService) Upload(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID, req *dto.UploadPaperRequest, filename string, content []byte, contentType string) (*dto.UploadPaperResponse, error) {
	if err := s.membershipService.RequireApprovedMember(ctx, userId, organizationId); err != nil {
		return nil, err
	}

	if _, err := document.ParserFor(filename); err != nil {
		return nil, ErrUnsupportedDocument
	}

	paper := &entity.Paper{
		Id:             uuid.New(),
		Title:          req.Title,
		OrganizationId: organizationId,
		UploadedBy:     userId,
		UploadedAt:     time.Now(),
	}
	paper.StoragePath = fmt.Sprintf("org_%s/%s_%s", organizationId, paper.Id, filename)

	if err := s.store.Upload(ctx, paper.StoragePath, content, contentType); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	if err := uow.PaperRepository().Create(ctx, paper); err != nil {
		uow.Rollback()
		// Keep storage consistent with the table.
		if delErr := s.store.Delete(ctx, paper.StoragePath); delErr != nil {
			s.log.Warn("paper", "Orphaned upload left in storage", map[string]interface{}{
				"storage_path": paper.StoragePath,
				"error":        delErr.Error(),
			})
		}
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// Stale answers are worse than a slow next query: the corpus entry
	// dies before this call returns.
	s.cache.Invalidate(ctx, organizationId)

	s.queueIndexing(ctx, paper)
	s.publishEvent(ctx, events.NewPaperCreated(paper.Id, organizationId, userId, paper.Title))

	return &dto.UploadPaperResponse{
		Id:             paper.Id,
		Title:          paper.Title,
		UploadedAt:     paper.UploadedAt,
		IndexingQueued: true,
	}, nil
}

func (s *paperService) GetAll(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID) ([]*dto.GetPaperResponse, error) {
	if err := s.membershipService.RequireApprovedMember(ctx, userId, organizationId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	papers, err := uow.PaperRepository().FindAll(ctx,
		specification.OwnedByOrganization{OrganizationID: organizationId},
		specification.OrderBy{Field: "uploaded_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.GetPaperResponse, 0, len(papers))
	for _, paper := range papers {
		url, err := s.store.SignedURL(ctx, paper.StoragePath, citationLinkExpiry)
		if err != nil {
			url = ""
		}
		result = append(result, &dto.GetPaperResponse{
			Id:          paper.Id,
			Title:       paper.Title,
			UploadedBy:  paper.UploadedBy,
			UploadedAt:  paper.UploadedAt,
			DownloadURL: url,
		})
	}
	return result, nil
}

func (s *paperService) Delete(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID, paperId uuid.UUID) error {
	if err := s.membershipService.RequireApprovedMember(ctx, userId, organizationId); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	paper, err := uow.PaperRepository().FindOne(ctx,
		specification.ByID{ID: paperId},
		specification.OwnedByOrganization{OrganizationID: organizationId},
	)
	if err != nil {
		return err
	}
	if paper == nil {
		return ErrPaperNotFound
	}

	// Vectors and the stored file go best-effort: a dangling vector is
	// filtered out at citation time, and storage leftovers are harmless.
	if err := s.index.Delete(ctx, paperId); err != nil {
		s.log.Warn("paper", "Vector delete failed", map[string]interface{}{
			"paper_id": paperId.String(),
			"error":    err.Error(),
		})
	}
	if err := s.store.Delete(ctx, paper.StoragePath); err != nil {
		s.log.Warn("paper", "Storage delete failed", map[string]interface{}{
			"storage_path": paper.StoragePath,
			"error":        err.Error(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.PaperRepository().Delete(ctx, paperId); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, organizationId)
	s.publishEvent(ctx, events.NewPaperDeleted(paperId, organizationId))

	return nil
}

func (s *paperService) Stats(ctx context.Context, userId uuid.UUID, organizationId uuid.UUID) (*dto.OrganizationStatsResponse, error) {
	if err := s.membershipService.RequireApprovedMember(ctx, userId, organizationId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	paperCount, err := uow.PaperRepository().Count(ctx,
		specification.OwnedByOrganization{OrganizationID: organizationId},
	)
	if err != nil {
		return nil, err
	}

	var vectorCount int64
	if counter, ok := s.index.(interface {
		CountByOrganization(ctx context.Context, organizationId uuid.UUID) (int64, error)
	}); ok {
		vectorCount, err = counter.CountByOrganization(ctx, organizationId)
		if err != nil {
			s.log.Warn("paper", "Vector count failed", map[string]interface{}{
				"organization_id": organizationId.String(),
				"error":           err.Error(),
			})
			vectorCount = 0
		}
	}

	return &dto.OrganizationStatsResponse{
		OrganizationId: organizationId,
		PaperCount:     paperCount,
		VectorCount:    vectorCount,
	}, nil
}

func (s *paperService) queueIndexing(ctx context.Context, paper *entity.Paper) {
	payload, err := json.Marshal(dto.PublishIndexPaperMessage{
		PaperId:        paper.Id,
		OrganizationId: paper.OrganizationId,
	})
	if err != nil {
		s.log.Error("paper", "Failed to marshal indexing message", map[string]interface{}{
			"paper_id": paper.Id.String(),
			"error":    err.Error(),
		})
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.log.Error("paper", "Failed to queue indexing", map[string]interface{}{
			"paper_id": paper.Id.String(),
			"error":    err.Error(),
		})
	}
}

func (s *paperService) publishEvent(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.log.Warn("paper", "Event publish failed", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}
