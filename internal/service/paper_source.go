package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/barnabasli/alexandria/internal/repository/specification"
	"github.com/barnabasli/alexandria/internal/repository/unitofwork"
	"github.com/barnabasli/alexandria/pkg/rag/corpuscache"
	"github.com/barnabasli/alexandria/pkg/storage"
)

// paperSource feeds corpus builds from the paper table and the object
// store.
type paperSource struct {
	uowFactory unitofwork.RepositoryFactory
	store      storage.PaperStore
}

var _ corpuscache.PaperSource = &paperSource{}

func NewPaperSource(uowFactory unitofwork.RepositoryFactory, store storage.PaperStore) corpuscache.PaperSource {
	return &paperSource{
		uowFactory: uowFactory,
		store:      store,
	}
}

func (p *paperSource) ListPapers(ctx context.Context, organizationId uuid.UUID) ([]corpuscache.PaperRef, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)

	papers, err := uow.PaperRepository().FindAll(ctx,
		specification.OwnedByOrganization{OrganizationID: organizationId},
		specification.OrderBy{Field: "uploaded_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	refs := make([]corpuscache.PaperRef, 0, len(papers))
	for _, paper := range papers {
		refs = append(refs, corpuscache.PaperRef{
			Id:          paper.Id,
			Title:       paper.Title,
			StoragePath: paper.StoragePath,
		})
	}
	return refs, nil
}

func (p *paperSource) FetchPaperBytes(ctx context.Context, storagePath string) ([]byte, error) {
	return p.store.Download(ctx, storagePath)
}
