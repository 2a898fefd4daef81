package unitofwork

import (
	"context"

	"github.com/barnabasli/alexandria/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PaperRepository() contract.PaperRepository
	OrganizationRepository() contract.OrganizationRepository
	MembershipRepository() contract.MembershipRepository
	PaperVectorRepository() contract.PaperVectorRepository
}
