package contract

import (
	"context"

	"github.com/barnabasli/alexandria/internal/entity"
	"github.com/barnabasli/alexandria/internal/repository/specification"
)

type OrganizationRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Organization, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Organization, error)
}
