package contract

import (
	"context"

	"github.com/barnabasli/alexandria/internal/entity"
	"github.com/barnabasli/alexandria/internal/repository/specification"
)

type MembershipRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Membership, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Membership, error)
}
