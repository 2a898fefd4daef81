package contract

import (
	"context"

	"github.com/barnabasli/alexandria/internal/entity"
	"github.com/barnabasli/alexandria/internal/repository/specification"

	"github.com/google/uuid"
)

type PaperRepository interface {
	Create(ctx context.Context, paper *entity.Paper) error
	Update(ctx context.Context, paper *entity.Paper) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Paper, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Paper, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
