package implementation

import (
	"context"
	"errors"

	"github.com/barnabasli/alexandria/internal/entity"
	"github.com/barnabasli/alexandria/internal/mapper"
	"github.com/barnabasli/alexandria/internal/model"
	"github.com/barnabasli/alexandria/internal/repository/contract"
	"github.com/barnabasli/alexandria/internal/repository/specification"

	"gorm.io/gorm"
)

type OrganizationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.OrganizationMapper
}

func NewOrganizationRepository(db *gorm.DB) contract.OrganizationRepository {
	return &OrganizationRepositoryImpl{
		db:     db,
		mapper: mapper.NewOrganizationMapper(),
	}
}

func (r *OrganizationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *OrganizationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Organization, error) {
	var m model.Organization
	db := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := db.First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *OrganizationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Organization, error) {
	var models []model.Organization
	db := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	orgs := make([]*entity.Organization, len(models))
	for i := range models {
		orgs[i] = r.mapper.ToEntity(&models[i])
	}
	return orgs, nil
}
