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

type MembershipRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MembershipMapper
}

func NewMembershipRepository(db *gorm.DB) contract.MembershipRepository {
	return &MembershipRepositoryImpl{
		db:     db,
		mapper: mapper.NewMembershipMapper(),
	}
}

func (r *MembershipRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MembershipRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Membership, error) {
	var m model.Membership
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

func (r *MembershipRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Membership, error) {
	var models []model.Membership
	db := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	memberships := make([]*entity.Membership, len(models))
	for i := range models {
		memberships[i] = r.mapper.ToEntity(&models[i])
	}
	return memberships, nil
}
