package implementation

import (
	"context"
	"errors"

	"github.com/barnabasli/alexandria/internal/entity"
	"github.com/barnabasli/alexandria/internal/mapper"
	"github.com/barnabasli/alexandria/internal/model"
	"github.com/barnabasli/alexandria/internal/repository/contract"
	"github.com/barnabasli/alexandria/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaperRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaperMapper
}

func NewPaperRepository(db *gorm.DB) contract.PaperRepository {
	return &PaperRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaperMapper(),
	}
}

func (r *PaperRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PaperRepositoryImpl) Create(ctx context.Context, paper *entity.Paper) error {
	m := r.mapper.ToModel(paper)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*paper = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaperRepositoryImpl) Update(ctx context.Context, paper *entity.Paper) error {
	m := r.mapper.ToModel(paper)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*paper = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaperRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Paper{}, id).Error
}

func (r *PaperRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Paper, error) {
	var m model.Paper
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

func (r *PaperRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Paper, error) {
	var models []model.Paper
	db := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}

	papers := make([]*entity.Paper, len(models))
	for i := range models {
		papers[i] = r.mapper.ToEntity(&models[i])
	}
	return papers, nil
}

func (r *PaperRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	db := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Paper{}), specs...)
	err := db.Count(&count).Error
	return count, err
}
