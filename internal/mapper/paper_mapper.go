package mapper

import (
	"encoding/json"

	"github.com/barnabasli/alexandria/internal/entity"
	"github.com/barnabasli/alexandria/internal/model"

	"gorm.io/datatypes"
)

type PaperMapper struct{}

func NewPaperMapper() *PaperMapper {
	return &PaperMapper{}
}

func (m *PaperMapper) ToEntity(p *model.Paper) *entity.Paper {
	if p == nil {
		return nil
	}

	var stats map[string]interface{}
	if len(p.IngestStats) > 0 {
		// Malformed stats are dropped, not fatal: the column is informational.
		_ = json.Unmarshal(p.IngestStats, &stats)
	}

	return &entity.Paper{
		Id:             p.Id,
		Title:          p.Title,
		StoragePath:    p.StoragePath,
		OrganizationId: p.OrganizationId,
		UploadedBy:     p.UploadedBy,
		UploadedAt:     p.UploadedAt,
		IngestStats:    stats,
	}
}

func (m *PaperMapper) ToModel(p *entity.Paper) *model.Paper {
	if p == nil {
		return nil
	}

	var stats datatypes.JSON
	if p.IngestStats != nil {
		if raw, err := json.Marshal(p.IngestStats); err == nil {
			stats = raw
		}
	}

	return &model.Paper{
		Id:             p.Id,
		Title:          p.Title,
		StoragePath:    p.StoragePath,
		OrganizationId: p.OrganizationId,
		UploadedBy:     p.UploadedBy,
		UploadedAt:     p.UploadedAt,
		IngestStats:    stats,
	}
}
