package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Paper struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title          string         `gorm:"type:varchar(255)"`
	StoragePath    string         `gorm:"type:varchar(512);not null"`
	OrganizationId uuid.UUID      `gorm:"type:uuid;not null;index"`
	UploadedBy     uuid.UUID      `gorm:"type:uuid;index"`
	UploadedAt     time.Time      `gorm:"autoCreateTime"`
	IngestStats    datatypes.JSON `gorm:"type:jsonb"`
}

func (Paper) TableName() string {
	return "papers"
}
