package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type PaperChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PaperId        uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrganizationId uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title          string          `gorm:"type:varchar(255)"`
	ChunkIndex     int             `gorm:"not null"`
	Text           string          `gorm:"type:text"`
	FilePath       string          `gorm:"type:varchar(512)"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (PaperChunk) TableName() string {
	return "paper_chunks"
}
