package model

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(255);not null"`
	CreatedBy uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Organization) TableName() string {
	return "organizations"
}
