package entity

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	Id        uuid.UUID
	Name      string
	CreatedBy uuid.UUID
	CreatedAt time.Time
}
