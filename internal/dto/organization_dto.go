package dto

import (
	"time"

	"github.com/google/uuid"
)

type GetOrganizationResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type GetMembershipResponse struct {
	OrganizationId uuid.UUID `json:"organization_id"`
	UserId         uuid.UUID `json:"user_id"`
	Status         string    `json:"status"`
}
