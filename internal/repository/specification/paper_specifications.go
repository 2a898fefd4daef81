package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedByOrganization scopes papers to one tenant.
type OwnedByOrganization struct {
	OrganizationID uuid.UUID
}

func (s OwnedByOrganization) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("organization_id = ?", s.OrganizationID)
}

// ForMember filters memberships by user and organization.
type ForMember struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
}

func (s ForMember) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ? AND organization_id = ?", s.UserID, s.OrganizationID)
}

// WithStatus filters memberships by approval status.
type WithStatus struct {
	Status string
}

func (s WithStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
