package model

import (
	"time"

	"github.com/google/uuid"
)

type Membership struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID  `gorm:"type:uuid;not null;index:idx_memberships_user_org"`
	OrganizationId uuid.UUID  `gorm:"type:uuid;not null;index:idx_memberships_user_org"`
	Status         string     `gorm:"type:varchar(32);not null;default:'pending'"`
	RoleInOrg      string     `gorm:"type:varchar(32);not null;default:'member'"`
	RequestedAt    time.Time  `gorm:"autoCreateTime"`
	ApprovedAt     *time.Time
}

func (Membership) TableName() string {
	return "memberships"
}
