package entity

import (
	"time"

	"github.com/google/uuid"
)

// Membership status values mirror the approval workflow owned by the
// identity backend; this service only ever reads them.
const (
	MembershipStatusPending  = "pending"
	MembershipStatusApproved = "approved"
	MembershipStatusDenied   = "denied"
)

type Membership struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	OrganizationId uuid.UUID
	Status         string
	RoleInOrg      string
	RequestedAt    time.Time
	ApprovedAt     *time.Time
}
