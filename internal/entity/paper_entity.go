package entity

import (
	"time"

	"github.com/google/uuid"
)

// Paper is immutable after create. StoragePath is the object key inside the
// storage bucket ("org_<orgId>/<uuid>_<filename>").
type Paper struct {
	Id             uuid.UUID
	Title          string
	StoragePath    string
	OrganizationId uuid.UUID
	UploadedBy     uuid.UUID
	UploadedAt     time.Time

	// IngestStats is populated by the indexing consumer (chunk count,
	// extracted characters). Informational only.
	IngestStats map[string]interface{}
}
