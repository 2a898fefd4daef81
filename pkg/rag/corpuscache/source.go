package corpuscache

import (
	"context"

	"github.com/google/uuid"
)

// PaperRef identifies one stored paper during a corpus build.
type PaperRef struct {
	Id          uuid.UUID
	Title       string
	StoragePath string
}

// PaperSource lists a tenant's papers and fetches their raw bytes.
type PaperSource interface {
	ListPapers(ctx context.Context, organizationId uuid.UUID) ([]PaperRef, error)
	FetchPaperBytes(ctx context.Context, storagePath string) ([]byte, error)
}
