package service

import "errors"

var (
	// ErrNotApprovedMember gates every tenant-scoped operation. Surfaced
	// before any pipeline work starts.
	ErrNotApprovedMember = errors.New("user is not an approved member of this organization")

	ErrOrganizationNotFound = errors.New("organization not found")
	ErrPaperNotFound        = errors.New("paper not found")
	ErrUnsupportedDocument  = errors.New("unsupported document type")
)
