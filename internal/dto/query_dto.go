package dto

import (
	"github.com/barnabasli/alexandria/pkg/rag/sources"
)

type QueryRequest struct {
	Question string `json:"question" validate:"required,min=1,max=2000"`
}

// QueryStreamPayload is one SSE frame of a streamed answer. Optional
// fields are omitted entirely when not present; consumers must treat
// absence as not-present, not as false or empty.
type QueryStreamPayload struct {
	Answer           string                     `json:"answer,omitempty"`
	Thinking         *bool                      `json:"thinking,omitempty"`
	Sources          []sources.Citation         `json:"sources,omitempty"`
	EnhancedSources  []sources.EnrichedCitation `json:"enhanced_sources,omitempty"`
	Error            string                     `json:"error,omitempty"`
	InsufficientInfo *bool                      `json:"insufficient_info,omitempty"`
}
