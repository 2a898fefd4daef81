package stream

import (
	"github.com/barnabasli/alexandria/pkg/rag/sources"
)

type EventType string

const (
	EventThinking        EventType = "thinking"
	EventAnswerFragment  EventType = "answer_fragment"
	EventSourceList      EventType = "source_list"
	EventEnrichedSources EventType = "enriched_sources"
	EventError           EventType = "error"
	EventDone            EventType = "done"
)

// Event is one tagged pipeline output. Within a query the stream is
// strictly ordered: thinking events, then answer fragments, then at most
// one source list (plus its enriched companion), then exactly one
// terminal Done or Error.
type Event struct {
	Type EventType

	// Text carries the thinking phrase, answer fragment, or error message.
	Text string

	Citations []sources.Citation
	Enriched  []sources.EnrichedCitation

	// InsufficientEvidence accompanies the single fragment emitted when
	// the engine could not support an answer.
	InsufficientEvidence bool
}

func thinkingEvent(text string) Event {
	return Event{Type: EventThinking, Text: text}
}

func fragmentEvent(text string) Event {
	return Event{Type: EventAnswerFragment, Text: text}
}

func errorEvent(message string, insufficient bool) Event {
	return Event{Type: EventError, Text: message, InsufficientEvidence: insufficient}
}

func doneEvent() Event {
	return Event{Type: EventDone}
}
