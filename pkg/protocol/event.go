package protocol

// EventType identifies the frame types emitted by the answer stream.
type EventType string

const (
	EventStart    EventType = "start"
	EventToken    EventType = "token"
	EventSources  EventType = "sources"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Source is a provenance entry attached to an answer. Never mutated after
// creation.
type Source struct {
	Title      string `json:"title"`
	Kind       string `json:"type"`
	Confidence int    `json:"confidence"` // 0..100
}

// Event is one decoded stream frame. Exactly one payload field is meaningful
// depending on Type:
//
//	EventToken    -> Token
//	EventSources  -> Sources
//	EventComplete -> ConversationId
//	EventError    -> Message
type Event struct {
	Type           EventType
	Token          string
	Sources        []Source
	ConversationId string
	Message        string
}
