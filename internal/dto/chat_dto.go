package dto

import (
	"time"

	"github.com/google/uuid"
)

type QueryRequest struct {
	Message    string `json:"message" validate:"required"`
	SearchMode string `json:"search_mode,omitempty" validate:"omitempty,oneof=standard rephrase multiple_queries"`
	Model      string `json:"model,omitempty"`
}

type QueryAcceptedResponse struct {
	State string `json:"state"`
}

type SessionStateResponse struct {
	State       string `json:"state"`
	LastOutcome string `json:"last_outcome,omitempty"`
}

type SourceDTO struct {
	Title      string  `json:"title"`
	Type       string  `json:"type"`
	Confidence int    `json:"confidence"` // 0..100
}

type MessageResponse struct {
	Id        uuid.UUID   `json:"id"`
	Role      string      `json:"role"`
	Text      string      `json:"text"`
	Sources   []SourceDTO `json:"sources,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type ConversationResponse struct {
	ConversationId string            `json:"conversation_id,omitempty"`
	Messages       []MessageResponse `json:"messages"`
}

type CatalogEntryResponse struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedbackRequest struct {
	MessageId uuid.UUID `json:"message_id" validate:"required"`
	Positive  bool      `json:"positive"`
	Reason    string    `json:"reason,omitempty" validate:"omitempty,oneof=not_relevant not_factually_correct incomplete missing too_general complex_topic technical_issue"`
}

type FeedbackResponse struct {
	Regenerated bool   `json:"regenerated"`
	SearchMode  string `json:"search_mode,omitempty"`
}

// StreamDelta is the websocket payload for one streamed answer fragment.
// UserId routes the delta through the in-process bus to the right
// connections; clients ignore it.
type StreamDelta struct {
	UserId         string      `json:"user_id"`
	Type           string      `json:"type"`
	Token          string      `json:"token,omitempty"`
	Sources        []SourceDTO `json:"sources,omitempty"`
	ConversationId string      `json:"conversation_id,omitempty"`
	Message        string      `json:"message,omitempty"`
	Reply          string      `json:"reply,omitempty"`
}
