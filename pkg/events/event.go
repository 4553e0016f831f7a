package events

import "time"

// Event is the contract for domain events leaving the gateway.
type Event interface {
	// EventType returns the unique code for this event (e.g. "FEEDBACK_RECORDED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewFeedbackRecorded is emitted for every rating a user leaves on an
// assistant message, positive or negative.
func NewFeedbackRecorded(userId, messageId string, positive bool, reason string) Event {
	return BaseEvent{
		Type: "FEEDBACK_RECORDED",
		Data: map[string]interface{}{
			"user_id":    userId,
			"message_id": messageId,
			"positive":   positive,
			"reason":     reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewRegenerationTriggered is emitted when negative feedback re-issues a
// query under an adjusted search mode.
func NewRegenerationTriggered(userId, messageId, searchMode string) Event {
	return BaseEvent{
		Type: "REGENERATION_TRIGGERED",
		Data: map[string]interface{}{
			"user_id":     userId,
			"message_id":  messageId,
			"search_mode": searchMode,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionCompleted is emitted when an answer stream finalizes into a
// conversation message.
func NewSessionCompleted(userId, conversationId string, replyLen, sourceCount int) Event {
	return BaseEvent{
		Type: "SESSION_COMPLETED",
		Data: map[string]interface{}{
			"user_id":         userId,
			"conversation_id": conversationId,
			"reply_len":       replyLen,
			"source_count":    sourceCount,
		},
		OccurredAt: time.Now(),
	}
}
