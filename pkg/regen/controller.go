package regen

import (
	"context"
	"fmt"

	"doc-assistant-gw/internal/pkg/logger"
	"doc-assistant-gw/pkg/conversation"
	"doc-assistant-gw/pkg/events"
	"doc-assistant-gw/pkg/session"

	"github.com/google/uuid"
)

// Feedback is one user rating of an assistant message.
type Feedback struct {
	MessageId uuid.UUID
	Positive  bool
	Reason    FeedbackReason // only meaningful for negative feedback
}

// Submitter starts a new session. Satisfied by *session.Machine.
type Submitter interface {
	Submit(ctx context.Context, sc session.Context, q session.Query) error
}

// SelectionProvider supplies the current document scope for the
// regenerated query. Satisfied by *scope.Manager.
type SelectionProvider interface {
	Selection() []string
}

// EventPublisher records feedback events on the bus. Satisfied by
// *nats.Publisher. Best effort: publish failures are logged, never fatal.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Controller maps negative feedback to a retrieval-strategy change and
// re-issues the originating query. The rated message stays in history; the
// regenerated answer is appended after it.
type Controller struct {
	sessions  Submitter
	store     *conversation.Store
	selection SelectionProvider
	publisher EventPublisher // may be nil when NATS is unavailable
	logger    logger.ILogger
}

func NewController(
	sessions Submitter,
	store *conversation.Store,
	selection SelectionProvider,
	publisher EventPublisher,
	log logger.ILogger,
) *Controller {
	return &Controller{
		sessions:  sessions,
		store:     store,
		selection: selection,
		publisher: publisher,
		logger:    log,
	}
}

// HandleFeedback records the feedback event and, for a negative reason with
// a recommended mode, submits a new session using the original user query.
// Returns whether a regeneration was started. A busy session surfaces
// session.ErrSessionBusy to the caller; the request is never silently
// dropped.
func (c *Controller) HandleFeedback(ctx context.Context, sc session.Context, fb Feedback) (bool, error) {
	c.record(ctx, events.NewFeedbackRecorded(sc.UserId, fb.MessageId.String(), fb.Positive, string(fb.Reason)))

	if fb.Positive {
		return false, nil
	}

	mode, ok := RecommendedMode(fb.Reason)
	if !ok {
		// e.g. technical_issue: recorded, nothing to regenerate
		return false, nil
	}

	query, found := c.store.OriginatingQuery(fb.MessageId)
	if !found {
		return false, fmt.Errorf("message %s has no originating query", fb.MessageId)
	}

	err := c.sessions.Submit(ctx, sc, session.Query{
		Text:  query,
		Scope: c.selection.Selection(),
		Mode:  mode,
	})
	if err != nil {
		return false, err
	}

	c.logger.Info("Regen", "Regeneration started", map[string]interface{}{
		"message_id": fb.MessageId.String(), "reason": string(fb.Reason), "search_mode": string(mode),
	})
	c.record(ctx, events.NewRegenerationTriggered(sc.UserId, fb.MessageId.String(), string(mode)))
	return true, nil
}

func (c *Controller) record(ctx context.Context, event events.Event) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("Regen", "Failed to publish event", map[string]interface{}{
			"event": event.EventType(), "error": err.Error(),
		})
	}
}
