package service

import (
	"context"
	"encoding/json"

	"doc-assistant-gw/internal/constant"
	"doc-assistant-gw/internal/dto"
	"doc-assistant-gw/internal/mapper"
	"doc-assistant-gw/internal/pkg/logger"
	"doc-assistant-gw/pkg/conversation"
	"doc-assistant-gw/pkg/events"
	"doc-assistant-gw/pkg/protocol"
	"doc-assistant-gw/pkg/regen"
	"doc-assistant-gw/pkg/session"
)

// streamListener bridges session machine callbacks onto the delta bus. One
// listener per assistant; deltas carry the owning user id so the consumer
// can route them to the right websocket connections.
type streamListener struct {
	userId    string
	publisher IPublisherService
	eventPub  regen.EventPublisher // may be nil when NATS is unavailable
	mapper    *mapper.ChatMapper
	logger    logger.ILogger
}

var _ session.Listener = &streamListener{}

func newStreamListener(
	userId string,
	publisher IPublisherService,
	eventPub regen.EventPublisher,
	chatMapper *mapper.ChatMapper,
	log logger.ILogger,
) *streamListener {
	return &streamListener{
		userId:    userId,
		publisher: publisher,
		eventPub:  eventPub,
		mapper:    chatMapper,
		logger:    log,
	}
}

func (l *streamListener) OnTyping() {
	l.publish(dto.StreamDelta{Type: constant.DeltaStart})
}

func (l *streamListener) OnToken(delta string) {
	l.publish(dto.StreamDelta{Type: constant.DeltaToken, Token: delta})
}

func (l *streamListener) OnSources(sources []protocol.Source) {
	l.publish(dto.StreamDelta{Type: constant.DeltaSources, Sources: l.mapper.SourcesToDTO(sources)})
}

func (l *streamListener) OnComplete(reply conversation.Message, conversationId string) {
	l.publish(dto.StreamDelta{
		Type:           constant.DeltaComplete,
		ConversationId: conversationId,
		Reply:          reply.Text,
		Sources:        l.mapper.SourcesToDTO(reply.Sources),
	})

	if l.eventPub != nil {
		evt := events.NewSessionCompleted(l.userId, conversationId, len(reply.Text), len(reply.Sources))
		if err := l.eventPub.Publish(context.Background(), evt); err != nil {
			l.logger.Warn("StreamListener", "Failed to publish completion event", map[string]interface{}{
				"user_id": l.userId, "error": err.Error(),
			})
		}
	}
}

func (l *streamListener) OnError(err error) {
	l.publish(dto.StreamDelta{Type: constant.DeltaError, Message: err.Error()})
}

func (l *streamListener) publish(delta dto.StreamDelta) {
	delta.UserId = l.userId
	msgJson, err := json.Marshal(delta)
	if err != nil {
		l.logger.Error("StreamListener", "Failed to marshal delta", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := l.publisher.Publish(context.Background(), msgJson); err != nil {
		l.logger.Warn("StreamListener", "Failed to publish delta", map[string]interface{}{
			"user_id": l.userId, "type": delta.Type, "error": err.Error(),
		})
	}
}
