// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"doc-assistant-gw/internal/dto"
	"doc-assistant-gw/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains stream deltas off the in-process bus and hands
// them to the websocket hub for fan-out to the owning user's connections.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var delta dto.StreamDelta
	if err := json.Unmarshal(msg.Payload, &delta); err != nil {
		log.Printf("[ERROR] Failed to unmarshal stream delta: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if delta.UserId == "" {
		log.Printf("[ERROR] Stream delta without user id, dropping")
		msg.Ack()
		return
	}

	cs.hub.Send(delta.UserId, msg.Payload)
	msg.Ack()
}
