package service

import (
	"context"
	"encoding/json"
	"time"

	"messenger-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ChatEventsTopic is the in-process topic carrying committed chat domain events.
const ChatEventsTopic = "chat.events"

type eventEnvelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

type IEventPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

type eventPublisherService struct {
	topicName string
	publisher message.Publisher
}

func NewEventPublisherService(topicName string, publisher message.Publisher) IEventPublisherService {
	return &eventPublisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (s *eventPublisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(eventEnvelope{
		Type:       event.EventType(),
		OccurredAt: event.Timestamp().UTC(),
		Data:       event.Payload(),
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", event.EventType())
	msg.SetContext(ctx)

	return s.publisher.Publish(s.topicName, msg)
}
