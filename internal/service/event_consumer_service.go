package service

import (
	"context"
	"encoding/json"

	"messenger-be/internal/entity"
	"messenger-be/internal/pkg/logger"
	"messenger-be/internal/repository/unitofwork"
	"messenger-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventForwarder ships an event off-process. *nats.Publisher satisfies it.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type IEventConsumerService interface {
	Consume(ctx context.Context) error
}

type eventConsumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	forwarder  EventForwarder
	logger     logger.ILogger
}

// NewEventConsumerService journals every event on topicName. forwarder may be nil.
func NewEventConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	forwarder EventForwarder,
	log logger.ILogger,
) IEventConsumerService {
	return &eventConsumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		forwarder:  forwarder,
		logger:     log,
	}
}

func (cs *eventConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *eventConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.logger.Error("EventConsumer", "Failed to unmarshal event", map[string]interface{}{"error": err.Error(), "msg_id": msg.UUID})
		msg.Ack() // never decodable, do not redeliver
		return
	}

	event := events.BaseEvent{Type: envelope.Type, Data: envelope.Data, OccurredAt: envelope.OccurredAt}
	chatId, _ := events.Int64(envelope.Data, "chat_id")
	messageId, _ := events.Int64(envelope.Data, "message_id")

	data, err := json.Marshal(envelope.Data)
	if err != nil {
		data = []byte("{}")
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatEventRepository().Create(ctx, &entity.ChatEvent{
		EventType:  envelope.Type,
		ChatId:     chatId,
		MessageId:  messageId,
		Payload:    data,
		OccurredAt: envelope.OccurredAt,
	}); err != nil {
		// The journal is best effort. gochannel redelivers a Nack immediately,
		// which would spin while the database is down.
		cs.logger.Error("EventConsumer", "Failed to journal event", map[string]interface{}{
			"error": err.Error(), "type": envelope.Type, "chat_id": chatId, "message_id": messageId,
		})
	}

	if cs.forwarder != nil {
		if err := cs.forwarder.Publish(ctx, event); err != nil {
			cs.logger.Warn("EventConsumer", "Failed to forward event to NATS", map[string]interface{}{
				"error": err.Error(), "type": envelope.Type,
			})
		}
	}

	msg.Ack()
}
