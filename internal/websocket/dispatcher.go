package websocket

import (
	"context"
	"encoding/json"
	"time"

	"messenger-be/internal/dto"
	"messenger-be/internal/entity"
	"messenger-be/internal/pkg/logger"
)

// Relay forwards a chat payload to other instances. *ClusterRelay satisfies it.
type Relay interface {
	Publish(ctx context.Context, chatID int64, payload []byte) error
}

// Dispatcher shapes domain outcomes into wire payloads and fans them out.
// Delivery is best effort: no retries, at most once per connected peer.
type Dispatcher struct {
	registry *Registry
	relay    Relay
	logger   logger.ILogger
}

// NewDispatcher builds a dispatcher. relay may be nil for a single instance.
func NewDispatcher(registry *Registry, relay Relay, log logger.ILogger) *Dispatcher {
	return &Dispatcher{registry: registry, relay: relay, logger: log}
}

func MessagePayload(msg *entity.Message) ([]byte, error) {
	return json.Marshal(dto.OutboundMessage{
		Type:      dto.EventTypeMessage,
		Id:        msg.Id,
		ChatId:    msg.ChatId,
		SenderId:  msg.SenderId,
		Text:      msg.Text,
		Timestamp: msg.Timestamp.UTC(),
		Read:      msg.Read,
	})
}

func ReadPayload(messageID int64) ([]byte, error) {
	return json.Marshal(dto.OutboundRead{Type: dto.EventTypeRead, MessageId: messageID})
}

func ErrorPayload(message string) []byte {
	b, _ := json.Marshal(dto.OutboundError{Error: message})
	return b
}

func (d *Dispatcher) MessageCreated(msg *entity.Message) {
	payload, err := MessagePayload(msg)
	if err != nil {
		d.logger.Error("Dispatcher", "Failed to encode message", map[string]interface{}{"error": err.Error(), "message_id": msg.Id})
		return
	}
	d.deliver(msg.ChatId, payload)
}

func (d *Dispatcher) ReadReceipt(chatID, messageID int64) {
	payload, err := ReadPayload(messageID)
	if err != nil {
		d.logger.Error("Dispatcher", "Failed to encode read receipt", map[string]interface{}{"error": err.Error(), "message_id": messageID})
		return
	}
	d.deliver(chatID, payload)
}

func (d *Dispatcher) deliver(chatID int64, payload []byte) {
	delivered := d.registry.Broadcast(chatID, payload)
	d.logger.Debug("Dispatcher", "Broadcast", map[string]interface{}{"chat_id": chatID, "delivered": delivered})

	if d.relay == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.relay.Publish(ctx, chatID, payload); err != nil {
		d.logger.Warn("Dispatcher", "Cluster relay publish failed", map[string]interface{}{"chat_id": chatID, "error": err.Error()})
	}
}
