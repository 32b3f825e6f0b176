package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "MESSAGE_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	TypeMessageCreated = "MESSAGE_CREATED"
	TypeMessageRead    = "MESSAGE_READ"
)

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

func MessageCreated(chatID, messageID, senderID int64, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeMessageCreated,
		Data: map[string]interface{}{
			"chat_id":    chatID,
			"message_id": messageID,
			"sender_id":  senderID,
		},
		OccurredAt: at,
	}
}

func MessageRead(chatID, messageID, readerID int64, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeMessageRead,
		Data: map[string]interface{}{
			"chat_id":    chatID,
			"message_id": messageID,
			"reader_id":  readerID,
		},
		OccurredAt: at,
	}
}

// Int64 reads a numeric payload field. Payloads that went through JSON carry float64.
func Int64(payload map[string]interface{}, key string) (int64, bool) {
	switch v := payload[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
