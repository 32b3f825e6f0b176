package dto

import "time"

const (
	EventTypeMessage = "message"
	EventTypeRead    = "read"
)

// InboundMessage is the validated body of a "message" frame.
type InboundMessage struct {
	Text        string  `validate:"required,max=4096"`
	ClientMsgId *string `validate:"omitempty,max=36"`
}

type OutboundMessage struct {
	Type      string    `json:"type"`
	Id        int64     `json:"id"`
	ChatId    int64     `json:"chat_id"`
	SenderId  int64     `json:"sender_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

type OutboundRead struct {
	Type      string `json:"type"`
	MessageId int64  `json:"message_id"`
}

type OutboundError struct {
	Error string `json:"error"`
}
