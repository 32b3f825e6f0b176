package entity

import "time"

type Message struct {
	Id          int64
	ChatId      int64
	SenderId    int64
	Text        string
	Timestamp   time.Time
	ClientMsgId *string
	Read        bool
}

// SendResult carries the outcome of an idempotent send. Created is false when
// the client id matched a message that was already stored.
type SendResult struct {
	Message *Message
	Created bool
}

// ReadResult carries the outcome of a mark-read. Transitioned is true only when
// the message flipped from unread to read on this call.
type ReadResult struct {
	Message      *Message
	Transitioned bool
}
