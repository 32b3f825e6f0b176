package entity

import "time"

type ChatEvent struct {
	Id         int64
	EventType  string
	ChatId     int64
	MessageId  int64
	Payload    []byte
	OccurredAt time.Time
}
