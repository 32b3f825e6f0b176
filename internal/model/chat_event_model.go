package model

import (
	"time"

	"gorm.io/datatypes"
)

// ChatEvent journals every domain event that left the realtime core.
type ChatEvent struct {
	Id         int64          `gorm:"primaryKey;autoIncrement"`
	EventType  string         `gorm:"type:varchar(50);not null;index"`
	ChatId     int64          `gorm:"not null;index:idx_chat_events_chat_occurred,priority:1"`
	MessageId  int64          `gorm:"not null"`
	Payload    datatypes.JSON `gorm:"type:jsonb"`
	OccurredAt time.Time      `gorm:"not null;index:idx_chat_events_chat_occurred,priority:2"`
}

func (ChatEvent) TableName() string {
	return "chat_events"
}
