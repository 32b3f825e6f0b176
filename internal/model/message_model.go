package model

import "time"

// UniqueChatClientMsg is the constraint name enforcing one message per (chat, client id).
const UniqueChatClientMsg = "unique_chat_client_msg"

type Message struct {
	Id          int64     `gorm:"primaryKey;autoIncrement"`
	ChatId      int64     `gorm:"not null;index;uniqueIndex:unique_chat_client_msg,priority:1"`
	Chat        Chat      `gorm:"foreignKey:ChatId;constraint:OnDelete:CASCADE"`
	SenderId    *int64    `gorm:"index"`
	Sender      *User     `gorm:"foreignKey:SenderId;constraint:OnDelete:SET NULL"`
	Text        string    `gorm:"type:text;not null"`
	Timestamp   time.Time `gorm:"type:timestamptz;not null;autoCreateTime;index"`
	ClientMsgId *string   `gorm:"type:varchar(36);index;uniqueIndex:unique_chat_client_msg,priority:2"`
	Read        bool      `gorm:"not null;default:false"`
}

func (Message) TableName() string {
	return "messages"
}
