package specification

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ByChatID struct {
	ChatID int64
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

type ByClientMsgID struct {
	ClientMsgID string
}

func (s ByClientMsgID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("client_msg_id = ?", s.ClientMsgID)
}

// Chronological orders history by timestamp, ties broken by id.
type Chronological struct{}

func (s Chronological) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "timestamp"}},
		{Column: clause.Column{Name: "id"}},
	}})
}
