package mapper

import (
	"messenger-be/internal/entity"
	"messenger-be/internal/model"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) ToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	var senderId int64
	if msg.SenderId != nil {
		senderId = *msg.SenderId
	}

	return &entity.Message{
		Id:          msg.Id,
		ChatId:      msg.ChatId,
		SenderId:    senderId,
		Text:        msg.Text,
		Timestamp:   msg.Timestamp.UTC(),
		ClientMsgId: msg.ClientMsgId,
		Read:        msg.Read,
	}
}

func (m *MessageMapper) ToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	var senderId *int64
	if msg.SenderId != 0 {
		id := msg.SenderId
		senderId = &id
	}

	return &model.Message{
		Id:          msg.Id,
		ChatId:      msg.ChatId,
		SenderId:    senderId,
		Text:        msg.Text,
		Timestamp:   msg.Timestamp,
		ClientMsgId: msg.ClientMsgId,
		Read:        msg.Read,
	}
}
