package mapper

import (
	"messenger-be/internal/entity"
	"messenger-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ChatToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}

	participants := make([]entity.User, 0, len(c.Participants))
	for i := range c.Participants {
		participants = append(participants, *m.UserToEntity(&c.Participants[i]))
	}

	return &entity.Chat{
		Id:           c.Id,
		Name:         c.Name,
		Type:         c.Type,
		Participants: participants,
	}
}

func (m *ChatMapper) UserToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:    u.Id,
		Name:  u.Name,
		Email: u.Email,
	}
}

func (m *ChatMapper) ChatEventToModel(e *entity.ChatEvent) *model.ChatEvent {
	if e == nil {
		return nil
	}
	return &model.ChatEvent{
		Id:         e.Id,
		EventType:  e.EventType,
		ChatId:     e.ChatId,
		MessageId:  e.MessageId,
		Payload:    e.Payload,
		OccurredAt: e.OccurredAt,
	}
}
