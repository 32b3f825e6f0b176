package contract

import (
	"context"

	"messenger-be/internal/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	CreateGroup(ctx context.Context, chatId int64, name string, creatorId int64, memberIds []int64) error
	FindByID(ctx context.Context, id int64) (*entity.Chat, error)
	FindAllByParticipant(ctx context.Context, userId int64) ([]*entity.Chat, error)
	IsMember(ctx context.Context, chatId, userId int64) (bool, error)
}
