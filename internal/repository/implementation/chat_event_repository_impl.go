package implementation

import (
	"context"

	"messenger-be/internal/entity"
	"messenger-be/internal/mapper"
	"messenger-be/internal/repository/contract"

	"gorm.io/gorm"
)

type ChatEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatEventRepository(db *gorm.DB) contract.ChatEventRepository {
	return &ChatEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatEventRepositoryImpl) Create(ctx context.Context, event *entity.ChatEvent) error {
	m := r.mapper.ChatEventToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	event.Id = m.Id
	return nil
}
