package implementation

import (
	"context"
	"errors"

	"messenger-be/internal/entity"
	"messenger-be/internal/mapper"
	"messenger-be/internal/model"
	"messenger-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatRepository(db *gorm.DB) contract.ChatRepository {
	return &ChatRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

// Create inserts the chat row and its membership rows. Participants must already exist.
func (r *ChatRepositoryImpl) Create(ctx context.Context, chat *entity.Chat) error {
	m := &model.Chat{Name: chat.Name, Type: chat.Type}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			return err
		}
		members := make([]model.ChatMember, 0, len(chat.Participants))
		for _, p := range chat.Participants {
			members = append(members, model.ChatMember{ChatId: m.Id, UserId: p.Id})
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return err
	}

	chat.Id = m.Id
	return nil
}

func (r *ChatRepositoryImpl) CreateGroup(ctx context.Context, chatId int64, name string, creatorId int64, memberIds []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grp := &model.Group{Id: chatId, Name: name, CreatorId: &creatorId}
		if err := tx.Omit(clause.Associations).Create(grp).Error; err != nil {
			return err
		}
		members := make([]model.GroupMember, 0, len(memberIds))
		for _, id := range memberIds {
			members = append(members, model.GroupMember{GroupId: chatId, UserId: id})
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
}

func (r *ChatRepositoryImpl) FindByID(ctx context.Context, id int64) (*entity.Chat, error) {
	var m model.Chat
	if err := r.db.WithContext(ctx).Preload("Participants").First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatToEntity(&m), nil
}

func (r *ChatRepositoryImpl) FindAllByParticipant(ctx context.Context, userId int64) ([]*entity.Chat, error) {
	var models []*model.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Joins("JOIN chat_members cm ON cm.chat_id = chats.id").
		Where("cm.user_id = ?", userId).
		Order("chats.id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.Chat, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatToEntity(m)
	}
	return entities, nil
}

func (r *ChatRepositoryImpl) IsMember(ctx context.Context, chatId, userId int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ChatMember{}).
		Where("chat_id = ? AND user_id = ?", chatId, userId).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
