package memory

import (
	"context"
	"fmt"
	"sort"

	"messenger-be/internal/entity"
)

type chatRepository struct {
	store *Store
}

func (r *chatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range chat.ParticipantIds() {
		if _, ok := s.users[id]; !ok {
			return fmt.Errorf("memory: participant %d does not exist", id)
		}
	}
	chat.Id = s.insertChat(chat.Type, chat.Name, chat.ParticipantIds())
	return nil
}

func (r *chatRepository) CreateGroup(ctx context.Context, chatId int64, name string, creatorId int64, memberIds []int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[chatId]; !ok {
		return fmt.Errorf("memory: chat %d does not exist", chatId)
	}
	if _, ok := s.groups[chatId]; ok {
		return fmt.Errorf("memory: group %d already exists", chatId)
	}
	s.groups[chatId] = append([]int64(nil), memberIds...)
	return nil
}

func (r *chatRepository) FindByID(ctx context.Context, id int64) (*entity.Chat, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.chats[id]
	if !ok {
		return nil, nil
	}
	return s.hydrate(row), nil
}

func (r *chatRepository) FindAllByParticipant(ctx context.Context, userId int64) ([]*entity.Chat, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*entity.Chat, 0)
	for _, row := range s.chats {
		for _, m := range row.members {
			if m == userId {
				result = append(result, s.hydrate(row))
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (r *chatRepository) IsMember(ctx context.Context, chatId, userId int64) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.chats[chatId]
	if !ok {
		return false, nil
	}
	for _, m := range row.members {
		if m == userId {
			return true, nil
		}
	}
	return false, nil
}

// hydrate must be called with s.mu held.
func (s *Store) hydrate(row *chatRow) *entity.Chat {
	c := row.chat
	c.Participants = make([]entity.User, 0, len(row.members))
	for _, id := range row.members {
		if u, ok := s.users[id]; ok {
			c.Participants = append(c.Participants, u)
		} else {
			c.Participants = append(c.Participants, entity.User{Id: id})
		}
	}
	return &c
}
