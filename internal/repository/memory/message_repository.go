package memory

import (
	"context"
	"fmt"
	"sort"

	"messenger-be/internal/entity"
	"messenger-be/internal/repository/contract"
	"messenger-be/internal/repository/specification"
)

type messageRepository struct {
	store *Store
}

func copyMessage(m *entity.Message) *entity.Message {
	c := *m
	if m.ClientMsgId != nil {
		id := *m.ClientMsgId
		c.ClientMsgId = &id
	}
	return &c
}

func (r *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.ClientMsgId != nil {
		for _, m := range s.messages {
			if m.ChatId == message.ChatId && m.ClientMsgId != nil && *m.ClientMsgId == *message.ClientMsgId {
				return contract.ErrDuplicateClientMessage
			}
		}
	}

	s.nextMessageId++
	stored := copyMessage(message)
	stored.Id = s.nextMessageId
	stored.Timestamp = s.now()
	stored.Read = false
	s.messages = append(s.messages, stored)

	*message = *copyMessage(stored)
	return nil
}

func (r *messageRepository) MarkRead(ctx context.Context, id int64) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.messages {
		if m.Id == id {
			if m.Read {
				return false, nil
			}
			m.Read = true
			return true, nil
		}
	}
	return false, nil
}

func (r *messageRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	all, err := r.query(specs...)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *messageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	return r.query(specs...)
}

func (r *messageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.query(specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

// query interprets the specifications the gorm implementation understands:
// filters first, then ordering, then pagination, matching SQL semantics.
func (r *messageRepository) query(specs ...specification.Specification) ([]*entity.Message, error) {
	s := r.store
	s.mu.RLock()
	result := make([]*entity.Message, 0, len(s.messages))
	for _, m := range s.messages {
		result = append(result, copyMessage(m))
	}
	s.mu.RUnlock()

	var less func(a, b *entity.Message) bool
	var page *specification.Pagination

	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByID:
			result = filter(result, func(m *entity.Message) bool { return m.Id == v.ID })
		case specification.ByChatID:
			result = filter(result, func(m *entity.Message) bool { return m.ChatId == v.ChatID })
		case specification.ByClientMsgID:
			result = filter(result, func(m *entity.Message) bool {
				return m.ClientMsgId != nil && *m.ClientMsgId == v.ClientMsgID
			})
		case specification.Chronological:
			less = func(a, b *entity.Message) bool {
				if a.Timestamp.Equal(b.Timestamp) {
					return a.Id < b.Id
				}
				return a.Timestamp.Before(b.Timestamp)
			}
		case specification.OrderBy:
			if v.Field != "id" {
				return nil, fmt.Errorf("memory: unsupported order field %q", v.Field)
			}
			desc := v.Desc
			less = func(a, b *entity.Message) bool {
				if desc {
					return a.Id > b.Id
				}
				return a.Id < b.Id
			}
		case specification.Pagination:
			p := v
			page = &p
		default:
			return nil, fmt.Errorf("memory: unsupported specification %T", spec)
		}
	}

	if less != nil {
		sort.SliceStable(result, func(i, j int) bool { return less(result[i], result[j]) })
	}

	if page != nil {
		if page.Offset >= len(result) {
			return []*entity.Message{}, nil
		}
		result = result[page.Offset:]
		if page.Limit >= 0 && page.Limit < len(result) {
			result = result[:page.Limit]
		}
	}

	return result, nil
}

func filter(in []*entity.Message, keep func(*entity.Message) bool) []*entity.Message {
	out := in[:0]
	for _, m := range in {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
