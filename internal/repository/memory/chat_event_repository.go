package memory

import (
	"context"

	"messenger-be/internal/entity"
)

type chatEventRepository struct {
	store *Store
}

func (r *chatEventRepository) Create(ctx context.Context, event *entity.ChatEvent) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventId++
	stored := *event
	stored.Id = s.nextEventId
	stored.Payload = append([]byte(nil), event.Payload...)
	s.events = append(s.events, &stored)
	event.Id = stored.Id
	return nil
}
