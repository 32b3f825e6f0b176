package memory

import (
	"context"

	"messenger-be/internal/entity"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []int64) ([]*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.store.users[id]; ok {
			user := u
			result = append(result, &user)
		}
	}
	return result, nil
}
