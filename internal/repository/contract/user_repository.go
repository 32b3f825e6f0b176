package contract

import (
	"context"

	"messenger-be/internal/entity"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*entity.User, error)
}
