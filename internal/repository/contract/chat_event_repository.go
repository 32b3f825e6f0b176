package contract

import (
	"context"

	"messenger-be/internal/entity"
)

type ChatEventRepository interface {
	Create(ctx context.Context, event *entity.ChatEvent) error
}
