package contract

import (
	"context"
	"errors"

	"messenger-be/internal/entity"
	"messenger-be/internal/repository/specification"
)

// ErrDuplicateClientMessage is returned by Create when (chat, client_msg_id) already exists.
var ErrDuplicateClientMessage = errors.New("duplicate client message id")

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// MarkRead flips read to true only if it is currently false and reports whether it did.
	MarkRead(ctx context.Context, id int64) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
