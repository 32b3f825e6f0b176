package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"messenger-be/internal/config"
	"messenger-be/internal/entity"
	"messenger-be/internal/pkg/apperror"
	"messenger-be/internal/pkg/logger"
	"messenger-be/internal/repository/contract"
	"messenger-be/internal/repository/specification"
	"messenger-be/internal/repository/unitofwork"
	"messenger-be/pkg/events"
)

const maxClientMsgIdLength = 36

type IMessageService interface {
	// SendMessage persists a message. A retry carrying a client id already stored
	// for the chat returns the stored message with Created=false.
	SendMessage(ctx context.Context, chatId, senderId int64, text string, clientMsgId *string) (*entity.SendResult, error)
	// MarkRead returns nil when the message does not exist in chatId.
	MarkRead(ctx context.Context, chatId, messageId, readerId int64) (*entity.ReadResult, error)
	GetHistory(ctx context.Context, chatId, userId int64, skip, limit int) ([]*entity.Message, error)
}

type messageService struct {
	uowFactory unitofwork.RepositoryFactory
	membership IMembershipService
	publisher  IEventPublisherService
	history    config.HistoryConfig
	logger     logger.ILogger
}

// NewMessageService wires the store adapter. publisher may be nil.
func NewMessageService(
	uowFactory unitofwork.RepositoryFactory,
	membership IMembershipService,
	publisher IEventPublisherService,
	history config.HistoryConfig,
	log logger.ILogger,
) IMessageService {
	return &messageService{
		uowFactory: uowFactory,
		membership: membership,
		publisher:  publisher,
		history:    history,
		logger:     log,
	}
}

func (s *messageService) SendMessage(ctx context.Context, chatId, senderId int64, text string, clientMsgId *string) (*entity.SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.Validation("Message text must not be empty")
	}
	if clientMsgId != nil && *clientMsgId == "" {
		clientMsgId = nil
	}
	if clientMsgId != nil && len(*clientMsgId) > maxClientMsgIdLength {
		return nil, apperror.Validation(fmt.Sprintf("client_msg_id must be at most %d characters", maxClientMsgIdLength))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.MessageRepository()

	msg := &entity.Message{
		ChatId:      chatId,
		SenderId:    senderId,
		Text:        text,
		ClientMsgId: clientMsgId,
	}

	err := repo.Create(ctx, msg)
	if errors.Is(err, contract.ErrDuplicateClientMessage) && clientMsgId != nil {
		existing, findErr := repo.FindOne(ctx,
			specification.ByChatID{ChatID: chatId},
			specification.ByClientMsgID{ClientMsgID: *clientMsgId},
		)
		if findErr != nil {
			return nil, findErr
		}
		if existing == nil {
			return nil, fmt.Errorf("duplicate client message %q in chat %d vanished", *clientMsgId, chatId)
		}

		s.logger.Info("MessageService", "Client retry replayed", map[string]interface{}{
			"chat_id": chatId, "user_id": senderId, "message_id": existing.Id, "client_msg_id": *clientMsgId,
		})
		return &entity.SendResult{Message: existing, Created: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store message in chat %d: %w", chatId, err)
	}

	s.publish(ctx, events.MessageCreated(msg.ChatId, msg.Id, msg.SenderId, msg.Timestamp))
	return &entity.SendResult{Message: msg, Created: true}, nil
}

func (s *messageService) MarkRead(ctx context.Context, chatId, messageId, readerId int64) (*entity.ReadResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.MessageRepository()

	msg, err := repo.FindOne(ctx, specification.ByID{ID: messageId}, specification.ByChatID{ChatID: chatId})
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}

	transitioned, err := repo.MarkRead(ctx, msg.Id)
	if err != nil {
		return nil, err
	}
	msg.Read = true

	if transitioned {
		s.publish(ctx, events.MessageRead(chatId, msg.Id, readerId, time.Now().UTC()))
	}
	return &entity.ReadResult{Message: msg, Transitioned: transitioned}, nil
}

func (s *messageService) GetHistory(ctx context.Context, chatId, userId int64, skip, limit int) ([]*entity.Message, error) {
	if err := s.membership.Authorize(ctx, chatId, userId); err != nil {
		if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrForbidden) {
			return nil, apperror.NotFound("Chat not found or access denied")
		}
		return nil, err
	}

	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = s.history.DefaultLimit
	}
	if s.history.MaxLimit > 0 && limit > s.history.MaxLimit {
		limit = s.history.MaxLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.MessageRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chatId},
		specification.Chronological{},
		specification.Pagination{Limit: limit, Offset: skip},
	)
}

// publish runs after the write is committed; a failure here never undoes the write.
func (s *messageService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("MessageService", "Failed to publish domain event", map[string]interface{}{
			"error": err.Error(), "type": event.EventType(),
		})
	}
}
