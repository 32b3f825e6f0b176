package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"messenger-be/internal/dto"
	"messenger-be/internal/entity"
	"messenger-be/internal/pkg/apperror"
	"messenger-be/internal/repository/unitofwork"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
)

type IMembershipService interface {
	IsMember(ctx context.Context, chatId, userId int64) (bool, error)
	FetchChat(ctx context.Context, chatId int64) (*entity.Chat, error)
	// Authorize returns NotFound when the chat does not exist and Forbidden when
	// the user is not one of its participants.
	Authorize(ctx context.Context, chatId, userId int64) error

	CreateChat(ctx context.Context, creatorId int64, req *dto.CreateChatRequest) (*dto.ChatResponse, error)
	ListChats(ctx context.Context, userId int64) ([]*dto.ChatResponse, error)
	GetChat(ctx context.Context, chatId, userId int64) (*dto.ChatResponse, error)
}

type membershipService struct {
	uowFactory unitofwork.RepositoryFactory
	members    *cache.Cache
}

// NewMembershipService caches positive membership answers for ttl. A zero ttl disables the cache.
func NewMembershipService(uowFactory unitofwork.RepositoryFactory, ttl time.Duration) IMembershipService {
	var c *cache.Cache
	if ttl > 0 {
		c = cache.New(ttl, 2*ttl)
	}
	return &membershipService{
		uowFactory: uowFactory,
		members:    c,
	}
}

func membershipKey(chatId, userId int64) string {
	return fmt.Sprintf("%d:%d", chatId, userId)
}

func (s *membershipService) IsMember(ctx context.Context, chatId, userId int64) (bool, error) {
	key := membershipKey(chatId, userId)
	if s.members != nil {
		if _, found := s.members.Get(key); found {
			return true, nil
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	ok, err := uow.ChatRepository().IsMember(ctx, chatId, userId)
	if err != nil {
		return false, err
	}

	// Only positive answers are cached so a newly added member is never refused.
	if ok && s.members != nil {
		s.members.SetDefault(key, struct{}{})
	}
	return ok, nil
}

func (s *membershipService) FetchChat(ctx context.Context, chatId int64) (*entity.Chat, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := uow.ChatRepository().FindByID(ctx, chatId)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperror.NotFound("Chat not found")
	}
	return chat, nil
}

func (s *membershipService) Authorize(ctx context.Context, chatId, userId int64) error {
	ok, err := s.IsMember(ctx, chatId, userId)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	if _, err := s.FetchChat(ctx, chatId); err != nil {
		return err
	}
	return apperror.Forbidden("Not a member of this chat")
}

func (s *membershipService) CreateChat(ctx context.Context, creatorId int64, req *dto.CreateChatRequest) (*dto.ChatResponse, error) {
	if req.Type == entity.ChatTypeGroup {
		if len(req.ParticipantIds) < 2 {
			return nil, apperror.Validation("Group chat must have at least 2 participants")
		}
		if req.Name == nil || *req.Name == "" {
			return nil, apperror.Validation("Group chat must have a name")
		}
	}

	requested := uniqueIds(req.ParticipantIds)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	users, err := uow.UserRepository().FindByIDs(ctx, requested)
	if err != nil {
		return nil, err
	}
	if len(users) != len(requested) {
		return nil, apperror.NotFound(fmt.Sprintf("Users not found: %s", formatIds(missingIds(requested, users))))
	}

	if req.Type == entity.ChatTypePersonal && len(users) != 2 {
		return nil, apperror.Validation("Personal chat must have exactly 2 participants")
	}

	participants := make([]entity.User, 0, len(users)+1)
	creatorIncluded := false
	for _, u := range users {
		participants = append(participants, *u)
		if u.Id == creatorId {
			creatorIncluded = true
		}
	}
	if !creatorIncluded {
		if req.Type == entity.ChatTypePersonal {
			return nil, apperror.Validation("Personal chat must have creator in participants")
		}
		creator, err := uow.UserRepository().FindByID(ctx, creatorId)
		if err != nil {
			return nil, err
		}
		if creator == nil {
			return nil, apperror.NotFound("User not found")
		}
		participants = append(participants, *creator)
	}

	chat := &entity.Chat{
		Name:         req.Name,
		Type:         req.Type,
		Participants: participants,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatRepository().Create(ctx, chat); err != nil {
		return nil, err
	}
	if chat.Type == entity.ChatTypeGroup {
		if err := uow.ChatRepository().CreateGroup(ctx, chat.Id, *chat.Name, creatorId, chat.ParticipantIds()); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return toChatResponse(chat), nil
}

func (s *membershipService) ListChats(ctx context.Context, userId int64) ([]*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chats, err := uow.ChatRepository().FindAllByParticipant(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChatResponse, 0, len(chats))
	for _, c := range chats {
		res = append(res, toChatResponse(c))
	}
	return res, nil
}

func (s *membershipService) GetChat(ctx context.Context, chatId, userId int64) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := uow.ChatRepository().FindByID(ctx, chatId)
	if err != nil {
		return nil, err
	}
	// Non-members get the same answer as a missing chat.
	if chat == nil || !chat.HasParticipant(userId) {
		return nil, apperror.NotFound("Chat not found or access denied")
	}
	return toChatResponse(chat), nil
}

func toChatResponse(c *entity.Chat) *dto.ChatResponse {
	return &dto.ChatResponse{
		Id:   c.Id,
		Name: c.Name,
		Type: c.Type,
		Participants: lo.Map(c.Participants, func(p entity.User, _ int) dto.ChatParticipant {
			return dto.ChatParticipant{Id: p.Id, Name: p.Name, Email: p.Email}
		}),
	}
}

func uniqueIds(ids []int64) []int64 {
	return lo.Uniq(ids)
}

// missingIds lists requested ids with no matching user, ascending.
func missingIds(requested []int64, found []*entity.User) []int64 {
	have := lo.Map(found, func(u *entity.User, _ int) int64 { return u.Id })
	missing := lo.Without(lo.Uniq(requested), have...)
	slices.Sort(missing)
	return missing
}

func formatIds(ids []int64) string {
	parts := lo.Map(ids, func(id int64, _ int) string { return strconv.FormatInt(id, 10) })
	return "{" + strings.Join(parts, ", ") + "}"
}
