package service

import (
	"context"
	"testing"
	"time"

	"messenger-be/internal/dto"
	"messenger-be/internal/entity"
	"messenger-be/internal/pkg/apperror"
	"messenger-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chatId := f.store.AddChat(entity.ChatTypePersonal, nil, 1, 2)

	assert.NoError(t, f.membership.Authorize(ctx, chatId, 1))
	assert.ErrorIs(t, f.membership.Authorize(ctx, chatId, 3), apperror.ErrForbidden)
	assert.ErrorIs(t, f.membership.Authorize(ctx, chatId+100, 1), apperror.ErrNotFound)
}

func TestIsMember_NegativeAnswersAreNotCached(t *testing.T) {
	store := memory.NewStore()
	store.AddUser(entity.User{Id: 1})
	store.AddUser(entity.User{Id: 2})
	store.AddUser(entity.User{Id: 3})
	chatId := store.AddChat(entity.ChatTypeGroup, strPtr("g"), 1, 2)

	svc := NewMembershipService(memory.NewRepositoryFactory(store), time.Minute)
	ctx := context.Background()

	ok, err := svc.IsMember(ctx, chatId, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	store.AddMember(chatId, 3)

	ok, err = svc.IsMember(ctx, chatId, 3)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateChat(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.CreateChatRequest
		wantErr error
		wantMsg string
		members []int64
	}{
		{
			name:    "personal with creator",
			req:     dto.CreateChatRequest{Type: entity.ChatTypePersonal, ParticipantIds: []int64{1, 2}},
			members: []int64{1, 2},
		},
		{
			name:    "personal with a single participant",
			req:     dto.CreateChatRequest{Type: entity.ChatTypePersonal, ParticipantIds: []int64{1}},
			wantErr: apperror.ErrValidation,
			wantMsg: "Personal chat must have exactly 2 participants",
		},
		{
			name:    "personal without creator",
			req:     dto.CreateChatRequest{Type: entity.ChatTypePersonal, ParticipantIds: []int64{2, 3}},
			wantErr: apperror.ErrValidation,
			wantMsg: "Personal chat must have creator in participants",
		},
		{
			name:    "personal with three participants",
			req:     dto.CreateChatRequest{Type: entity.ChatTypePersonal, ParticipantIds: []int64{1, 2, 3}},
			wantErr: apperror.ErrValidation,
		},
		{
			name:    "group adds creator",
			req:     dto.CreateChatRequest{Type: entity.ChatTypeGroup, Name: strPtr("team"), ParticipantIds: []int64{2, 3}},
			members: []int64{2, 3, 1},
		},
		{
			name:    "group without name",
			req:     dto.CreateChatRequest{Type: entity.ChatTypeGroup, ParticipantIds: []int64{2, 3}},
			wantErr: apperror.ErrValidation,
			wantMsg: "Group chat must have a name",
		},
		{
			name:    "group with one participant",
			req:     dto.CreateChatRequest{Type: entity.ChatTypeGroup, Name: strPtr("solo"), ParticipantIds: []int64{2}},
			wantErr: apperror.ErrValidation,
		},
		{
			name:    "unknown participants",
			req:     dto.CreateChatRequest{Type: entity.ChatTypeGroup, Name: strPtr("x"), ParticipantIds: []int64{2, 98, 99}},
			wantErr: apperror.ErrNotFound,
			wantMsg: "Users not found: {98, 99}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			res, err := f.membership.CreateChat(context.Background(), 1, &tt.req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, apperror.Public(err))
				}
				return
			}

			require.NoError(t, err)
			ids := make([]int64, 0, len(res.Participants))
			for _, p := range res.Participants {
				ids = append(ids, p.Id)
			}
			assert.Equal(t, tt.members, ids)

			for _, id := range tt.members {
				ok, err := f.membership.IsMember(context.Background(), res.Id, id)
				require.NoError(t, err)
				assert.True(t, ok)
			}
		})
	}
}

func TestGetChat_HidesChatFromNonMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chatId := f.store.AddChat(entity.ChatTypePersonal, nil, 1, 2)

	res, err := f.membership.GetChat(ctx, chatId, 2)
	require.NoError(t, err)
	assert.Equal(t, chatId, res.Id)
	assert.Len(t, res.Participants, 2)

	_, err = f.membership.GetChat(ctx, chatId, 3)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListChats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.store.AddChat(entity.ChatTypePersonal, nil, 1, 2)
	f.store.AddChat(entity.ChatTypePersonal, nil, 2, 3)
	third := f.store.AddChat(entity.ChatTypeGroup, strPtr("all"), 1, 2, 3)

	chats, err := f.membership.ListChats(ctx, 1)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, first, chats[0].Id)
	assert.Equal(t, third, chats[1].Id)
}

func TestMissingIds(t *testing.T) {
	found := []*entity.User{{Id: 2}, {Id: 5}}

	assert.Equal(t, []int64{1, 9}, missingIds([]int64{9, 2, 1, 5, 9}, found))
	assert.Empty(t, missingIds([]int64{2, 5}, found))
	assert.Equal(t, "{1, 9}", formatIds([]int64{1, 9}))
	assert.Equal(t, []int64{3, 1, 2}, uniqueIds([]int64{3, 1, 3, 2, 1}))
}
