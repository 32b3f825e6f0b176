package integration

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"

	"messenger-be/internal/config"
	"messenger-be/internal/dto"
	"messenger-be/internal/entity"
	"messenger-be/internal/model"
	"messenger-be/internal/pkg/logger"
	"messenger-be/internal/repository/unitofwork"
	"messenger-be/internal/service"
	"messenger-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err, "Failed to connect to DB")

	require.NoError(t, gormDB.SetupJoinTable(&model.Chat{}, "Participants", &model.ChatMember{}))
	require.NoError(t, gormDB.AutoMigrate(&model.User{}, &model.Chat{}, &model.ChatMember{}, &model.Message{}, &model.ChatEvent{}))
	return gormDB
}

func seedUsers(t *testing.T, db *gorm.DB, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		u := model.User{Name: "it-user", Email: uuid.NewString() + "@it.local", HashedPassword: "x"}
		require.NoError(t, db.Create(&u).Error)
		ids = append(ids, u.Id)
	}
	return ids
}

func TestGormMessagingFlow(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	uowFactory := unitofwork.NewRepositoryFactory(db)
	membership := service.NewMembershipService(uowFactory, 0)
	messages := service.NewMessageService(uowFactory, membership, nil,
		config.HistoryConfig{DefaultLimit: 100, MaxLimit: 500}, logger.NewNopLogger())

	users := seedUsers(t, db, 3)
	chat, err := membership.CreateChat(ctx, users[0], &dto.CreateChatRequest{
		Type:           entity.ChatTypePersonal,
		ParticipantIds: []int64{users[0], users[1]},
	})
	require.NoError(t, err)

	t.Run("membership", func(t *testing.T) {
		ok, err := membership.IsMember(ctx, chat.Id, users[1])
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = membership.IsMember(ctx, chat.Id, users[2])
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("idempotent send relies on the unique constraint", func(t *testing.T) {
		clientID := uuid.NewString()

		first, err := messages.SendMessage(ctx, chat.Id, users[0], "hello", &clientID)
		require.NoError(t, err)
		assert.True(t, first.Created)

		retry, err := messages.SendMessage(ctx, chat.Id, users[0], "hello again", &clientID)
		require.NoError(t, err)
		assert.False(t, retry.Created)
		assert.Equal(t, first.Message.Id, retry.Message.Id)
		assert.Equal(t, "hello", retry.Message.Text)
	})

	t.Run("concurrent retries store one row", func(t *testing.T) {
		clientID := uuid.NewString()
		var wg sync.WaitGroup
		ids := make([]int64, 8)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := messages.SendMessage(ctx, chat.Id, users[0], "race", &clientID)
				if assert.NoError(t, err) {
					ids[i] = res.Message.Id
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
		var count int64
		require.NoError(t, db.Model(&model.Message{}).Where("chat_id = ? AND client_msg_id = ?", chat.Id, clientID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("mark read transitions once", func(t *testing.T) {
		sent, err := messages.SendMessage(ctx, chat.Id, users[0], "read me", nil)
		require.NoError(t, err)

		first, err := messages.MarkRead(ctx, chat.Id, sent.Message.Id, users[1])
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.True(t, first.Transitioned)
		assert.True(t, first.Message.Read)

		second, err := messages.MarkRead(ctx, chat.Id, sent.Message.Id, users[1])
		require.NoError(t, err)
		require.NotNil(t, second)
		assert.False(t, second.Transitioned)
	})

	t.Run("history is chronological", func(t *testing.T) {
		history, err := messages.GetHistory(ctx, chat.Id, users[1], 0, 0)
		require.NoError(t, err)
		require.NotEmpty(t, history)
		for i := 1; i < len(history); i++ {
			prev, cur := history[i-1], history[i]
			assert.False(t, cur.Timestamp.Before(prev.Timestamp))
			if cur.Timestamp.Equal(prev.Timestamp) {
				assert.Greater(t, cur.Id, prev.Id)
			}
		}

		_, err = messages.GetHistory(ctx, chat.Id, users[2], 0, 0)
		assert.Error(t, err)
	})
}
