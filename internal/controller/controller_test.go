package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"messenger-be/internal/config"
	"messenger-be/internal/entity"
	"messenger-be/internal/pkg/logger"
	"messenger-be/internal/pkg/serverutils"
	"messenger-be/internal/repository/memory"
	"messenger-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-test-secret"

var allScopes = []string{entity.ScopeChatsRead, entity.ScopeChatsWrite, entity.ScopeMessagesRead, entity.ScopeMessagesWrite}

type recordingNotifier struct {
	mu       sync.Mutex
	created  []int64
	receipts []int64
}

func (n *recordingNotifier) MessageCreated(msg *entity.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, msg.Id)
}

func (n *recordingNotifier) ReadReceipt(chatId, messageId int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts = append(n.receipts, messageId)
}

type harness struct {
	app      *fiber.App
	auth     service.IAuthService
	notifier *recordingNotifier
	chatID   int64
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.NewStore()
	store.AddUser(entity.User{Id: 1, Name: "Alice", Email: "alice@example.com"})
	store.AddUser(entity.User{Id: 2, Name: "Bob", Email: "bob@example.com"})
	store.AddUser(entity.User{Id: 3, Name: "Carol", Email: "carol@example.com"})
	chatID := store.AddChat(entity.ChatTypePersonal, nil, 1, 2)

	factory := memory.NewRepositoryFactory(store)
	auth := service.NewAuthService(factory, testSecret)
	membership := service.NewMembershipService(factory, 0)
	messages := service.NewMessageService(factory, membership, nil,
		config.HistoryConfig{DefaultLimit: 100, MaxLimit: 500}, logger.NewNopLogger())
	notifier := &recordingNotifier{}

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	api := app.Group("/api/v1")
	NewHealthController().RegisterRoutes(api)
	NewChatController(membership, auth).RegisterRoutes(api)
	NewMessageController(messages, membership, notifier, auth).RegisterRoutes(api)

	return &harness{app: app, auth: auth, notifier: notifier, chatID: chatID}
}

func (h *harness) token(t *testing.T, userID int64, scopes ...string) string {
	t.Helper()
	if len(scopes) == 0 {
		scopes = allScopes
	}
	tok, err := h.auth.IssueToken(userID, scopes, time.Minute)
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

type messageBody struct {
	Id       int64  `json:"id"`
	ChatId   int64  `json:"chat_id"`
	SenderId int64  `json:"sender_id"`
	Text     string `json:"text"`
	Read     bool   `json:"read"`
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSend_IdempotentRetry(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t, 1)
	path := fmt.Sprintf("/chats/%d/messages", h.chatID)
	body := map[string]interface{}{"text": "hello", "client_msg_id": "c-1"}

	status, first := h.do(t, http.MethodPost, path, tok, body)
	require.Equal(t, http.StatusCreated, status)
	created := decode[messageBody](t, first.Data)
	assert.Equal(t, "hello", created.Text)
	assert.Equal(t, int64(1), created.SenderId)

	status, second := h.do(t, http.MethodPost, path, tok, body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Message already stored", second.Message)
	assert.Equal(t, created.Id, decode[messageBody](t, second.Data).Id)

	assert.Equal(t, []int64{created.Id}, h.notifier.created, "a replay is not broadcast again")
}

func TestSend_Rejections(t *testing.T) {
	h := newHarness(t)
	path := fmt.Sprintf("/chats/%d/messages", h.chatID)

	tests := []struct {
		name    string
		path    string
		token   string
		body    interface{}
		status  int
		message string
	}{
		{name: "no token", path: path, body: map[string]string{"text": "x"}, status: http.StatusUnauthorized, message: "Missing token"},
		{name: "garbage token", path: path, token: "nope", body: map[string]string{"text": "x"}, status: http.StatusUnauthorized},
		{name: "missing scope", path: path, token: h.token(t, 1, entity.ScopeChatsRead), body: map[string]string{"text": "x"}, status: http.StatusForbidden},
		{name: "non-member", path: path, token: h.token(t, 3), body: map[string]string{"text": "x"}, status: http.StatusNotFound, message: "Chat not found or access denied"},
		{name: "unknown chat", path: "/chats/999/messages", token: h.token(t, 1), body: map[string]string{"text": "x"}, status: http.StatusNotFound, message: "Chat not found or access denied"},
		{name: "empty text", path: path, token: h.token(t, 1), body: map[string]string{"text": ""}, status: http.StatusUnprocessableEntity},
		{name: "blank text", path: path, token: h.token(t, 1), body: map[string]string{"text": "   "}, status: http.StatusBadRequest},
		{name: "bad chat id", path: "/chats/abc/messages", token: h.token(t, 1), body: map[string]string{"text": "x"}, status: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := h.do(t, http.MethodPost, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, status)
			assert.False(t, env.Success)
			if tt.message != "" {
				assert.Equal(t, tt.message, env.Message)
			}
		})
	}
	assert.Empty(t, h.notifier.created)
}

func TestHistory(t *testing.T) {
	h := newHarness(t)
	path := fmt.Sprintf("/chats/%d/messages", h.chatID)
	for i := 0; i < 5; i++ {
		status, _ := h.do(t, http.MethodPost, path, h.token(t, 1), map[string]string{"text": fmt.Sprintf("m%d", i)})
		require.Equal(t, http.StatusCreated, status)
	}

	status, env := h.do(t, http.MethodGet, fmt.Sprintf("/history/%d?skip=1&limit=2", h.chatID), h.token(t, 2), nil)
	require.Equal(t, http.StatusOK, status)
	page := decode[[]messageBody](t, env.Data)
	require.Len(t, page, 2)
	assert.Equal(t, "m1", page[0].Text)
	assert.Equal(t, "m2", page[1].Text)

	status, _ = h.do(t, http.MethodGet, fmt.Sprintf("/history/%d?limit=abc", h.chatID), h.token(t, 2), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, env = h.do(t, http.MethodGet, fmt.Sprintf("/history/%d", h.chatID), h.token(t, 3), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Chat not found or access denied", env.Message)
}

func TestMarkRead(t *testing.T) {
	h := newHarness(t)
	status, env := h.do(t, http.MethodPost, fmt.Sprintf("/chats/%d/messages", h.chatID), h.token(t, 1), map[string]string{"text": "read me"})
	require.Equal(t, http.StatusCreated, status)
	msg := decode[messageBody](t, env.Data)

	readPath := fmt.Sprintf("/chats/%d/messages/%d/read", h.chatID, msg.Id)

	status, env = h.do(t, http.MethodPatch, readPath, h.token(t, 2), nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[messageBody](t, env.Data).Read)

	status, _ = h.do(t, http.MethodPatch, readPath, h.token(t, 2), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []int64{msg.Id}, h.notifier.receipts, "only the first read is a transition")

	status, env = h.do(t, http.MethodPatch, fmt.Sprintf("/chats/%d/messages/%d/read", h.chatID, msg.Id+100), h.token(t, 2), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Message not found", env.Message)
}

func TestChats(t *testing.T) {
	h := newHarness(t)
	name := "Team"

	status, env := h.do(t, http.MethodPost, "/chats", h.token(t, 1), map[string]interface{}{
		"name": name, "type": entity.ChatTypeGroup, "participant_ids": []int64{2, 3},
	})
	require.Equal(t, http.StatusCreated, status)

	type chatBody struct {
		Id           int64 `json:"id"`
		Participants []struct {
			Id int64 `json:"id"`
		} `json:"participants"`
	}
	created := decode[chatBody](t, env.Data)
	assert.Len(t, created.Participants, 3, "creator joins the group")

	status, env = h.do(t, http.MethodGet, "/chats", h.token(t, 3), nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]chatBody](t, env.Data)
	require.Len(t, list, 1)
	assert.Equal(t, created.Id, list[0].Id)

	status, _ = h.do(t, http.MethodGet, fmt.Sprintf("/chats/%d", h.chatID), h.token(t, 3), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = h.do(t, http.MethodPost, "/chats", h.token(t, 1), map[string]interface{}{
		"type": entity.ChatTypeGroup, "participant_ids": []int64{2},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Group chat must have at least 2 participants", env.Message)
}
