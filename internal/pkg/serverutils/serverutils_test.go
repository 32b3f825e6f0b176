package serverutils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"messenger-be/internal/entity"
	"messenger-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "fiber error", err: fiber.NewError(fiber.StatusUnprocessableEntity, "bad"), want: 422},
		{name: "unauthorized", err: apperror.Unauthorized("no"), want: 401},
		{name: "forbidden", err: apperror.Forbidden("no"), want: 403},
		{name: "not found", err: apperror.NotFound("gone"), want: 404},
		{name: "validation", err: apperror.Validation("bad"), want: 400},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", apperror.NotFound("gone")), want: 404},
		{name: "unknown", err: errors.New("boom"), want: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func call(t *testing.T, app *fiber.App, req *http.Request) (int, Response[json.RawMessage]) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body Response[json.RawMessage]
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func TestErrorHandler_HidesInternalDetail(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/boom", func(ctx *fiber.Ctx) error { return errors.New("pq: connection reset") })
	app.Get("/missing", func(ctx *fiber.Ctx) error { return apperror.NotFound("Chat not found") })

	status, body := call(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, 500, status)
	assert.Equal(t, "Internal Server Error", body.Message)
	assert.False(t, body.Success)

	status, body = call(t, app, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, 404, status)
	assert.Equal(t, "Chat not found", body.Message)
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Text string `validate:"required"`
		Age  int    `validate:"min=1"`
	}

	assert.NoError(t, ValidateRequest(req{Text: "x", Age: 1}))

	err := ValidateRequest(req{})
	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusUnprocessableEntity, fiberErr.Code)
	assert.Contains(t, fiberErr.Message, "Text failed on required")
	assert.Contains(t, fiberErr.Message, "Age failed on min=1")
}

type stubAuth struct{}

func (stubAuth) Authenticate(ctx context.Context, rawToken string) (*entity.Identity, error) {
	if rawToken != "good" {
		return nil, apperror.Unauthorized("Could not validate credentials")
	}
	return &entity.Identity{UserId: 7, Scopes: []string{entity.ScopeChatsRead}}, nil
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/read", JwtMiddleware(stubAuth{}), RequireScopes(entity.ScopeChatsRead), func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("ok", ctx.Locals("user_id").(int64)))
	})
	app.Get("/write", JwtMiddleware(stubAuth{}), RequireScopes(entity.ScopeChatsWrite), func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{name: "missing header", path: "/read", status: 401},
		{name: "wrong scheme", path: "/read", header: "Basic good", status: 401},
		{name: "bad token", path: "/read", header: "Bearer bad", status: 401},
		{name: "ok", path: "/read", header: "Bearer good", status: 200},
		{name: "lowercase scheme", path: "/read", header: "bearer good", status: 200},
		{name: "missing scope", path: "/write", header: "Bearer good", status: 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			status, body := call(t, app, req)
			assert.Equal(t, tt.status, status)
			if tt.status == 200 {
				assert.JSONEq(t, "7", string(body.Data))
			}
		})
	}
}
