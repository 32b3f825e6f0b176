package serverutils

import (
	"context"
	"strings"

	"messenger-be/internal/entity"
	"messenger-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*entity.Identity, error)
}

// JwtMiddleware resolves the bearer token and stores the identity and user_id in Locals.
func JwtMiddleware(auth Authenticator) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
			return apperror.Unauthorized("Missing token")
		}

		identity, err := auth.Authenticate(ctx.UserContext(), authHeader[7:])
		if err != nil {
			return err
		}

		ctx.Locals(identityKey, identity)
		ctx.Locals("user_id", identity.UserId)
		return ctx.Next()
	}
}

// RequireScopes rejects requests whose identity lacks any of scopes.
func RequireScopes(scopes ...string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity := Identity(ctx)
		if identity == nil {
			return apperror.Unauthorized("Not authenticated")
		}
		if !identity.HasScopes(scopes...) {
			return apperror.Forbidden("Not enough permissions")
		}
		return ctx.Next()
	}
}

func Identity(ctx *fiber.Ctx) *entity.Identity {
	identity, _ := ctx.Locals(identityKey).(*entity.Identity)
	return identity
}
