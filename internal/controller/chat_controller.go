package controller

import (
	"messenger-be/internal/dto"
	"messenger-be/internal/entity"
	"messenger-be/internal/pkg/serverutils"
	"messenger-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IMembershipService
	auth    serverutils.Authenticator
}

func NewChatController(service service.IMembershipService, auth serverutils.Authenticator) IChatController {
	return &chatController{service: service, auth: auth}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	// Per-route middleware: a group-level Use would also run on /chats/:chat_id/messages.
	jwt := serverutils.JwtMiddleware(c.auth)
	h := r.Group("/chats")
	h.Post("", jwt, serverutils.RequireScopes(entity.ScopeChatsWrite), c.Create)
	h.Get("", jwt, serverutils.RequireScopes(entity.ScopeChatsRead), c.GetAll)
	h.Get("/:chat_id", jwt, serverutils.RequireScopes(entity.ScopeChatsRead), c.Show)
}

func (c *chatController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateChat(ctx.UserContext(), currentUserId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create chat", res))
}

func (c *chatController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.ListChats(ctx.UserContext(), currentUserId(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all chats", res))
}

func (c *chatController) Show(ctx *fiber.Ctx) error {
	chatId, err := paramInt64(ctx, "chat_id")
	if err != nil {
		return err
	}

	res, err := c.service.GetChat(ctx.UserContext(), chatId, currentUserId(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show chat", res))
}
