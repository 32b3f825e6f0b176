package controller

import (
	"errors"

	"messenger-be/internal/dto"
	"messenger-be/internal/entity"
	"messenger-be/internal/pkg/apperror"
	"messenger-be/internal/pkg/serverutils"
	"messenger-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Notifier fans committed outcomes out to live connections.
type Notifier interface {
	MessageCreated(msg *entity.Message)
	ReadReceipt(chatId, messageId int64)
}

type IMessageController interface {
	RegisterRoutes(r fiber.Router)
	History(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
	MarkRead(ctx *fiber.Ctx) error
}

type messageController struct {
	messages   service.IMessageService
	membership service.IMembershipService
	notifier   Notifier
	auth       serverutils.Authenticator
}

func NewMessageController(
	messages service.IMessageService,
	membership service.IMembershipService,
	notifier Notifier,
	auth serverutils.Authenticator,
) IMessageController {
	return &messageController{
		messages:   messages,
		membership: membership,
		notifier:   notifier,
		auth:       auth,
	}
}

func (c *messageController) RegisterRoutes(r fiber.Router) {
	jwt := serverutils.JwtMiddleware(c.auth)

	r.Get("/history/:chat_id", jwt, serverutils.RequireScopes(entity.ScopeMessagesRead), c.History)

	write := serverutils.RequireScopes(entity.ScopeMessagesWrite)
	r.Post("/chats/:chat_id/messages", jwt, write, c.Send)
	r.Patch("/chats/:chat_id/messages/:message_id/read", jwt, write, c.MarkRead)
}

func (c *messageController) History(ctx *fiber.Ctx) error {
	chatId, err := paramInt64(ctx, "chat_id")
	if err != nil {
		return err
	}

	var query dto.HistoryQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "skip and limit must be integers")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	msgs, err := c.messages.GetHistory(ctx.UserContext(), chatId, currentUserId(ctx), query.Skip, query.Limit)
	if err != nil {
		return err
	}

	res := make([]dto.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		res = append(res, toMessageResponse(m))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

// Send is the HTTP twin of the realtime message event. A replayed client id
// answers 200 with the stored message and is not broadcast again.
func (c *messageController) Send(ctx *fiber.Ctx) error {
	chatId, err := paramInt64(ctx, "chat_id")
	if err != nil {
		return err
	}
	userId := currentUserId(ctx)

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.membership.Authorize(ctx.UserContext(), chatId, userId); err != nil {
		return hideChat(err)
	}

	res, err := c.messages.SendMessage(ctx.UserContext(), chatId, userId, req.Text, req.ClientMsgId)
	if err != nil {
		return err
	}

	if !res.Created {
		return ctx.JSON(serverutils.SuccessResponse("Message already stored", toMessageResponse(res.Message)))
	}

	c.notifier.MessageCreated(res.Message)
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success send message", toMessageResponse(res.Message)))
}

func (c *messageController) MarkRead(ctx *fiber.Ctx) error {
	chatId, err := paramInt64(ctx, "chat_id")
	if err != nil {
		return err
	}
	messageId, err := paramInt64(ctx, "message_id")
	if err != nil {
		return err
	}
	userId := currentUserId(ctx)

	if err := c.membership.Authorize(ctx.UserContext(), chatId, userId); err != nil {
		return hideChat(err)
	}

	res, err := c.messages.MarkRead(ctx.UserContext(), chatId, messageId, userId)
	if err != nil {
		return err
	}
	if res == nil {
		return apperror.NotFound("Message not found")
	}

	if res.Transitioned {
		c.notifier.ReadReceipt(chatId, messageId)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success mark read", toMessageResponse(res.Message)))
}

// hideChat answers non-members exactly like a missing chat.
func hideChat(err error) error {
	if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrForbidden) {
		return apperror.NotFound("Chat not found or access denied")
	}
	return err
}

func toMessageResponse(m *entity.Message) dto.MessageResponse {
	return dto.MessageResponse{
		Id:        m.Id,
		ChatId:    m.ChatId,
		SenderId:  m.SenderId,
		Text:      m.Text,
		Timestamp: m.Timestamp,
		Read:      m.Read,
	}
}
