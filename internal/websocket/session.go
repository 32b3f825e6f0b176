package websocket

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"messenger-be/internal/dto"
	"messenger-be/internal/entity"
	"messenger-be/internal/pkg/apperror"
	"messenger-be/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/tidwall/gjson"
)

type State int32

const (
	StateConnecting State = iota
	StateAuthorizing
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthorizing:
		return "authorizing"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*entity.Identity, error)
}

type MembershipGuard interface {
	Authorize(ctx context.Context, chatID, userID int64) error
}

type MessageStore interface {
	SendMessage(ctx context.Context, chatID, senderID int64, text string, clientMsgID *string) (*entity.SendResult, error)
	MarkRead(ctx context.Context, chatID, messageID, readerID int64) (*entity.ReadResult, error)
}

var validate = validator.New()

// Gateway holds what every realtime session shares.
type Gateway struct {
	registry   *Registry
	dispatcher *Dispatcher
	auth       Authenticator
	membership MembershipGuard
	messages   MessageStore
	opts       Options
	logger     logger.ILogger
}

func NewGateway(
	registry *Registry,
	dispatcher *Dispatcher,
	auth Authenticator,
	membership MembershipGuard,
	messages MessageStore,
	opts Options,
	log logger.ILogger,
) *Gateway {
	return &Gateway{
		registry:   registry,
		dispatcher: dispatcher,
		auth:       auth,
		membership: membership,
		messages:   messages,
		opts:       opts.withDefaults(),
		logger:     log,
	}
}

// Serve runs one session to completion. It returns once the socket is closed.
func (g *Gateway) Serve(ctx context.Context, conn Transport, rawChatID, token string) {
	s := g.NewSession(conn, rawChatID, token)
	s.Run(ctx)
}

func (g *Gateway) NewSession(conn Transport, rawChatID, token string) *Session {
	s := &Session{
		gateway:   g,
		conn:      conn,
		rawChatID: rawChatID,
		token:     token,
	}
	s.state.Store(int32(StateConnecting))
	return s
}

// Session is the server side of one realtime connection. Inbound events are
// handled one at a time in arrival order.
type Session struct {
	gateway   *Gateway
	conn      Transport
	rawChatID string
	token     string

	state  atomic.Int32
	client *Client
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

func (s *Session) Run(ctx context.Context) {
	g := s.gateway
	chatID, _ := strconv.ParseInt(s.rawChatID, 10, 64)
	s.client = newClient(s.conn, chatID, g.opts, g.logger)
	go s.client.writePump()

	registered := false
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Session", "Panic in realtime session", map[string]interface{}{
				"panic": fmt.Sprint(r), "chat_id": chatID, "conn_id": s.client.ID().String(),
			})
			s.client.Close(websocket.CloseInternalServerErr, "Internal Server Error")
		}
		s.setState(StateClosing)
		if registered {
			g.registry.Unregister(chatID, s.client)
		}
		s.client.Close(websocket.CloseNormalClosure, "")
		<-s.client.writerDone
		s.setState(StateClosed)
		g.logger.Info("Session", "Session closed", s.details())
	}()

	s.setState(StateAuthorizing)
	if err := s.authorize(ctx, chatID); err != nil {
		code := websocket.ClosePolicyViolation
		if !isPolicyError(err) {
			code = websocket.CloseInternalServerErr
		}
		g.logger.Warn("Session", "Connection refused", map[string]interface{}{
			"chat_id": s.rawChatID, "conn_id": s.client.ID().String(), "error": err.Error(), "close_code": code,
		})
		s.client.Close(code, closeReason(code))
		return
	}

	if !g.registry.Register(chatID, s.client) {
		g.logger.Info("Session", "Connection refused during shutdown", s.details())
		s.client.Close(websocket.CloseGoingAway, closeReason(websocket.CloseGoingAway))
		return
	}
	registered = true
	s.setState(StateOpen)
	g.logger.Info("Session", "Session open", s.details())

	s.readLoop(ctx)
}

func (s *Session) authorize(ctx context.Context, chatID int64) error {
	g := s.gateway
	if chatID <= 0 {
		return apperror.NotFound("Chat not found")
	}

	identity, err := g.auth.Authenticate(ctx, s.token)
	if err != nil {
		return err
	}
	if !identity.HasScopes(entity.ScopeChatsRead, entity.ScopeMessagesWrite) {
		return apperror.Forbidden("Not enough permissions")
	}
	if err := g.membership.Authorize(ctx, chatID, identity.UserId); err != nil {
		return err
	}

	s.client.userID.Store(identity.UserId)
	return nil
}

func (s *Session) readLoop(ctx context.Context) {
	g := s.gateway
	if g.opts.MaxMessageSize > 0 {
		s.conn.SetReadLimit(g.opts.MaxMessageSize)
	}
	s.conn.SetReadDeadline(time.Now().Add(g.opts.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(g.opts.PongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				g.logger.Info("Session", "Connection lost", mergeDetails(s.details(), map[string]interface{}{"error": err.Error()}))
			}
			return
		}

		if err := s.handle(ctx, data); err != nil {
			g.logger.Error("Session", "Transient failure, closing connection", mergeDetails(s.details(), map[string]interface{}{"error": err.Error()}))
			s.client.Close(websocket.CloseInternalServerErr, "Internal Server Error")
			return
		}
	}
}

// handle processes one inbound frame. A returned error is fatal for the session.
func (s *Session) handle(ctx context.Context, data []byte) error {
	if !gjson.ValidBytes(data) {
		s.gateway.logger.Debug("Session", "Ignoring malformed frame", s.details())
		return nil
	}
	frame := gjson.ParseBytes(data)
	if !frame.IsObject() {
		s.gateway.logger.Debug("Session", "Ignoring non-object frame", s.details())
		return nil
	}

	switch frame.Get("type").String() {
	case dto.EventTypeMessage:
		return s.handleMessage(ctx, frame)
	case dto.EventTypeRead:
		return s.handleRead(ctx, frame)
	default:
		s.reply(ErrorPayload("unknown event type"))
		return nil
	}
}

func (s *Session) handleMessage(ctx context.Context, frame gjson.Result) error {
	g := s.gateway
	text := frame.Get("text")
	if text.Exists() && text.Type != gjson.String {
		s.reply(ErrorPayload("text must be a string"))
		return nil
	}

	in := dto.InboundMessage{Text: text.Str}
	if cid := frame.Get("client_msg_id"); cid.Type == gjson.String {
		id := cid.Str
		in.ClientMsgId = &id
	}
	if err := validate.Struct(in); err != nil {
		s.reply(ErrorPayload(inboundValidationMessage(err)))
		return nil
	}

	res, err := g.messages.SendMessage(ctx, s.client.ChatID(), s.client.UserID(), in.Text, in.ClientMsgId)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			s.reply(ErrorPayload(apperror.Public(err)))
			return nil
		}
		return err
	}

	if res.Created {
		g.dispatcher.MessageCreated(res.Message)
		return nil
	}

	// A retry: the original send was already broadcast, so only the sender hears about it.
	payload, err := MessagePayload(res.Message)
	if err != nil {
		return err
	}
	s.reply(payload)
	return nil
}

func (s *Session) handleRead(ctx context.Context, frame gjson.Result) error {
	messageID, ok := parseMessageID(frame.Get("message_id"))
	if !ok {
		s.gateway.logger.Debug("Session", "Ignoring read event without a usable message_id", s.details())
		return nil
	}

	res, err := s.gateway.messages.MarkRead(ctx, s.client.ChatID(), messageID, s.client.UserID())
	if err != nil {
		return err
	}
	if res != nil && res.Transitioned {
		s.gateway.dispatcher.ReadReceipt(s.client.ChatID(), messageID)
	}
	return nil
}

func (s *Session) reply(payload []byte) {
	if err := s.client.Send(payload); err != nil {
		s.gateway.logger.Warn("Session", "Private reply dropped", mergeDetails(s.details(), map[string]interface{}{"error": err.Error()}))
	}
}

func (s *Session) details() map[string]interface{} {
	return map[string]interface{}{
		"chat_id": s.client.ChatID(),
		"user_id": s.client.UserID(),
		"conn_id": s.client.ID().String(),
		"state":   s.State().String(),
	}
}

func mergeDetails(base, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// parseMessageID accepts a JSON integer or a string holding one.
func parseMessageID(v gjson.Result) (int64, bool) {
	var raw string
	switch v.Type {
	case gjson.Number:
		raw = v.Raw
	case gjson.String:
		raw = v.Str
	default:
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func isPolicyError(err error) bool {
	return errors.Is(err, apperror.ErrUnauthorized) ||
		errors.Is(err, apperror.ErrForbidden) ||
		errors.Is(err, apperror.ErrNotFound)
}

func closeReason(code int) string {
	switch code {
	case websocket.ClosePolicyViolation:
		return "policy violation"
	case websocket.CloseGoingAway:
		return "server shutting down"
	}
	return "Internal Server Error"
}

func inboundValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "Text":
			if verrs[0].Tag() == "required" {
				return "text is required"
			}
			return "text is too long"
		case "ClientMsgId":
			return "client_msg_id is too long"
		}
	}
	return "invalid message"
}
