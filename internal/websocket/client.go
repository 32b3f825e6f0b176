package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"messenger-be/internal/config"
	"messenger-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Transport is the subset of *websocket.Conn a session needs.
type Transport interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

type Options struct {
	SendBufferSize int
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
}

func OptionsFromConfig(cfg config.RealtimeConfig) Options {
	return Options{
		SendBufferSize: cfg.SendBufferSize,
		WriteWait:      cfg.WriteWait,
		PongWait:       cfg.PongWait,
		MaxMessageSize: cfg.MaxMessageSize,
	}
}

func (o Options) withDefaults() Options {
	if o.SendBufferSize <= 0 {
		o.SendBufferSize = 256
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	return o
}

func (o Options) pingPeriod() time.Duration {
	return (o.PongWait * 9) / 10
}

// Client owns the outbound half of a socket. Only writePump writes to conn.
type Client struct {
	id     uuid.UUID
	chatID int64
	userID atomic.Int64 // zero until authenticated

	conn Transport
	opts Options

	send chan []byte
	done chan struct{}

	closeOnce sync.Once
	closeCode int
	closeText string

	writerDone chan struct{}
	logger     logger.ILogger
}

func newClient(conn Transport, chatID int64, opts Options, log logger.ILogger) *Client {
	opts = opts.withDefaults()
	return &Client{
		id:         uuid.New(),
		chatID:     chatID,
		conn:       conn,
		opts:       opts,
		send:       make(chan []byte, opts.SendBufferSize),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
		logger:     log,
	}
}

func (c *Client) ID() uuid.UUID { return c.id }
func (c *Client) ChatID() int64 { return c.chatID }
func (c *Client) UserID() int64 { return c.userID.Load() }

func (c *Client) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		return ErrSendBufferFull
	}
}

// Close asks writePump to flush, send a close frame with code and shut the socket.
// Only the first call has any effect.
func (c *Client) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		c.closeText = reason
		close(c.done)
	})
}

// writePump pumps messages from the send queue to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.pingPeriod())
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.writerDone)
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(message); err != nil {
				c.logger.Warn("Client", "Write failed", map[string]interface{}{
					"chat_id": c.chatID, "user_id": c.UserID(), "conn_id": c.id.String(), "error": err.Error(),
				})
				c.Close(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-c.done:
			c.flush()
			c.writeClose()
			return
		}
	}
}

func (c *Client) write(message []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// flush writes whatever is already queued so replies sent just before a close are not lost.
func (c *Client) flush() {
	for {
		select {
		case message := <-c.send:
			if err := c.write(message); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) writeClose() {
	// 1006 is reserved for local use and must never go on the wire.
	if c.closeCode == websocket.CloseAbnormalClosure || c.closeCode == 0 {
		return
	}
	deadline := time.Now().Add(c.opts.WriteWait)
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(c.closeCode, c.closeText), deadline)
}
