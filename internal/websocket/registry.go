package websocket

import (
	"errors"
	"sync"

	"messenger-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

var (
	ErrSendBufferFull   = errors.New("send buffer full")
	ErrConnectionClosed = errors.New("connection closed")
)

// Connection is a live peer bound to one chat and one user for its lifetime.
type Connection interface {
	ID() uuid.UUID
	ChatID() int64
	UserID() int64
	// Send enqueues payload without blocking.
	Send(payload []byte) error
	Close(code int, reason string)
}

const shardCount = 64

type shard struct {
	mu     sync.Mutex
	chats  map[int64][]Connection
	closed bool
}

// Registry maps chats to their live connections. Chats are spread over
// independently locked shards so a busy chat never holds up unrelated ones.
type Registry struct {
	shards [shardCount]*shard
	logger logger.ILogger
}

func NewRegistry(log logger.ILogger) *Registry {
	r := &Registry{logger: log}
	for i := range r.shards {
		r.shards[i] = &shard{chats: make(map[int64][]Connection)}
	}
	return r
}

func (r *Registry) shardFor(chatID int64) *shard {
	return r.shards[uint64(chatID)%shardCount]
}

// Register adds conn to chatID. It returns false once the registry has been
// closed; the caller owns conn and must close it.
func (r *Registry) Register(chatID int64, conn Connection) bool {
	s := r.shardFor(chatID)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.chats[chatID] = append(s.chats[chatID], conn)
	n := len(s.chats[chatID])
	s.mu.Unlock()

	r.logger.Info("Registry", "Connection registered", map[string]interface{}{
		"chat_id": chatID, "user_id": conn.UserID(), "conn_id": conn.ID().String(), "chat_connections": n,
	})
	return true
}

// Unregister removes conn and prunes the chat entry once it is empty.
// It reports whether conn was present.
func (r *Registry) Unregister(chatID int64, conn Connection) bool {
	s := r.shardFor(chatID)
	s.mu.Lock()
	conns := s.chats[chatID]
	idx := -1
	for i, c := range conns {
		if c == conn {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	// Copy so snapshots handed out by Broadcast stay intact.
	remaining := make([]Connection, 0, len(conns)-1)
	remaining = append(remaining, conns[:idx]...)
	remaining = append(remaining, conns[idx+1:]...)
	if len(remaining) == 0 {
		delete(s.chats, chatID)
	} else {
		s.chats[chatID] = remaining
	}
	s.mu.Unlock()

	r.logger.Info("Registry", "Connection unregistered", map[string]interface{}{
		"chat_id": chatID, "user_id": conn.UserID(), "conn_id": conn.ID().String(), "chat_connections": len(remaining),
	})
	return true
}

// Broadcast enqueues payload on every connection registered to chatID when the
// call starts and returns how many accepted it. A connection that cannot accept
// is unregistered and closed; delivery to the others continues.
func (r *Registry) Broadcast(chatID int64, payload []byte) int {
	s := r.shardFor(chatID)
	s.mu.Lock()
	snapshot := s.chats[chatID]
	s.mu.Unlock()

	delivered := 0
	for _, conn := range snapshot {
		err := conn.Send(payload)
		if err == nil {
			delivered++
			continue
		}

		r.logger.Warn("Registry", "Dropping connection after failed send", map[string]interface{}{
			"chat_id": chatID, "user_id": conn.UserID(), "conn_id": conn.ID().String(), "error": err.Error(),
		})
		r.Unregister(chatID, conn)
		if errors.Is(err, ErrSendBufferFull) {
			conn.Close(websocket.CloseTryAgainLater, "send buffer full")
		}
	}
	return delivered
}

// Count returns the number of connections registered to chatID.
func (r *Registry) Count(chatID int64) int {
	s := r.shardFor(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats[chatID])
}

// ChatCount returns the number of chats with at least one connection.
func (r *Registry) ChatCount() int {
	total := 0
	for _, s := range r.shards {
		s.mu.Lock()
		total += len(s.chats)
		s.mu.Unlock()
	}
	return total
}

// Close empties the registry and closes every connection with Going Away.
// Later Register calls are refused.
func (r *Registry) Close() {
	var drained []Connection
	for _, s := range r.shards {
		s.mu.Lock()
		s.closed = true
		for chatID, conns := range s.chats {
			drained = append(drained, conns...)
			delete(s.chats, chatID)
		}
		s.mu.Unlock()
	}

	for _, conn := range drained {
		conn.Close(websocket.CloseGoingAway, "server shutting down")
	}
	r.logger.Info("Registry", "Registry drained", map[string]interface{}{"connections": len(drained)})
}
