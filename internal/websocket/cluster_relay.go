package websocket

import (
	"context"
	"encoding/json"

	"messenger-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const FanoutChannel = "chat_fanout"

type relayEnvelope struct {
	Origin  string          `json:"origin"`
	ChatID  int64           `json:"chat_id"`
	Payload json.RawMessage `json:"payload"`
}

// ClusterRelay shares chat broadcasts between instances over Redis pub/sub.
// Each instance re-broadcasts envelopes from other origins to its own registry.
type ClusterRelay struct {
	rdb      *redis.Client
	origin   string
	registry *Registry
	logger   logger.ILogger
}

func NewClusterRelay(rdb *redis.Client, origin string, registry *Registry, log logger.ILogger) *ClusterRelay {
	return &ClusterRelay{rdb: rdb, origin: origin, registry: registry, logger: log}
}

func (r *ClusterRelay) Publish(ctx context.Context, chatID int64, payload []byte) error {
	data, err := json.Marshal(relayEnvelope{Origin: r.origin, ChatID: chatID, Payload: payload})
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, FanoutChannel, data).Err()
}

// Run consumes the fanout channel until ctx is cancelled.
func (r *ClusterRelay) Run(ctx context.Context) {
	pubsub := r.rdb.Subscribe(ctx, FanoutChannel)
	defer pubsub.Close()

	r.logger.Info("ClusterRelay", "Subscribed to fanout channel", map[string]interface{}{"channel": FanoutChannel, "origin": r.origin})

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *ClusterRelay) handle(raw string) {
	var env relayEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		r.logger.Warn("ClusterRelay", "Relay message parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if env.Origin == r.origin || len(env.Payload) == 0 {
		return
	}
	r.registry.Broadcast(env.ChatID, env.Payload)
}
