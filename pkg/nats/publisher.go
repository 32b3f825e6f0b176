package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"messenger-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// DuplicateWindow is how long JetStream remembers a message id.
const DuplicateWindow = 2 * time.Minute

// Publisher writes domain events to the EVENTS stream.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewPublisher connects and makes sure the EVENTS stream exists.
func NewPublisher(url string) (*Publisher, error) {
	nc, js, err := connect(url, "messenger-publisher")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Limits retention so several durable consumers (journal tailers, analytics) can read the same events.
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{SubjectPrefix + ">"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     24 * time.Hour,
		Duplicates: DuplicateWindow,
	})
	if err != nil {
		log.Printf("Warn: Failed to ensure stream '%s': %v", StreamName, err)
	}

	return &Publisher{nc: nc, js: js}, nil
}

// MessageID derives the JetStream dedup key. Both event types fire at most
// once per message, so type plus message id identifies an event.
func MessageID(event events.Event) string {
	if id, ok := events.Int64(event.Payload(), "message_id"); ok {
		return fmt.Sprintf("%s:%d", event.EventType(), id)
	}
	return ""
}

// Publish sends an event to events.<TYPE>.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	subject := SubjectPrefix + event.EventType()
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(headerOccurredAt, event.Timestamp().UTC().Format(time.RFC3339Nano))

	var opts []jetstream.PublishOpt
	if id := MessageID(event); id != "" {
		opts = append(opts, jetstream.WithMsgID(id))
	}

	ack, err := p.js.PublishMsg(ctx, msg, opts...)
	if err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	if ack.Duplicate {
		log.Printf("NATS dropped duplicate %s", MessageID(event))
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
	}
}
