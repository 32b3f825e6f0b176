package nats

import (
	"testing"
	"time"

	"messenger-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	headers := nats.Header{}
	headers.Set("Occurred-At", "2025-04-18T09:01:20.5Z")

	evt, err := decodeEvent("events.MESSAGE_READ", headers, []byte(`{"chat_id":42,"message_id":7}`))
	require.NoError(t, err)

	assert.Equal(t, "MESSAGE_READ", evt.EventType())
	assert.Equal(t, float64(42), evt.Payload()["chat_id"])
	assert.Equal(t, time.Date(2025, 4, 18, 9, 1, 20, 500000000, time.UTC), evt.Timestamp())
}

func TestDecodeEvent_Malformed(t *testing.T) {
	_, err := decodeEvent("events.MESSAGE_READ", nil, []byte(`not json`))
	assert.Error(t, err)
}

func TestMessageID(t *testing.T) {
	at := time.Date(2025, 4, 18, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "MESSAGE_CREATED:7", MessageID(events.MessageCreated(42, 7, 1, at)))
	assert.Equal(t, "MESSAGE_READ:7", MessageID(events.MessageRead(42, 7, 2, at)))
	assert.Empty(t, MessageID(events.BaseEvent{Type: "OTHER", Data: map[string]interface{}{}}))
}
