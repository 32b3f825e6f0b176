package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt64_SurvivesJSON(t *testing.T) {
	evt := MessageCreated(42, 7, 3, time.Now())

	id, ok := Int64(evt.Payload(), "chat_id")
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	raw, err := json.Marshal(evt.Payload())
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	id, ok = Int64(decoded, "message_id")
	require.True(t, ok)
	assert.Equal(t, int64(7), id)

	_, ok = Int64(decoded, "missing")
	assert.False(t, ok)
}
