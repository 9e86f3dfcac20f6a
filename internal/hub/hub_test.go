package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesOnlyTheChat(t *testing.T) {
	h := NewHub()
	a := make(Client, 1)
	b := make(Client, 1)
	h.Subscribe("chat-1", a)
	h.Subscribe("chat-2", b)

	require.NoError(t, h.Broadcast("chat-1", Event{Type: EventMessage, Payload: map[string]string{"text": "hi"}}))

	select {
	case raw := <-a:
		var ev struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, EventMessage, ev.Type)
		assert.Equal(t, "hi", ev.Payload["text"])
	default:
		t.Fatal("subscriber of chat-1 did not receive the event")
	}
	assert.Len(t, b, 0)
}

func TestBroadcastSkipsFullClients(t *testing.T) {
	h := NewHub()
	c := make(Client, 1)
	h.Subscribe("chat", c)

	require.NoError(t, h.Broadcast("chat", Event{Type: EventMessage}))
	require.NoError(t, h.Broadcast("chat", Event{Type: EventMessage}))
	assert.Len(t, c, 1)
}

func TestUnsubscribeClosesAndForgets(t *testing.T) {
	h := NewHub()
	c := make(Client, 1)
	h.Subscribe("chat", c)
	assert.Equal(t, 1, h.Subscribers("chat"))

	h.Unsubscribe("chat", c)
	_, open := <-c
	assert.False(t, open)
	assert.Zero(t, h.Subscribers("chat"))

	// A second unsubscribe is harmless.
	assert.NotPanics(t, func() { h.Unsubscribe("chat", c) })
}
