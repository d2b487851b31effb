package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerForTest(h *Hub, c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
}

func readFrame(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	default:
		t.Fatal("no frame queued")
		return Envelope{}
	}
}

func TestEmitToRoomReachesOnlyMembers(t *testing.T) {
	h := NewHub()
	a := newTestClient("alice")
	b := newTestClient("bob")
	registerForTest(h, a)
	registerForTest(h, b)
	h.rooms.Join(a, "conv-1")

	h.EmitToRoom("conv-1", EventNewMessage, map[string]string{"content": "hi"})

	env := readFrame(t, a)
	assert.Equal(t, EventNewMessage, env.Event)
	assert.Empty(t, b.send)
}

func TestEmitToEmptyRoomIsNoop(t *testing.T) {
	h := NewHub()
	a := newTestClient("alice")
	registerForTest(h, a)

	h.EmitToRoom("conv-1", EventNewMessage, map[string]string{"content": "hi"})
	assert.Empty(t, a.send)
}

func TestEmitToAllReachesEveryClient(t *testing.T) {
	h := NewHub()
	a := newTestClient("alice")
	b := newTestClient("bob")
	registerForTest(h, a)
	registerForTest(h, b)

	h.EmitToAll(EventActiveUsers, []string{"alice", "bob"})

	for _, c := range []*Client{a, b} {
		env := readFrame(t, c)
		assert.Equal(t, EventActiveUsers, env.Event)

		var users []string
		require.NoError(t, json.Unmarshal(env.Data, &users))
		assert.Equal(t, []string{"alice", "bob"}, users)
	}
}

func TestUnregisterCleansRoomsAndPresenceWithoutBroadcast(t *testing.T) {
	h := NewHub()
	a := newTestClient("alice")
	observer := newTestClient("bob")
	registerForTest(h, a)
	registerForTest(h, observer)

	h.rooms.Join(a, "alice")
	h.rooms.Join(a, "conv-1")
	h.presence.SetOnline("alice", a.ID)

	h.handleUnregister(a)

	assert.Empty(t, h.rooms.RoomsOf(a.ID))
	assert.False(t, h.presence.IsOnline("alice"))
	assert.Equal(t, 1, h.ClientCount())

	// Disconnect must not push a fresh activeUsers list.
	assert.Empty(t, observer.send)
}

func TestEmitRacingDisconnectDropsFrame(t *testing.T) {
	h := NewHub()
	a := newTestClient("alice")
	registerForTest(h, a)
	h.rooms.Join(a, "conv-1")

	// A delivery snapshots the membership first; the disconnect cleanup can
	// then win the race and close the send queue before anything is written.
	members := h.rooms.Members("conv-1")
	require.Len(t, members, 1)
	h.handleUnregister(a)

	require.NotPanics(t, func() {
		for _, c := range members {
			c.SendRaw([]byte(`{"event":"newMessage","data":{}}`))
		}
	})

	// Emitting through the hub after the disconnect is equally harmless.
	require.NotPanics(t, func() {
		h.EmitToRoom("conv-1", EventNewMessage, map[string]string{"content": "hi"})
	})
}

func TestUnregisterUnknownClientIsNoop(t *testing.T) {
	h := NewHub()
	a := newTestClient("alice")

	// Never registered; a duplicate unregister must not close channels twice.
	h.handleUnregister(a)
	assert.Equal(t, 0, h.ClientCount())
}
