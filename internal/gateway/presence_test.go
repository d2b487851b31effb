package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceLastJoinWins(t *testing.T) {
	p := NewPresenceRegistry()

	p.SetOnline("alice", "conn-1")
	p.SetOnline("alice", "conn-2")

	connID, ok := p.ConnectionFor("alice")
	assert.True(t, ok)
	assert.Equal(t, "conn-2", connID)
	assert.Equal(t, 1, p.OnlineCount())
}

func TestPresenceRemoveByConnection(t *testing.T) {
	p := NewPresenceRegistry()

	p.SetOnline("alice", "conn-1")
	p.SetOnline("bob", "conn-2")

	removed := p.RemoveByConnection("conn-1")
	assert.Equal(t, []string{"alice"}, removed)
	assert.False(t, p.IsOnline("alice"))
	assert.True(t, p.IsOnline("bob"))
}

func TestPresenceStaleConnectionRemovalIsNoop(t *testing.T) {
	p := NewPresenceRegistry()

	// alice reconnects, then the old connection disconnects.
	p.SetOnline("alice", "conn-1")
	p.SetOnline("alice", "conn-2")

	removed := p.RemoveByConnection("conn-1")
	assert.Empty(t, removed)
	assert.True(t, p.IsOnline("alice"))

	connID, _ := p.ConnectionFor("alice")
	assert.Equal(t, "conn-2", connID)
}

func TestPresenceOnlineUsersSorted(t *testing.T) {
	p := NewPresenceRegistry()

	p.SetOnline("carol", "conn-3")
	p.SetOnline("alice", "conn-1")
	p.SetOnline("bob", "conn-2")

	assert.Equal(t, []string{"alice", "bob", "carol"}, p.OnlineUsers())
}
