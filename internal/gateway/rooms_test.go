package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClient(userID string) *Client {
	return NewClient(nil, nil, userID, nil)
}

func TestRoomJoinAndLeave(t *testing.T) {
	ri := NewRoomIndex()
	c := newTestClient("alice")

	ri.Join(c, "conv-1")
	assert.True(t, ri.InRoom(c.ID, "conv-1"))
	assert.Equal(t, 1, ri.MemberCount("conv-1"))

	// Double join is a no-op.
	ri.Join(c, "conv-1")
	assert.Equal(t, 1, ri.MemberCount("conv-1"))

	ri.Leave(c, "conv-1")
	assert.False(t, ri.InRoom(c.ID, "conv-1"))
	assert.Equal(t, 0, ri.MemberCount("conv-1"))
}

func TestRoomLeaveAllIdempotent(t *testing.T) {
	ri := NewRoomIndex()
	c := newTestClient("alice")

	ri.Join(c, "alice")
	ri.Join(c, "conv-1")
	ri.Join(c, "conv-2")
	assert.Len(t, ri.RoomsOf(c.ID), 3)

	ri.LeaveAll(c)
	assert.Empty(t, ri.RoomsOf(c.ID))

	// A second cleanup for the same connection does nothing.
	ri.LeaveAll(c)
	assert.Empty(t, ri.RoomsOf(c.ID))
}

func TestRoomDroppedWhenLastMemberLeaves(t *testing.T) {
	ri := NewRoomIndex()
	a := newTestClient("alice")
	b := newTestClient("bob")

	ri.Join(a, "conv-1")
	ri.Join(b, "conv-1")
	assert.Equal(t, 2, ri.MemberCount("conv-1"))

	ri.Leave(a, "conv-1")
	assert.Equal(t, 1, ri.MemberCount("conv-1"))

	ri.Leave(b, "conv-1")
	assert.Empty(t, ri.Members("conv-1"))
}

func TestRoomLeaveUnknownRoomIsNoop(t *testing.T) {
	ri := NewRoomIndex()
	c := newTestClient("alice")

	ri.Leave(c, "conv-1")
	assert.Empty(t, ri.RoomsOf(c.ID))
}
