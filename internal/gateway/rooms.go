package gateway

import (
	"sync"
)

// RoomIndex tracks which connections belong to which room: one room per
// conversation plus one room keyed by each user's own id for direct
// notifications. The index is kept alongside the transport's own grouping so
// membership invariants are testable without a live socket.
//
// Rooms come into being on first join and disappear when the last member
// leaves.
type RoomIndex struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]*Client  // roomID -> connID -> client
	byConn map[string]map[string]struct{} // connID -> set of roomIDs
}

func NewRoomIndex() *RoomIndex {
	return &RoomIndex{
		rooms:  make(map[string]map[string]*Client),
		byConn: make(map[string]map[string]struct{}),
	}
}

// Join adds a connection to a room. Joining a room twice is a no-op.
func (ri *RoomIndex) Join(c *Client, roomID string) {
	if roomID == "" {
		return
	}
	ri.mu.Lock()
	defer ri.mu.Unlock()

	if ri.rooms[roomID] == nil {
		ri.rooms[roomID] = make(map[string]*Client)
	}
	ri.rooms[roomID][c.ID] = c

	if ri.byConn[c.ID] == nil {
		ri.byConn[c.ID] = make(map[string]struct{})
	}
	ri.byConn[c.ID][roomID] = struct{}{}
}

// Leave removes a connection from a room. Leaving a room the connection is
// not in is a no-op.
func (ri *RoomIndex) Leave(c *Client, roomID string) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	ri.leaveLocked(c.ID, roomID)
}

// LeaveAll removes a connection from every room it is in. Idempotent: a
// second call for the same connection does nothing.
func (ri *RoomIndex) LeaveAll(c *Client) {
	ri.mu.Lock()
	defer ri.mu.Unlock()

	for roomID := range ri.byConn[c.ID] {
		ri.leaveLocked(c.ID, roomID)
	}
}

func (ri *RoomIndex) leaveLocked(connID, roomID string) {
	if members, ok := ri.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(ri.rooms, roomID)
		}
	}
	if rooms, ok := ri.byConn[connID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(ri.byConn, connID)
		}
	}
}

// Members returns the connections currently in a room. An unknown room
// yields an empty slice.
func (ri *RoomIndex) Members(roomID string) []*Client {
	ri.mu.RLock()
	defer ri.mu.RUnlock()

	members := make([]*Client, 0, len(ri.rooms[roomID]))
	for _, c := range ri.rooms[roomID] {
		members = append(members, c)
	}
	return members
}

// InRoom reports whether a connection is a member of a room.
func (ri *RoomIndex) InRoom(connID, roomID string) bool {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	_, ok := ri.byConn[connID][roomID]
	return ok
}

// RoomsOf returns the ids of every room the connection is in.
func (ri *RoomIndex) RoomsOf(connID string) []string {
	ri.mu.RLock()
	defer ri.mu.RUnlock()

	rooms := make([]string, 0, len(ri.byConn[connID]))
	for roomID := range ri.byConn[connID] {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// MemberCount returns how many connections are in a room.
func (ri *RoomIndex) MemberCount(roomID string) int {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	return len(ri.rooms[roomID])
}
