package gateway

import (
	"sort"
	"sync"
)

// PresenceRegistry maps user ids to their live connection id. It is owned by
// the Hub and only reached through this interface, never as ambient state.
//
// One connection per user: a login from a second tab or device silently
// replaces the first entry. Nothing tells the superseded connection it lost
// presence. Presence is not persisted; a restart starts from empty.
type PresenceRegistry struct {
	mu      sync.RWMutex
	entries map[string]string // userID -> connection id
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{entries: make(map[string]string)}
}

// SetOnline registers the mapping, overwriting any previous connection for
// the same user. The caller broadcasts the updated online list after the
// connection's room joins have completed.
func (p *PresenceRegistry) SetOnline(userID, connID string) {
	p.mu.Lock()
	p.entries[userID] = connID
	p.mu.Unlock()
}

// RemoveByConnection scans all entries and evicts any whose value matches
// the departing connection id. O(n) over online users. Returns the user ids
// removed. No broadcast happens on removal.
func (p *PresenceRegistry) RemoveByConnection(connID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var removed []string
	for userID, id := range p.entries {
		if id == connID {
			delete(p.entries, userID)
			removed = append(removed, userID)
		}
	}
	return removed
}

// IsOnline reports whether the user has a live connection. Used by contact
// fan-out for early exit and logging; emitting to an offline user's room is
// already a safe no-op.
func (p *PresenceRegistry) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.entries[userID]
	return ok
}

// ConnectionFor returns the current connection id for a user.
func (p *PresenceRegistry) ConnectionFor(userID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, ok := p.entries[userID]
	return id, ok
}

// OnlineUsers returns all online user ids, sorted for stable payloads.
func (p *PresenceRegistry) OnlineUsers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]string, 0, len(p.entries))
	for userID := range p.entries {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// OnlineCount returns the number of online users.
func (p *PresenceRegistry) OnlineCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
