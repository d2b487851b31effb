package gateway

import (
	"wavechat/internal/domain/conversation"
)

// FanoutKind selects the recipient set for a conversation-level event.
type FanoutKind int

const (
	// FanoutConversationOnly targets the conversation room: events on the
	// conversation's timeline.
	FanoutConversationOnly FanoutKind = iota
	// FanoutMembersOnly targets each member's personal room: events about a
	// user's own membership.
	FanoutMembersOnly
	// FanoutConversationAndMembers targets both. The redundancy is
	// deliberate: a member who has not joined the conversation room yet
	// (just added, not re-logged-in) still gets the event on their personal
	// room.
	FanoutConversationAndMembers
)

// RoomTargets returns the distinct room ids an event about conv should
// reach. Pure function of conversation membership.
func RoomTargets(conv conversation.Conversation, kind FanoutKind) []string {
	seen := make(map[string]struct{})
	var targets []string

	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		targets = append(targets, id)
	}

	if kind == FanoutConversationOnly || kind == FanoutConversationAndMembers {
		add(conv.ID)
	}
	if kind == FanoutMembersOnly || kind == FanoutConversationAndMembers {
		for _, m := range conv.Members {
			add(m.UserID)
		}
	}
	return targets
}
