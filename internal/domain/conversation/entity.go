package conversation

import (
	"database/sql"
	"time"
)

// Member roles
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// Conversation represents the conversations table. A direct conversation
// keeps exactly its two original members; a group conversation needs a
// non-empty name, unique among groups, and at least one admin at all times.
type Conversation struct {
	ID            string         `gorm:"primaryKey" json:"id"`
	Name          sql.NullString `json:"name"`
	Picture       sql.NullString `json:"picture"`
	IsGroup       bool           `gorm:"default:false" json:"isGroup"`
	Members       []Member       `gorm:"foreignKey:ConversationID" json:"members"`
	LastMessage   sql.NullString `json:"lastMessage"`
	LastMessageAt sql.NullTime   `json:"lastMessageAt"`
	CreatedAt     time.Time      `gorm:"default:now()" json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Member represents conversation_members
type Member struct {
	ConversationID string    `gorm:"primaryKey" json:"conversationId"`
	UserID         string    `gorm:"primaryKey" json:"userId"`
	Role           string    `gorm:"default:'MEMBER'" json:"role"`
	JoinedAt       time.Time `gorm:"default:now()" json:"joinedAt"`
}

// MemberIDs returns the user ids of every member, in member order.
func (c *Conversation) MemberIDs() []string {
	ids := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// AdminCount returns the number of members holding the admin role.
func (c *Conversation) AdminCount() int {
	n := 0
	for _, m := range c.Members {
		if m.Role == RoleAdmin {
			n++
		}
	}
	return n
}

// HasMember reports whether userID belongs to the conversation.
func (c *Conversation) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether userID is an admin of the conversation.
func (c *Conversation) IsAdmin(userID string) bool {
	for _, m := range c.Members {
		if m.UserID == userID && m.Role == RoleAdmin {
			return true
		}
	}
	return false
}

func (Conversation) TableName() string {
	return "conversations"
}

func (Member) TableName() string {
	return "conversation_members"
}
