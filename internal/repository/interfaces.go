package repository

import (
	"context"
	"time"

	"wavechat/internal/domain/call"
	"wavechat/internal/domain/contact"
	"wavechat/internal/domain/conversation"
	"wavechat/internal/domain/message"
	"wavechat/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Update(ctx context.Context, u user.User) error
	MarkVerified(ctx context.Context, id string) error
	UpdateLastSeen(ctx context.Context, id string, lastSeen time.Time) error
}

type ConversationRepository interface {
	Create(ctx context.Context, c *conversation.Conversation) error
	GetByID(ctx context.Context, id string) (conversation.Conversation, error)
	Update(ctx context.Context, c conversation.Conversation) error
	Delete(ctx context.Context, id string) error

	GetUserConversationIDs(ctx context.Context, userID string) ([]string, error)
	GetUserConversations(ctx context.Context, userID string, page, limit int) ([]conversation.Conversation, int64, error)
	GetDirectConversation(ctx context.Context, userID1, userID2 string) (conversation.Conversation, error)
	GroupNameExists(ctx context.Context, name string) (bool, error)

	AddMember(ctx context.Context, m *conversation.Member) error
	RemoveMember(ctx context.Context, conversationID, userID string) error
	UpdateMemberRole(ctx context.Context, conversationID, userID, role string) error

	UpdateLastMessage(ctx context.Context, conversationID, preview string, at time.Time) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id string) (message.Message, error)
	GetConversationMessages(ctx context.Context, conversationID string, page, limit int) ([]message.Message, int64, error)
}

type CallRepository interface {
	Create(ctx context.Context, c *call.Call) error
	GetByID(ctx context.Context, id string) (call.Call, error)
	Update(ctx context.Context, c call.Call) error
	GetConversationCalls(ctx context.Context, conversationID string, page, limit int) ([]call.Call, int64, error)
	RecordQualityMetric(ctx context.Context, m *call.CallQualityMetric) error
}

type ContactRepository interface {
	Create(ctx context.Context, c *contact.Contact) error
	GetByID(ctx context.Context, id string) (contact.Contact, error)
	Update(ctx context.Context, c contact.Contact) error
	Delete(ctx context.Context, id string) error
	GetPendingBetween(ctx context.Context, senderID, receiverID string) (contact.Contact, error)
	GetUserContacts(ctx context.Context, userID string) ([]contact.Contact, error)
}
