package services

import (
	"wavechat/internal/domain/contact"
	"wavechat/internal/domain/conversation"
)

// Notifier is the realtime fan-out surface the services push into after a
// successful mutation. The gateway router implements it; tests use a
// recording fake.
type Notifier interface {
	NotifyContactAccepted(ct contact.Contact, conv conversation.Conversation)
	NotifyGroupCreated(conv conversation.Conversation)
	NotifyConversationUpdated(conv conversation.Conversation)
	NotifyMemberRemoved(memberID, conversationID string)
	NotifyGroupDissolved(conv conversation.Conversation, adminID string)
}

// NoopNotifier satisfies Notifier when no gateway is attached.
type NoopNotifier struct{}

func (NoopNotifier) NotifyContactAccepted(contact.Contact, conversation.Conversation) {}
func (NoopNotifier) NotifyGroupCreated(conversation.Conversation)                     {}
func (NoopNotifier) NotifyConversationUpdated(conversation.Conversation)              {}
func (NoopNotifier) NotifyMemberRemoved(string, string)                               {}
func (NoopNotifier) NotifyGroupDissolved(conversation.Conversation, string)           {}
