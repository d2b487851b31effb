package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"wavechat/internal/domain/contact"
	"wavechat/internal/domain/conversation"
	"wavechat/internal/domain/message"
	wave_errors "wavechat/pkg/errors"
)

// ConversationDirectory is the conversation lookup collaborator.
type ConversationDirectory interface {
	GetConversationIDsForUser(ctx context.Context, userID string) ([]string, error)
	GetConversationByID(ctx context.Context, id string) (conversation.Conversation, error)
}

// MessageCreator is the message persistence collaborator. CreateMessage is
// atomic: no partial message, and it is awaited before any broadcast.
type MessageCreator interface {
	CreateMessage(ctx context.Context, conversationID string, in message.CreateMessageInput, files []message.FileUpload) (message.Message, error)
}

// Router dispatches inbound socket events to the correct room targets.
// Events on a conversation's timeline go to the conversation room; events
// about a user's membership or identity go to that user's personal room;
// events reshaping a conversation go to both.
type Router struct {
	emitter       Emitter
	presence      *PresenceRegistry
	rooms         *RoomIndex
	conversations ConversationDirectory
	messages      MessageCreator
	logger        *GatewayLogger
}

func NewRouter(
	emitter Emitter,
	presence *PresenceRegistry,
	rooms *RoomIndex,
	conversations ConversationDirectory,
	messages MessageCreator,
) *Router {
	return &Router{
		emitter:       emitter,
		presence:      presence,
		rooms:         rooms,
		conversations: conversations,
		messages:      messages,
		logger:        NewGatewayLogger(),
	}
}

// Dispatch routes one inbound frame. Unknown event names are logged and
// swallowed; payloads are validated before any side effect.
func (r *Router) Dispatch(ctx context.Context, c *Client, raw []byte) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("malformed frame: %w", err)
	}

	switch env.Event {
	case EventJoin:
		return r.handleJoin(c, env.Data)
	case EventLogin:
		return r.handleLogin(ctx, c, env.Data)
	case EventSendMessage:
		return r.handleSendMessage(ctx, env.Data)
	case EventCall:
		return r.handleCallRing(env.Data)
	case EventJoinCall:
		return r.handleCallJoin(env.Data)
	case EventAcceptCall:
		return r.handleCallAccept(env.Data)
	case EventRejectCall, EventEndCall, EventCancelCall:
		return r.handleCallLifecycle(env.Event, env.Data)
	case EventRequestContact:
		return r.handleContactRequest(env.Data)
	case EventCancelRequestContact, EventRejectRequestContact:
		return r.handleContactUpdate(env.Event, env.Data)
	default:
		r.logger.Warn("unknown event", c.UserID(), c.ID, zap.String("in_event", env.Event))
		return nil
	}
}

// handleJoin joins a single conversation room and records presence. Silent:
// nothing is emitted. Used by legacy clients and for entering a freshly
// created conversation without a full re-login.
func (r *Router) handleJoin(c *Client, data json.RawMessage) error {
	var p JoinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.UserID == "" || p.ConversationID == "" {
		return fmt.Errorf("join: %w", wave_errors.ErrInvalidInput)
	}

	c.SetUserID(p.UserID)
	r.rooms.Join(c, p.ConversationID)
	r.presence.SetOnline(p.UserID, c.ID)
	return nil
}

// handleLogin joins the personal room plus every conversation room, records
// presence, then broadcasts the full online list. The joins are issued
// before the broadcast so the fresh connection cannot miss its own rooms;
// the broadcast itself is fire-and-forget.
func (r *Router) handleLogin(ctx context.Context, c *Client, data json.RawMessage) error {
	var p LoginPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		return fmt.Errorf("login: %w", wave_errors.ErrInvalidInput)
	}

	c.SetUserID(p.UserID)
	r.rooms.Join(c, p.UserID)

	conversationIDs, err := r.conversations.GetConversationIDsForUser(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("login: conversation lookup: %w", err)
	}
	for _, id := range conversationIDs {
		r.rooms.Join(c, id)
	}

	r.presence.SetOnline(p.UserID, c.ID)
	r.emitter.EmitToAll(EventActiveUsers, r.presence.OnlineUsers())

	r.logger.Info("user logged in", p.UserID, c.ID,
		zap.Int("conversation_rooms", len(conversationIDs)))
	return nil
}

// handleSendMessage persists the message through the collaborator and only
// then emits newMessage, so no client ever sees a notification for a
// message that failed to persist.
func (r *Router) handleSendMessage(ctx context.Context, data json.RawMessage) error {
	var p SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.ConversationID == "" {
		return fmt.Errorf("sendMessage: %w", wave_errors.ErrInvalidInput)
	}

	msg, err := r.messages.CreateMessage(ctx, p.ConversationID, p.MessageDto, p.Files)
	if err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}

	r.emitter.EmitToRoom(p.ConversationID, EventNewMessage, msg)
	return nil
}

// The call handlers below are pure relays: the state machine lives in the
// call service behind the REST surface, the gateway only moves signaling.

func (r *Router) handleCallRing(data json.RawMessage) error {
	var p CallRingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	r.emitter.EmitToRoom(p.ConversationID, EventGoingCall, GoingCallPayload{Sender: p.Sender})
	return nil
}

func (r *Router) handleCallJoin(data json.RawMessage) error {
	var p CallJoinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	r.emitter.EmitToRoom(p.ConversationID, EventNewUser, NewUserPayload{UserID: p.UserID})
	return nil
}

func (r *Router) handleCallAccept(data json.RawMessage) error {
	var p CallJoinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	r.emitter.EmitToRoom(p.ConversationID, EventNewUserJoinCall, NewUserJoinCallPayload{Sender: p.UserID})
	return nil
}

// handleCallLifecycle echoes rejectCall/endCall/cancelCall to the target
// user's personal room, not the whole conversation.
func (r *Router) handleCallLifecycle(event string, data json.RawMessage) error {
	var p CallLifecyclePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		return fmt.Errorf("%s: %w", event, wave_errors.ErrInvalidInput)
	}
	r.emitter.EmitToRoom(p.UserID, event, CallSignalPayload{
		ConversationID: p.ConversationID,
		CallData:       p.CallData,
	})
	return nil
}

// handleContactRequest delivers a contact request to the receiver's
// personal room. An offline receiver is logged and skipped; they will see
// the request from the database on next login.
func (r *Router) handleContactRequest(data json.RawMessage) error {
	var p ContactRequestPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if !r.presence.IsOnline(p.ReceiverID) {
		r.logger.Info("contact request receiver offline", p.ReceiverID, "")
		return nil
	}
	r.emitter.EmitToRoom(p.ReceiverID, EventNewRequestContact, p.Contact)
	return nil
}

func (r *Router) handleContactUpdate(event string, data json.RawMessage) error {
	var p ContactUpdatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	r.emitter.EmitToRoom(p.ReceiverID, event, ContactRefPayload{ContactID: p.ContactID})
	return nil
}

// Server-side emits, invoked by the REST collaborators after a successful
// mutation.

// NotifyContactAccepted tells both contact parties the request was accepted
// and hands them their fresh direct conversation.
func (r *Router) NotifyContactAccepted(ct contact.Contact, conv conversation.Conversation) {
	payload := AcceptContactPayload{ContactID: ct.ID, Conversation: conv}
	for _, userID := range ct.PartyIDs() {
		r.emitter.EmitToRoom(userID, EventAcceptRequestContact, payload)
	}
}

// NotifyGroupCreated tells every member of a new group conversation about
// it via their personal rooms; none of them is in the conversation room yet.
func (r *Router) NotifyGroupCreated(conv conversation.Conversation) {
	for _, room := range RoomTargets(conv, FanoutMembersOnly) {
		r.emitter.EmitToRoom(room, EventCreateConversationForGroup, conv)
	}
}

// NotifyConversationUpdated fans updateConversation out to the conversation
// room and each member's personal room.
func (r *Router) NotifyConversationUpdated(conv conversation.Conversation) {
	for _, room := range RoomTargets(conv, FanoutConversationAndMembers) {
		r.emitter.EmitToRoom(room, EventUpdateConversation, conv)
	}
}

// NotifyMemberRemoved tells the removed member, and only them, that an
// admin took them out of the group.
func (r *Router) NotifyMemberRemoved(memberID, conversationID string) {
	r.emitter.EmitToRoom(memberID, EventRemovedGroupByAdmin, RemovedMemberPayload{ConversationID: conversationID})
}

// NotifyGroupDissolved fans dissolvedGroup out to the conversation room and
// each member's personal room, naming the admin who dissolved it.
func (r *Router) NotifyGroupDissolved(conv conversation.Conversation, adminID string) {
	payload := DissolvedGroupPayload{Conversation: conv, AdminID: adminID}
	for _, room := range RoomTargets(conv, FanoutConversationAndMembers) {
		r.emitter.EmitToRoom(room, EventDissolvedGroup, payload)
	}
}
