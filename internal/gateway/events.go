package gateway

import (
	"encoding/json"

	"wavechat/internal/domain/conversation"
	"wavechat/internal/domain/message"
)

// Inbound socket event names. Together with the outbound names below they
// form the wire protocol and must stay stable for existing clients.
const (
	EventJoin        = "join"
	EventLogin       = "login"
	EventSendMessage = "sendMessage"

	EventCall       = "call"
	EventJoinCall   = "joinCall"
	EventAcceptCall = "acceptCall"
	EventRejectCall = "rejectCall"
	EventEndCall    = "endCall"
	EventCancelCall = "cancelCall"

	EventRequestContact       = "requestContact"
	EventCancelRequestContact = "cancelRequestContact"
	EventRejectRequestContact = "rejectRequestContact"
)

// Outbound socket event names.
const (
	EventActiveUsers     = "activeUsers"
	EventNewMessage      = "newMessage"
	EventGoingCall       = "goingCall"
	EventNewUser         = "newUser"
	EventNewUserJoinCall = "newUserJoinCall"

	EventNewRequestContact    = "newRequestContact"
	EventAcceptRequestContact = "acceptRequestContact"

	EventCreateConversationForGroup = "createConversationForGroup"
	EventUpdateConversation         = "updateConversation"
	EventRemovedGroupByAdmin        = "removedGroupByAdmin"
	EventDissolvedGroup             = "dissolvedGroup"
)

// Envelope is the frame around every socket event, inbound and outbound.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound payloads, one variant per event name, validated before dispatch.

type JoinPayload struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
}

type LoginPayload struct {
	UserID string `json:"userId"`
}

type SendMessagePayload struct {
	ConversationID string                     `json:"conversationId"`
	MessageDto     message.CreateMessageInput `json:"messageDto"`
	Files          []message.FileUpload       `json:"files"`
}

type CallRingPayload struct {
	Sender         string `json:"sender"`
	ConversationID string `json:"conversationId"`
}

type CallJoinPayload struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
}

// CallLifecyclePayload carries rejectCall, endCall and cancelCall. CallData
// is relayed untouched; the video SDK envelope is opaque to the server.
type CallLifecyclePayload struct {
	UserID         string          `json:"userId"`
	ConversationID string          `json:"conversationId"`
	CallData       json.RawMessage `json:"callData"`
}

type ContactRequestPayload struct {
	ReceiverID string          `json:"receiverId"`
	Contact    json.RawMessage `json:"contact"`
}

type ContactUpdatePayload struct {
	ReceiverID string `json:"receiverId"`
	ContactID  string `json:"contactId"`
}

// Outbound payloads.

type GoingCallPayload struct {
	Sender string `json:"sender"`
}

type NewUserPayload struct {
	UserID string `json:"userId"`
}

type NewUserJoinCallPayload struct {
	Sender string `json:"sender"`
}

type CallSignalPayload struct {
	ConversationID string          `json:"conversationId"`
	CallData       json.RawMessage `json:"callData"`
}

type ContactRefPayload struct {
	ContactID string `json:"contactId"`
}

type AcceptContactPayload struct {
	ContactID    string                    `json:"contactId"`
	Conversation conversation.Conversation `json:"conversation"`
}

type RemovedMemberPayload struct {
	ConversationID string `json:"conversationId"`
}

type DissolvedGroupPayload struct {
	Conversation conversation.Conversation `json:"conversation"`
	AdminID      string                    `json:"adminId"`
}
