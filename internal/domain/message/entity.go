package message

import (
	"time"
)

// Message represents the messages table
type Message struct {
	ID             string       `gorm:"primaryKey" json:"_id"`
	ConversationID string       `gorm:"index;not null" json:"conversationId"`
	SenderID       string       `gorm:"not null" json:"senderId"`
	Content        string       `json:"content"`
	Attachments    []Attachment `gorm:"foreignKey:MessageID" json:"attachments"`
	CreatedAt      time.Time    `gorm:"default:now()" json:"createdAt"`
}

// Attachment represents message_attachments, one row per uploaded file
type Attachment struct {
	ID        string `gorm:"primaryKey" json:"id"`
	MessageID string `gorm:"index;not null" json:"messageId"`
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	URL       string `json:"url"`
}

// CreateMessageInput is the messageDto carried by the sendMessage event
// and the REST create endpoint.
type CreateMessageInput struct {
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
}

// FileUpload is one inbound file attached to a message before storage.
type FileUpload struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

func (Message) TableName() string {
	return "messages"
}

func (Attachment) TableName() string {
	return "message_attachments"
}
