package contact

import (
	"time"
)

// Contact request statuses
const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

// Contact represents the contacts table: a friendship request from
// SenderID to ReceiverID and its outcome.
type Contact struct {
	ID         string    `gorm:"primaryKey" json:"_id"`
	SenderID   string    `gorm:"index;not null" json:"senderId"`
	ReceiverID string    `gorm:"index;not null" json:"receiverId"`
	Status     string    `gorm:"default:'PENDING'" json:"status"`
	CreatedAt  time.Time `gorm:"default:now()" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PartyIDs returns both user ids involved in the contact.
func (c *Contact) PartyIDs() []string {
	return []string{c.SenderID, c.ReceiverID}
}

func (Contact) TableName() string {
	return "contacts"
}
