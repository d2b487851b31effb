package call

import (
	"database/sql"
	"time"
)

// Call statuses. WAITING is the ringing phase; CANCELLED, REJECTED and
// FINISHED are terminal.
const (
	StatusWaiting   = "WAITING"
	StatusOngoing   = "ONGOING"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusRejected  = "REJECTED"
)

// Call types
const (
	TypeAudio = "AUDIO"
	TypeVideo = "VIDEO"
)

// Call represents the calls table. A call record is never hard-deleted;
// its status moves to a terminal state instead.
type Call struct {
	ID                  string         `gorm:"primaryKey" json:"id"`
	ConversationID      string         `gorm:"index;not null" json:"conversationId"`
	CallerID            string         `gorm:"not null" json:"callerId"`
	ReceiverIDs         []string       `gorm:"serializer:json" json:"receiverIds"`
	Type                string         `gorm:"not null" json:"type"`
	Status              string         `gorm:"not null" json:"status"`
	StartedAt           time.Time      `json:"startedAt"`
	EndedAt             sql.NullTime   `json:"endedAt"`
	DurationSeconds     int64          `json:"duration"`
	Participants        []string       `gorm:"serializer:json" json:"participants"`
	CurrentParticipants []string       `gorm:"serializer:json" json:"currentParticipants"`
	RecordingURL        sql.NullString `json:"recordingUrl"`
	CreatedAt           time.Time      `gorm:"default:now()" json:"createdAt"`
}

// CallQualityMetric represents call_quality_metrics
type CallQualityMetric struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	CallID          string    `gorm:"index;not null" json:"callId"`
	UserID          string    `gorm:"not null" json:"userId"`
	RecordedAt      time.Time `gorm:"default:now()" json:"recordedAt"`
	PacketsLost     int64     `json:"packetsLost"`
	JitterMs        float64   `gorm:"type:decimal" json:"jitterMs"`
	RoundTripTimeMs float64   `gorm:"type:decimal" json:"roundTripTimeMs"`
	BitrateKbps     int       `json:"bitrateKbps"`
}

// IsTerminal reports whether the call can no longer change state.
func (c *Call) IsTerminal() bool {
	return c.Status == StatusFinished || c.Status == StatusCancelled || c.Status == StatusRejected
}

// HasParticipant reports whether userID is in the durable join history.
func (c *Call) HasParticipant(userID string) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// HasCurrentParticipant reports whether userID is currently connected to the call.
func (c *Call) HasCurrentParticipant(userID string) bool {
	for _, id := range c.CurrentParticipants {
		if id == userID {
			return true
		}
	}
	return false
}

func (Call) TableName() string {
	return "calls"
}

func (CallQualityMetric) TableName() string {
	return "call_quality_metrics"
}
