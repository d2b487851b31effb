package user

import (
	"database/sql"
	"time"
)

// User represents the users table
type User struct {
	ID           string         `gorm:"primaryKey" json:"_id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	DisplayName  string         `json:"displayName"`
	AvatarURL    sql.NullString `json:"avatarUrl"`
	IsVerified   bool           `gorm:"default:false" json:"isVerified"`
	LastSeenAt   sql.NullTime   `json:"lastSeenAt"`
	CreatedAt    time.Time      `gorm:"default:now()" json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
