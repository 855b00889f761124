package user

import (
	"time"

	"github.com/google/uuid"
)

// LastSeenPrivacy controls who may read a user's last-seen timestamp.
type LastSeenPrivacy string

const (
	PrivacyEveryone LastSeenPrivacy = "everyone"
	PrivacyContacts LastSeenPrivacy = "contacts"
	PrivacyNobody   LastSeenPrivacy = "nobody"
)

func (p LastSeenPrivacy) Valid() bool {
	switch p {
	case PrivacyEveryone, PrivacyContacts, PrivacyNobody:
		return true
	}
	return false
}

// User represents the users table. Identity creation and authentication live
// outside this service; the engine only mutates presence-related fields.
type User struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Phone           string          `gorm:"uniqueIndex;not null" json:"phone"`
	DisplayName     string          `json:"display_name"`
	About           string          `json:"about,omitempty"`
	AvatarURL       string          `json:"avatar_url,omitempty"`
	Online          bool            `gorm:"default:false" json:"online"`
	LastSeen        time.Time       `gorm:"not null" json:"last_seen"`
	LastSeenPrivacy LastSeenPrivacy `gorm:"default:everyone" json:"last_seen_privacy"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
