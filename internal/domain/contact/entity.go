package contact

import (
	"time"

	"github.com/google/uuid"
)

// Contact represents the contacts table: a user-chosen alias for another
// user, overriding the phone-number-derived default name. Unique per
// (owner, target) pair and independent of chat or message lifecycles.
type Contact struct {
	OwnerID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"owner_id"`
	TargetID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"target_id"`
	Alias     string    `gorm:"not null" json:"alias"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}
