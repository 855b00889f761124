package chat

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// Chat represents the chats table: the durable pairing of two users and the
// shared bookkeeping over their conversation. Participants are stored as an
// ordered pair (A < B by byte order) so that exactly one row can exist per
// unordered pair, enforced by the composite unique index rather than
// engine-side locking.
type Chat struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ParticipantA  uuid.UUID     `gorm:"type:uuid;uniqueIndex:idx_chats_pair;not null" json:"participant_a"`
	ParticipantB  uuid.UUID     `gorm:"type:uuid;uniqueIndex:idx_chats_pair;not null" json:"participant_b"`
	LastMessageID uuid.NullUUID `json:"last_message_id,omitempty"`
	UnreadA       int           `gorm:"default:0" json:"-"`
	UnreadB       int           `gorm:"default:0" json:"-"`
	HiddenA       bool          `gorm:"default:false" json:"-"`
	HiddenB       bool          `gorm:"default:false" json:"-"`
	ArchivedA     bool          `gorm:"default:false" json:"-"`
	ArchivedB     bool          `gorm:"default:false" json:"-"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (Chat) TableName() string {
	return "chats"
}

// NormalizePair orders two user IDs so (a,b) and (b,a) address the same chat.
func NormalizePair(x, y uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(x[:], y[:]) > 0 {
		return y, x
	}
	return x, y
}

func (c Chat) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// Other returns the peer of userID in this chat.
func (c Chat) Other(userID uuid.UUID) uuid.UUID {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

func (c Chat) UnreadFor(userID uuid.UUID) int {
	if c.ParticipantA == userID {
		return c.UnreadA
	}
	return c.UnreadB
}

func (c Chat) HiddenFor(userID uuid.UUID) bool {
	if c.ParticipantA == userID {
		return c.HiddenA
	}
	return c.HiddenB
}

func (c Chat) ArchivedFor(userID uuid.UUID) bool {
	if c.ParticipantA == userID {
		return c.ArchivedA
	}
	return c.ArchivedB
}
