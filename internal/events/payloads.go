package events

import (
	"time"

	"pulsechat/internal/domain/message"

	"github.com/google/uuid"
)

// Payloads carried inside the event envelope, one per event type.

type MessagePayload struct {
	Message message.Message `json:"message"`
}

type StatusPayload struct {
	MessageID uuid.UUID      `json:"message_id"`
	ChatID    uuid.UUID      `json:"chat_id"`
	Status    message.Status `json:"status"`
}

type ReadPayload struct {
	ChatID   uuid.UUID `json:"chat_id"`
	ReaderID uuid.UUID `json:"reader_id"`
}

type ReactionPayload struct {
	MessageID uuid.UUID `json:"message_id"`
	ChatID    uuid.UUID `json:"chat_id"`
	UserID    uuid.UUID `json:"user_id"`
	Emoji     string    `json:"emoji,omitempty"`
}

type DeletedPayload struct {
	MessageID         uuid.UUID `json:"message_id"`
	ChatID            uuid.UUID `json:"chat_id"`
	DeleteForEveryone bool      `json:"delete_for_everyone"`
}

type PresencePayload struct {
	UserID   uuid.UUID `json:"user_id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}

type TypingPayload struct {
	FromUserID uuid.UUID `json:"from_user_id"`
}

type ProfilePayload struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	About       string    `json:"about,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
}
