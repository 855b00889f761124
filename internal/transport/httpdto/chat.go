package httpdto

import (
	"time"

	"pulsechat/internal/domain/chat"

	"github.com/google/uuid"
)

// StartChatRequest is used for POST /chats
type StartChatRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// ChatView is a chat row seen from one participant's side: the peer resolved
// and the per-viewer counters surfaced.
type ChatView struct {
	ID            uuid.UUID     `json:"id"`
	PeerID        uuid.UUID     `json:"peer_id"`
	LastMessageID uuid.NullUUID `json:"last_message_id,omitempty"`
	UnreadCount   int           `json:"unread_count"`
	Archived      bool          `json:"archived"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func NewChatView(c chat.Chat, viewerID uuid.UUID) ChatView {
	return ChatView{
		ID:            c.ID,
		PeerID:        c.Other(viewerID),
		LastMessageID: c.LastMessageID,
		UnreadCount:   c.UnreadFor(viewerID),
		Archived:      c.ArchivedFor(viewerID),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
