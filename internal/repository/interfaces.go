package repository

import (
	"context"
	"time"

	"pulsechat/internal/domain/chat"
	"pulsechat/internal/domain/contact"
	"pulsechat/internal/domain/message"
	"pulsechat/internal/domain/user"

	"github.com/google/uuid"
)

// ChatRepository is the chat directory: it maps an unordered pair of users to
// exactly one chat and owns the per-participant bookkeeping on it.
type ChatRepository interface {
	// GetOrCreate resolves the pair's chat, creating it when absent. Safe
	// under concurrent first-message races from both ends of the pair.
	GetOrCreate(ctx context.Context, a, b uuid.UUID) (chat.Chat, error)
	// GetByPair returns ErrNotFound when the pair has no chat yet.
	GetByPair(ctx context.Context, a, b uuid.UUID) (chat.Chat, error)
	GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error)
	// ListForUser returns the user's chats, excluding hidden and archived
	// ones, most recent activity first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error)
	// RecordMessage atomically sets the last-message pointer, increments the
	// recipient's unread counter by one and clears both hidden flags.
	RecordMessage(ctx context.Context, chatID, messageID, recipientID uuid.UUID) error
	ResetUnread(ctx context.Context, chatID, userID uuid.UUID) error
	SetHidden(ctx context.Context, chatID, userID uuid.UUID, hidden bool) error
	SetArchived(ctx context.Context, chatID, userID uuid.UUID, archived bool) error
	// PeersOf returns every other participant across all the user's chats.
	PeersOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// MessageRepository is the append-only message log with per-message mutable
// status, reaction and deletion state.
type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	// History returns the chat's messages ordered by creation time ascending,
	// excluding those the viewer deleted for themselves. Globally deleted
	// messages are returned (already scrubbed).
	History(ctx context.Context, chatID, viewerID uuid.UUID) ([]message.Message, error)
	// AdvanceStatus moves the status forward; an attempt to set a status not
	// strictly after the current one reports false with no error.
	AdvanceStatus(ctx context.Context, messageID uuid.UUID, to message.Status) (bool, error)
	// MarkChatRead advances every message in the chat not sent by the reader
	// to read and returns the distinct senders affected.
	MarkChatRead(ctx context.Context, chatID, readerID uuid.UUID) ([]uuid.UUID, error)
	// UpsertReaction replaces any prior reaction from the same user.
	UpsertReaction(ctx context.Context, r *message.MessageReaction) error
	// RemoveReaction is idempotent: removing an absent reaction succeeds.
	RemoveReaction(ctx context.Context, messageID, userID uuid.UUID) error
	// MarkDeletedFor adds the user to the message's per-viewer deletion set.
	MarkDeletedFor(ctx context.Context, messageID, userID uuid.UUID) error
	// ScrubForEveryone blanks body and media and sets the global deleted flag.
	ScrubForEveryone(ctx context.Context, messageID uuid.UUID) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByPhone(ctx context.Context, phone string) (user.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	SetOnline(ctx context.Context, id uuid.UUID, online bool, lastSeen time.Time) error
	UpdateProfile(ctx context.Context, u user.User) error
}

type ContactRepository interface {
	Upsert(ctx context.Context, c *contact.Contact) error
	Get(ctx context.Context, ownerID, targetID uuid.UUID) (contact.Contact, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]contact.Contact, error)
	Remove(ctx context.Context, ownerID, targetID uuid.UUID) error
	Exists(ctx context.Context, ownerID, targetID uuid.UUID) (bool, error)
}
