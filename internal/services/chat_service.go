package services

import (
	"context"

	"pulsechat/internal/domain/chat"
	"pulsechat/internal/repository"
	chat_errors "pulsechat/pkg/errors"

	"github.com/google/uuid"
)

// ChatService exposes the chat directory to the transport layer.
type ChatService struct {
	chats repository.ChatRepository
	users repository.UserRepository
}

func NewChatService(chats repository.ChatRepository, users repository.UserRepository) *ChatService {
	return &ChatService{chats: chats, users: users}
}

// Start resolves (or lazily creates) the chat between two users.
func (s *ChatService) Start(ctx context.Context, userID, otherUserID uuid.UUID) (chat.Chat, error) {
	if userID == otherUserID {
		return chat.Chat{}, chat_errors.ErrInvalidInput
	}
	exists, err := s.users.Exists(ctx, otherUserID)
	if err != nil {
		return chat.Chat{}, err
	}
	if !exists {
		return chat.Chat{}, chat_errors.ErrNotFound
	}
	return s.chats.GetOrCreate(ctx, userID, otherUserID)
}

// List returns the user's visible chats, most recent activity first. Hidden
// and archived chats are excluded by the directory itself.
func (s *ChatService) List(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	return s.chats.ListForUser(ctx, userID)
}

func (s *ChatService) Archive(ctx context.Context, userID, chatID uuid.UUID) error {
	return s.setArchived(ctx, userID, chatID, true)
}

func (s *ChatService) Unarchive(ctx context.Context, userID, chatID uuid.UUID) error {
	return s.setArchived(ctx, userID, chatID, false)
}

func (s *ChatService) setArchived(ctx context.Context, userID, chatID uuid.UUID, archived bool) error {
	c, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return err
	}
	if !c.HasParticipant(userID) {
		return chat_errors.ErrForbidden
	}
	return s.chats.SetArchived(ctx, chatID, userID, archived)
}

// Hide removes the chat from the user's list without touching its data; the
// next inbound or outbound message makes it reappear.
func (s *ChatService) Hide(ctx context.Context, userID, chatID uuid.UUID) error {
	c, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return err
	}
	if !c.HasParticipant(userID) {
		return chat_errors.ErrForbidden
	}
	return s.chats.SetHidden(ctx, chatID, userID, true)
}
