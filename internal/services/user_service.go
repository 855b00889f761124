package services

import (
	"context"
	"time"

	"pulsechat/internal/domain/user"
	"pulsechat/internal/events"
	"pulsechat/internal/fanout"
	"pulsechat/internal/repository"
	chat_errors "pulsechat/pkg/errors"

	"github.com/google/uuid"
)

// UserService reads profiles and applies the last-seen privacy filter.
// Identity creation and authentication live outside this service.
type UserService struct {
	users     repository.UserRepository
	chats     repository.ChatRepository
	presence  *PresenceService
	publisher fanout.Publisher
}

func NewUserService(users repository.UserRepository, chats repository.ChatRepository, presence *PresenceService, publisher fanout.Publisher) *UserService {
	return &UserService{users: users, chats: chats, presence: presence, publisher: publisher}
}

// Get returns the target user's profile with the last-seen timestamp blanked
// when the target's privacy setting hides it from the requester.
func (s *UserService) Get(ctx context.Context, requesterID, targetID uuid.UUID) (user.User, error) {
	u, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return user.User{}, err
	}

	// The persisted flags can lag when another replica owns the socket;
	// the presence view merges the local registry and the Redis mirror.
	if !u.Online {
		u.Online = s.presence.IsOnline(ctx, u.ID)
	}

	visible, err := s.presence.LastSeenVisible(ctx, requesterID, u)
	if err != nil {
		return user.User{}, err
	}
	if visible {
		u.LastSeen = s.presence.LastSeen(ctx, u.ID, u.LastSeen)
	} else {
		u.LastSeen = time.Time{}
	}
	return u, nil
}

func (s *UserService) FindByPhone(ctx context.Context, requesterID uuid.UUID, phone string) (user.User, error) {
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return user.User{}, err
	}
	return s.Get(ctx, requesterID, u.ID)
}

type ProfileUpdate struct {
	DisplayName     string
	About           string
	AvatarURL       string
	LastSeenPrivacy user.LastSeenPrivacy
}

// UpdateProfile persists the change and broadcasts profileUpdated to every
// chat peer plus the user's own channel, so their other sessions converge.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (user.User, error) {
	if upd.DisplayName == "" {
		return user.User{}, chat_errors.ErrInvalidInput
	}
	if upd.LastSeenPrivacy != "" && !upd.LastSeenPrivacy.Valid() {
		return user.User{}, chat_errors.ErrInvalidInput
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	u.DisplayName = upd.DisplayName
	u.About = upd.About
	u.AvatarURL = upd.AvatarURL
	if upd.LastSeenPrivacy != "" {
		u.LastSeenPrivacy = upd.LastSeenPrivacy
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return user.User{}, err
	}

	payload := events.ProfilePayload{
		UserID:      u.ID,
		DisplayName: u.DisplayName,
		About:       u.About,
		AvatarURL:   u.AvatarURL,
	}
	peers, err := s.chats.PeersOf(ctx, userID)
	if err == nil {
		for _, peerID := range peers {
			s.publisher.Publish(ctx, peerID, events.EventTypeProfileUpdated, payload)
		}
	}
	s.publisher.Publish(ctx, userID, events.EventTypeProfileUpdated, payload)
	return u, nil
}
