package services

import (
	"context"
	"time"

	"pulsechat/internal/domain/user"
	"pulsechat/internal/events"
	"pulsechat/internal/fanout"
	"pulsechat/internal/repository"
	"pulsechat/pkg/logger"

	"github.com/google/uuid"
)

// PresenceMirror is the cross-process presence view, backed by Redis in
// production. Every method is best-effort: a mirror error degrades to the
// local registry's answer, never to a failed request.
type PresenceMirror interface {
	SetOnline(ctx context.Context, userID uuid.UUID) error
	SetOffline(ctx context.Context, userID uuid.UUID) error
	IsOnline(ctx context.Context, userID uuid.UUID) (bool, error)
	LastSeen(ctx context.Context, userID uuid.UUID) (time.Time, error)
	TrackTyping(ctx context.Context, from, to uuid.UUID, typing bool) error
	IsTyping(ctx context.Context, from, to uuid.UUID) (bool, error)
}

// PresenceService handles connect/disconnect transitions and the presence
// broadcast protocol. The contact set for a broadcast is recomputed from the
// chat directory on every transition rather than cached; a participant scan
// is cheaper than a stale-cache bug.
type PresenceService struct {
	registry  *PresenceRegistry
	scheduler *DeliveryScheduler
	users     repository.UserRepository
	chats     repository.ChatRepository
	contacts  repository.ContactRepository
	store     PresenceMirror
	publisher fanout.Publisher
	log       *logger.Logger
}

func NewPresenceService(
	registry *PresenceRegistry,
	scheduler *DeliveryScheduler,
	users repository.UserRepository,
	chats repository.ChatRepository,
	contacts repository.ContactRepository,
	store PresenceMirror,
	publisher fanout.Publisher,
	log *logger.Logger,
) *PresenceService {
	return &PresenceService{
		registry:  registry,
		scheduler: scheduler,
		users:     users,
		chats:     chats,
		contacts:  contacts,
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// Connect registers a session under the user's channel. Only the user's
// first live connection flips the online flag and broadcasts the transition;
// additional connections just join the fanout set.
func (s *PresenceService) Connect(ctx context.Context, userID uuid.UUID, sessionID string) error {
	first := s.registry.Connect(userID, sessionID)
	if !first {
		return nil
	}

	now := time.Now()
	if err := s.users.SetOnline(ctx, userID, true, now); err != nil {
		return err
	}
	s.mirror(ctx, userID, true)
	s.broadcastStatus(ctx, userID, true, now)
	return nil
}

// Disconnect removes a session. A stale disconnect racing a reconnect is a
// no-op: only the session that is still registered can be removed, and only
// the removal of the last session marks the user offline.
func (s *PresenceService) Disconnect(ctx context.Context, userID uuid.UUID, sessionID string) error {
	last, known := s.registry.Disconnect(userID, sessionID)
	if !known {
		return nil
	}
	s.scheduler.CancelSession(sessionID)
	if !last {
		return nil
	}

	now := time.Now()
	if err := s.users.SetOnline(ctx, userID, false, now); err != nil {
		return err
	}
	s.mirror(ctx, userID, false)
	s.broadcastStatus(ctx, userID, false, now)
	return nil
}

// IsOnline answers from the local registry first and falls back to the
// Redis mirror, which covers sessions held by other replicas.
func (s *PresenceService) IsOnline(ctx context.Context, userID uuid.UUID) bool {
	if s.registry.IsOnline(userID) {
		return true
	}
	if s.store == nil {
		return false
	}
	online, err := s.store.IsOnline(ctx, userID)
	if err != nil {
		if s.log != nil {
			s.log.Errorf("presence: mirror read for %s: %v", userID, err)
		}
		return false
	}
	return online
}

// LastSeen prefers the mirror's timestamp, written on every transition by
// whichever replica owns the socket, over the persisted fallback.
func (s *PresenceService) LastSeen(ctx context.Context, userID uuid.UUID, fallback time.Time) time.Time {
	if s.store == nil {
		return fallback
	}
	at, err := s.store.LastSeen(ctx, userID)
	if err != nil || at.IsZero() {
		return fallback
	}
	return at
}

// Typing forwards a transient typing indicator to the named recipient's
// channel; nothing is persisted and no chat has to exist. Clients re-send
// typing.start as a keepalive while the composer stays open, so a start that
// is already tracked only refreshes the TTL instead of re-announcing.
func (s *PresenceService) Typing(ctx context.Context, fromUserID, toUserID uuid.UUID, typing bool) {
	if s.store != nil {
		if typing {
			if active, err := s.store.IsTyping(ctx, fromUserID, toUserID); err == nil && active {
				if err := s.store.TrackTyping(ctx, fromUserID, toUserID, true); err != nil && s.log != nil {
					s.log.Errorf("presence: typing mirror for %s: %v", fromUserID, err)
				}
				return
			}
		}
		if err := s.store.TrackTyping(ctx, fromUserID, toUserID, typing); err != nil && s.log != nil {
			s.log.Errorf("presence: typing mirror for %s: %v", fromUserID, err)
		}
	}

	eventType := events.EventTypeTypingStarted
	if !typing {
		eventType = events.EventTypeTypingStopped
	}
	s.publisher.Publish(ctx, toUserID, eventType, events.TypingPayload{FromUserID: fromUserID})
}

// LastSeenVisible applies the target's last-seen privacy setting to a
// requester: everyone, only the target's contacts, or nobody.
func (s *PresenceService) LastSeenVisible(ctx context.Context, requesterID uuid.UUID, target user.User) (bool, error) {
	if requesterID == target.ID {
		return true, nil
	}
	switch target.LastSeenPrivacy {
	case user.PrivacyNobody:
		return false, nil
	case user.PrivacyContacts:
		return s.contacts.Exists(ctx, target.ID, requesterID)
	default:
		return true, nil
	}
}

func (s *PresenceService) broadcastStatus(ctx context.Context, userID uuid.UUID, online bool, at time.Time) {
	peers, err := s.chats.PeersOf(ctx, userID)
	if err != nil {
		if s.log != nil {
			s.log.Errorf("presence: peer scan for %s: %v", userID, err)
		}
		return
	}

	payload := events.PresencePayload{UserID: userID, Online: online, LastSeen: at}
	for _, peerID := range peers {
		s.publisher.Publish(ctx, peerID, events.EventTypeUserStatusChange, payload)
	}
}

func (s *PresenceService) mirror(ctx context.Context, userID uuid.UUID, online bool) {
	if s.store == nil {
		return
	}
	var err error
	if online {
		err = s.store.SetOnline(ctx, userID)
	} else {
		err = s.store.SetOffline(ctx, userID)
	}
	if err != nil && s.log != nil {
		s.log.Errorf("presence: redis mirror for %s: %v", userID, err)
	}
}
