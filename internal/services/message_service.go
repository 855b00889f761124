package services

import (
	"context"
	"time"

	"pulsechat/internal/domain/chat"
	"pulsechat/internal/domain/message"
	"pulsechat/internal/events"
	"pulsechat/internal/fanout"
	"pulsechat/internal/repository"
	chat_errors "pulsechat/pkg/errors"
	"pulsechat/pkg/logger"

	"github.com/google/uuid"
)

// MessageService is the messaging engine: it orchestrates the chat directory,
// the message store and presence, then triggers realtime fanout. All durable
// mutations happen before any fanout; a fanout failure never surfaces.
type MessageService struct {
	chats          repository.ChatRepository
	messages       repository.MessageRepository
	users          repository.UserRepository
	registry       *PresenceRegistry
	scheduler      *DeliveryScheduler
	publisher      fanout.Publisher
	log            *logger.Logger
	deliveredDelay time.Duration
}

func NewMessageService(
	chats repository.ChatRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	registry *PresenceRegistry,
	scheduler *DeliveryScheduler,
	publisher fanout.Publisher,
	log *logger.Logger,
	deliveredDelay time.Duration,
) *MessageService {
	if deliveredDelay <= 0 {
		deliveredDelay = 2 * time.Second
	}
	return &MessageService{
		chats:          chats,
		messages:       messages,
		users:          users,
		registry:       registry,
		scheduler:      scheduler,
		publisher:      publisher,
		log:            log,
		deliveredDelay: deliveredDelay,
	}
}

// Send validates the payload, resolves the pair's chat, persists the message
// and updates the chat bookkeeping, then fans out newMessage to the recipient
// and a messageSent confirmation to the sender.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID uuid.UUID, content message.Content) (message.Message, error) {
	return s.deliver(ctx, senderID, recipientID, content, uuid.NullUUID{})
}

func (s *MessageService) deliver(ctx context.Context, senderID, recipientID uuid.UUID, content message.Content, forwardedFrom uuid.NullUUID) (message.Message, error) {
	if senderID == recipientID {
		return message.Message{}, chat_errors.ErrInvalidInput
	}

	exists, err := s.users.Exists(ctx, recipientID)
	if err != nil {
		return message.Message{}, err
	}
	if !exists {
		return message.Message{}, chat_errors.ErrNotFound
	}

	c, err := s.chats.GetOrCreate(ctx, senderID, recipientID)
	if err != nil {
		return message.Message{}, err
	}

	m, err := message.New(c.ID, senderID, content)
	if err != nil {
		return message.Message{}, err
	}
	m.ForwardedFromID = forwardedFrom

	if err := s.messages.Create(ctx, &m); err != nil {
		return message.Message{}, err
	}
	if err := s.chats.RecordMessage(ctx, c.ID, m.ID, recipientID); err != nil {
		return message.Message{}, err
	}

	s.publisher.Publish(ctx, recipientID, events.EventTypeMessageNew, events.MessagePayload{Message: m})
	s.publisher.Publish(ctx, senderID, events.EventTypeMessageSent, events.MessagePayload{Message: m})

	s.scheduleDelivered(m, senderID, recipientID)
	return m, nil
}

// scheduleDelivered arms the best-effort upgrade to delivered for an online
// recipient. The task is tied to one of the recipient's live sessions; if
// that session goes away first, the message simply stays at sent until the
// recipient next reads the chat.
func (s *MessageService) scheduleDelivered(m message.Message, senderID, recipientID uuid.UUID) {
	sessionID, online := s.registry.AnySession(recipientID)
	if !online {
		return
	}
	s.scheduler.Schedule(sessionID, s.deliveredDelay, func() {
		ctx := context.Background()
		// The session can drop between the lookup above and the timer
		// firing; an offline recipient keeps the message at sent.
		if !s.registry.IsOnline(recipientID) {
			return
		}
		advanced, err := s.messages.AdvanceStatus(ctx, m.ID, message.StatusDelivered)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("delivered upgrade for message %s: %v", m.ID, err)
			}
			return
		}
		if advanced {
			s.publisher.Publish(ctx, senderID, events.EventTypeMessageStatus, events.StatusPayload{
				MessageID: m.ID,
				ChatID:    m.ChatID,
				Status:    message.StatusDelivered,
			})
		}
	})
}

// Forward copies body and media from an original message to each recipient
// independently. An unknown recipient is skipped, not fatal; the returned
// slice holds only the messages that were created.
func (s *MessageService) Forward(ctx context.Context, senderID, originalID uuid.UUID, recipientIDs []uuid.UUID) ([]message.Message, error) {
	orig, err := s.messages.GetByID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	origChat, err := s.chats.GetByID(ctx, orig.ChatID)
	if err != nil {
		return nil, err
	}
	if !origChat.HasParticipant(senderID) {
		return nil, chat_errors.ErrForbidden
	}
	if orig.DeletedForAll {
		return nil, chat_errors.ErrInvalidInput
	}

	content := orig.Content()
	forwardedFrom := uuid.NullUUID{UUID: orig.ID, Valid: true}

	created := make([]message.Message, 0, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		m, err := s.deliver(ctx, senderID, recipientID, content, forwardedFrom)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("forward %s to %s skipped: %v", originalID, recipientID, err)
			}
			continue
		}
		created = append(created, m)
	}
	return created, nil
}

// GetHistory returns the conversation between the current user and the other
// user oldest-first, hiding messages the viewer deleted for themselves. As a
// side effect it marks the chat read for the viewer: statuses advance, the
// unread counter resets and each distinct prior sender gets exactly one
// messagesRead event.
func (s *MessageService) GetHistory(ctx context.Context, currentUserID, otherUserID uuid.UUID) ([]message.Message, error) {
	c, err := s.chats.GetByPair(ctx, currentUserID, otherUserID)
	if err != nil {
		if err == chat_errors.ErrNotFound {
			return []message.Message{}, nil
		}
		return nil, err
	}

	if err := s.markRead(ctx, c, currentUserID); err != nil {
		return nil, err
	}
	return s.messages.History(ctx, c.ID, currentUserID)
}

// MarkRead marks the chat with the other user read for the reader; used by
// the realtime messageRead command.
func (s *MessageService) MarkRead(ctx context.Context, readerID, otherUserID uuid.UUID) error {
	c, err := s.chats.GetByPair(ctx, readerID, otherUserID)
	if err != nil {
		if err == chat_errors.ErrNotFound {
			return nil
		}
		return err
	}
	return s.markRead(ctx, c, readerID)
}

func (s *MessageService) markRead(ctx context.Context, c chat.Chat, readerID uuid.UUID) error {
	senders, err := s.messages.MarkChatRead(ctx, c.ID, readerID)
	if err != nil {
		return err
	}
	if err := s.chats.ResetUnread(ctx, c.ID, readerID); err != nil {
		return err
	}
	for _, senderID := range senders {
		s.publisher.Publish(ctx, senderID, events.EventTypeMessagesRead, events.ReadPayload{
			ChatID:   c.ID,
			ReaderID: readerID,
		})
	}
	return nil
}

// SetStatus advances a message's delivery status on behalf of the actor. A
// sender cannot self-report delivery or read of their own message.
func (s *MessageService) SetStatus(ctx context.Context, actorID, messageID uuid.UUID, to message.Status) error {
	if to != message.StatusDelivered && to != message.StatusRead {
		return chat_errors.ErrInvalidInput
	}

	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if m.SenderID == actorID {
		return chat_errors.ErrForbidden
	}
	c, err := s.chats.GetByID(ctx, m.ChatID)
	if err != nil {
		return err
	}
	if !c.HasParticipant(actorID) {
		return chat_errors.ErrForbidden
	}

	advanced, err := s.messages.AdvanceStatus(ctx, messageID, to)
	if err != nil {
		return err
	}
	if advanced {
		s.publisher.Publish(ctx, m.SenderID, events.EventTypeMessageStatus, events.StatusPayload{
			MessageID: m.ID,
			ChatID:    m.ChatID,
			Status:    to,
		})
	}
	return nil
}

// AddReaction replaces any prior reaction from the same user and notifies
// every participant, the actor included, so the actor's other sessions stay
// in sync.
func (s *MessageService) AddReaction(ctx context.Context, actorID, messageID uuid.UUID, emoji string) error {
	if emoji == "" {
		return chat_errors.ErrInvalidInput
	}

	m, c, err := s.messageInChat(ctx, actorID, messageID)
	if err != nil {
		return err
	}

	if err := s.messages.UpsertReaction(ctx, &message.MessageReaction{
		MessageID: messageID,
		UserID:    actorID,
		Emoji:     emoji,
	}); err != nil {
		return err
	}

	payload := events.ReactionPayload{MessageID: m.ID, ChatID: c.ID, UserID: actorID, Emoji: emoji}
	s.publisher.Publish(ctx, c.ParticipantA, events.EventTypeReactionAdded, payload)
	s.publisher.Publish(ctx, c.ParticipantB, events.EventTypeReactionAdded, payload)
	return nil
}

// RemoveReaction is idempotent: removing an absent reaction succeeds.
func (s *MessageService) RemoveReaction(ctx context.Context, actorID, messageID uuid.UUID) error {
	m, c, err := s.messageInChat(ctx, actorID, messageID)
	if err != nil {
		return err
	}

	if err := s.messages.RemoveReaction(ctx, messageID, actorID); err != nil {
		return err
	}

	payload := events.ReactionPayload{MessageID: m.ID, ChatID: c.ID, UserID: actorID}
	s.publisher.Publish(ctx, c.ParticipantA, events.EventTypeReactionRemoved, payload)
	s.publisher.Publish(ctx, c.ParticipantB, events.EventTypeReactionRemoved, payload)
	return nil
}

// Delete hides a message. With forEveryone only the original sender may
// scrub it globally and both participants are notified; otherwise only the
// actor's own view changes and only the actor's channel hears about it.
func (s *MessageService) Delete(ctx context.Context, actorID, messageID uuid.UUID, forEveryone bool) error {
	m, c, err := s.messageInChat(ctx, actorID, messageID)
	if err != nil {
		return err
	}

	if forEveryone {
		if m.SenderID != actorID {
			return chat_errors.ErrForbidden
		}
		if err := s.messages.ScrubForEveryone(ctx, messageID); err != nil {
			return err
		}
		payload := events.DeletedPayload{MessageID: m.ID, ChatID: c.ID, DeleteForEveryone: true}
		s.publisher.Publish(ctx, c.ParticipantA, events.EventTypeMessageDeleted, payload)
		s.publisher.Publish(ctx, c.ParticipantB, events.EventTypeMessageDeleted, payload)
		return nil
	}

	if err := s.messages.MarkDeletedFor(ctx, messageID, actorID); err != nil {
		return err
	}
	s.publisher.Publish(ctx, actorID, events.EventTypeMessageDeleted, events.DeletedPayload{
		MessageID: m.ID,
		ChatID:    c.ID,
	})
	return nil
}

func (s *MessageService) messageInChat(ctx context.Context, actorID, messageID uuid.UUID) (message.Message, chat.Chat, error) {
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return message.Message{}, chat.Chat{}, err
	}
	c, err := s.chats.GetByID(ctx, m.ChatID)
	if err != nil {
		return message.Message{}, chat.Chat{}, err
	}
	if !c.HasParticipant(actorID) {
		return message.Message{}, chat.Chat{}, chat_errors.ErrForbidden
	}
	return m, c, nil
}
