package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"pulsechat/internal/domain/chat"
	"pulsechat/internal/domain/contact"
	"pulsechat/internal/domain/message"
	"pulsechat/internal/domain/user"
	chat_errors "pulsechat/pkg/errors"

	"github.com/google/uuid"
)

// In-memory repository fakes. They mirror what the Postgres-backed
// implementations guarantee, so the engine tests exercise real semantics
// without a database.

type fakeChatRepo struct {
	mu    sync.Mutex
	chats map[uuid.UUID]*chat.Chat
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[uuid.UUID]*chat.Chat)}
}

func (r *fakeChatRepo) GetOrCreate(ctx context.Context, a, b uuid.UUID) (chat.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pa, pb := chat.NormalizePair(a, b)
	for _, c := range r.chats {
		if c.ParticipantA == pa && c.ParticipantB == pb {
			return *c, nil
		}
	}
	now := time.Now()
	c := &chat.Chat{
		ID:           uuid.New(),
		ParticipantA: pa,
		ParticipantB: pb,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.chats[c.ID] = c
	return *c, nil
}

func (r *fakeChatRepo) GetByPair(ctx context.Context, a, b uuid.UUID) (chat.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pa, pb := chat.NormalizePair(a, b)
	for _, c := range r.chats {
		if c.ParticipantA == pa && c.ParticipantB == pb {
			return *c, nil
		}
	}
	return chat.Chat{}, chat_errors.ErrNotFound
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.chats[id]
	if !ok {
		return chat.Chat{}, chat_errors.ErrNotFound
	}
	return *c, nil
}

func (r *fakeChatRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []chat.Chat
	for _, c := range r.chats {
		if !c.HasParticipant(userID) || c.HiddenFor(userID) || c.ArchivedFor(userID) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeChatRepo) RecordMessage(ctx context.Context, chatID, messageID, recipientID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.chats[chatID]
	if !ok {
		return chat_errors.ErrNotFound
	}
	c.LastMessageID = uuid.NullUUID{UUID: messageID, Valid: true}
	if c.ParticipantA == recipientID {
		c.UnreadA++
	} else {
		c.UnreadB++
	}
	c.HiddenA = false
	c.HiddenB = false
	c.UpdatedAt = time.Now()
	return nil
}

func (r *fakeChatRepo) ResetUnread(ctx context.Context, chatID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.chats[chatID]
	if !ok {
		return chat_errors.ErrNotFound
	}
	if c.ParticipantA == userID {
		c.UnreadA = 0
	} else {
		c.UnreadB = 0
	}
	return nil
}

func (r *fakeChatRepo) SetHidden(ctx context.Context, chatID, userID uuid.UUID, hidden bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.chats[chatID]
	if !ok {
		return chat_errors.ErrNotFound
	}
	if c.ParticipantA == userID {
		c.HiddenA = hidden
	} else {
		c.HiddenB = hidden
	}
	return nil
}

func (r *fakeChatRepo) SetArchived(ctx context.Context, chatID, userID uuid.UUID, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.chats[chatID]
	if !ok {
		return chat_errors.ErrNotFound
	}
	if c.ParticipantA == userID {
		c.ArchivedA = archived
	} else {
		c.ArchivedB = archived
	}
	return nil
}

func (r *fakeChatRepo) PeersOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []uuid.UUID
	for _, c := range r.chats {
		if c.HasParticipant(userID) {
			out = append(out, c.Other(userID))
		}
	}
	return out, nil
}

type reactionKey struct {
	messageID uuid.UUID
	userID    uuid.UUID
}

type fakeMessageRepo struct {
	mu        sync.Mutex
	order     []uuid.UUID
	messages  map[uuid.UUID]*message.Message
	reactions map[reactionKey]message.MessageReaction
	deleted   map[reactionKey]bool
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages:  make(map[uuid.UUID]*message.Message),
		reactions: make(map[reactionKey]message.MessageReaction),
		deleted:   make(map[reactionKey]bool),
	}
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *message.Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	stored := *m
	r.messages[m.ID] = &stored
	r.order = append(r.order, m.ID)
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[id]
	if !ok {
		return message.Message{}, chat_errors.ErrNotFound
	}
	return *m, nil
}

func (r *fakeMessageRepo) History(ctx context.Context, chatID, viewerID uuid.UUID) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []message.Message
	for _, id := range r.order {
		m := r.messages[id]
		if m.ChatID != chatID {
			continue
		}
		if !m.DeletedForAll && r.deleted[reactionKey{id, viewerID}] {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMessageRepo) AdvanceStatus(ctx context.Context, messageID uuid.UUID, to message.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[messageID]
	if !ok {
		return false, chat_errors.ErrNotFound
	}
	if to.Rank() <= m.Status.Rank() {
		return false, nil
	}
	m.Status = to
	return true, nil
}

func (r *fakeMessageRepo) MarkChatRead(ctx context.Context, chatID, readerID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[uuid.UUID]struct{})
	var senders []uuid.UUID
	for _, id := range r.order {
		m := r.messages[id]
		if m.ChatID != chatID || m.SenderID == readerID || m.Status == message.StatusRead {
			continue
		}
		m.Status = message.StatusRead
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senders = append(senders, m.SenderID)
		}
	}
	return senders, nil
}

func (r *fakeMessageRepo) UpsertReaction(ctx context.Context, reaction *message.MessageReaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reactions[reactionKey{reaction.MessageID, reaction.UserID}] = *reaction
	return nil
}

func (r *fakeMessageRepo) RemoveReaction(ctx context.Context, messageID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.reactions, reactionKey{messageID, userID})
	return nil
}

func (r *fakeMessageRepo) MarkDeletedFor(ctx context.Context, messageID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deleted[reactionKey{messageID, userID}] = true
	return nil
}

func (r *fakeMessageRepo) ScrubForEveryone(ctx context.Context, messageID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[messageID]
	if !ok {
		return chat_errors.ErrNotFound
	}
	m.Scrub()
	return nil
}

func (r *fakeMessageRepo) reaction(messageID, userID uuid.UUID) (message.MessageReaction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reaction, ok := r.reactions[reactionKey{messageID, userID}]
	return reaction, ok
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeUserRepo(users ...user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*user.User)}
	for _, u := range users {
		stored := u
		r.users[u.ID] = &stored
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.User{}, chat_errors.ErrNotFound
	}
	return *u, nil
}

func (r *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Phone == phone {
			return *u, nil
		}
	}
	return user.User{}, chat_errors.ErrNotFound
}

func (r *fakeUserRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) SetOnline(ctx context.Context, id uuid.UUID, online bool, lastSeen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return chat_errors.ErrNotFound
	}
	u.Online = online
	u.LastSeen = lastSeen
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok {
		return chat_errors.ErrNotFound
	}
	*stored = u
	return nil
}

func contactOf(ownerID, targetID uuid.UUID) contact.Contact {
	return contact.Contact{OwnerID: ownerID, TargetID: targetID, Alias: "saved"}
}

type contactKey struct {
	ownerID  uuid.UUID
	targetID uuid.UUID
}

type fakeContactRepo struct {
	mu       sync.Mutex
	contacts map[contactKey]contact.Contact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[contactKey]contact.Contact)}
}

func (r *fakeContactRepo) Upsert(ctx context.Context, c *contact.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.contacts[contactKey{c.OwnerID, c.TargetID}] = *c
	return nil
}

func (r *fakeContactRepo) Get(ctx context.Context, ownerID, targetID uuid.UUID) (contact.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contacts[contactKey{ownerID, targetID}]
	if !ok {
		return contact.Contact{}, chat_errors.ErrNotFound
	}
	return c, nil
}

func (r *fakeContactRepo) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]contact.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []contact.Contact
	for key, c := range r.contacts {
		if key.ownerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeContactRepo) Remove(ctx context.Context, ownerID, targetID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.contacts, contactKey{ownerID, targetID})
	return nil
}

func (r *fakeContactRepo) Exists(ctx context.Context, ownerID, targetID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.contacts[contactKey{ownerID, targetID}]
	return ok, nil
}

// recordingPublisher captures fanout instead of delivering it.
type recordedEvent struct {
	UserID    uuid.UUID
	EventType string
	Payload   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, userID uuid.UUID, eventType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{UserID: userID, EventType: eventType, Payload: payload})
}

func (p *recordingPublisher) all() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]recordedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *recordingPublisher) count(userID uuid.UUID, eventType string) int {
	n := 0
	for _, e := range p.all() {
		if e.UserID == userID && e.EventType == eventType {
			n++
		}
	}
	return n
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// fakeMirror is an in-memory stand-in for the Redis presence mirror. Setting
// fail makes every call error, simulating a mirror outage.
type fakeMirror struct {
	mu       sync.Mutex
	online   map[uuid.UUID]bool
	lastSeen map[uuid.UUID]time.Time
	typing   map[string]bool
	fail     error
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{
		online:   make(map[uuid.UUID]bool),
		lastSeen: make(map[uuid.UUID]time.Time),
		typing:   make(map[string]bool),
	}
}

func typingKey(from, to uuid.UUID) string {
	return from.String() + ":" + to.String()
}

func (m *fakeMirror) SetOnline(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.online[userID] = true
	m.lastSeen[userID] = time.Now()
	return nil
}

func (m *fakeMirror) SetOffline(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	delete(m.online, userID)
	m.lastSeen[userID] = time.Now()
	return nil
}

func (m *fakeMirror) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	return m.online[userID], nil
}

func (m *fakeMirror) LastSeen(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return time.Time{}, m.fail
	}
	return m.lastSeen[userID], nil
}

func (m *fakeMirror) TrackTyping(ctx context.Context, from, to uuid.UUID, typing bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if typing {
		m.typing[typingKey(from, to)] = true
	} else {
		delete(m.typing, typingKey(from, to))
	}
	return nil
}

func (m *fakeMirror) IsTyping(ctx context.Context, from, to uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	return m.typing[typingKey(from, to)], nil
}
