package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pulsechat/internal/domain/user"
	"pulsechat/internal/events"
	chat_errors "pulsechat/pkg/errors"

	"github.com/google/uuid"
)

type userFixture struct {
	service   *UserService
	users     *fakeUserRepo
	chats     *fakeChatRepo
	contacts  *fakeContactRepo
	publisher *recordingPublisher
}

func newUserFixture(t *testing.T, users ...user.User) *userFixture {
	t.Helper()

	f := &userFixture{
		users:     newFakeUserRepo(users...),
		chats:     newFakeChatRepo(),
		contacts:  newFakeContactRepo(),
		publisher: &recordingPublisher{},
	}
	scheduler := NewDeliveryScheduler()
	t.Cleanup(scheduler.Stop)
	presence := NewPresenceService(NewPresenceRegistry(), scheduler, f.users, f.chats, f.contacts, nil, f.publisher, nil)
	f.service = NewUserService(f.users, f.chats, presence, f.publisher)
	return f
}

func TestGetAppliesLastSeenPrivacy(t *testing.T) {
	lastSeen := time.Now().Add(-time.Hour)
	target := user.User{
		ID:              uuid.New(),
		Phone:           "+15550000009",
		LastSeen:        lastSeen,
		LastSeenPrivacy: user.PrivacyNobody,
	}
	requester := user.User{ID: uuid.New(), Phone: "+15550000010"}
	f := newUserFixture(t, target, requester)
	ctx := context.Background()

	got, err := f.service.Get(ctx, requester.ID, target.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.LastSeen.IsZero() {
		t.Errorf("last seen leaked through nobody privacy: %v", got.LastSeen)
	}

	// The profile owner still sees their own timestamp.
	self, err := f.service.Get(ctx, target.ID, target.ID)
	if err != nil {
		t.Fatalf("self get: %v", err)
	}
	if !self.LastSeen.Equal(lastSeen) {
		t.Errorf("self last seen = %v, want %v", self.LastSeen, lastSeen)
	}
}

func TestGetContactsPrivacy(t *testing.T) {
	target := user.User{
		ID:              uuid.New(),
		Phone:           "+15550000009",
		LastSeen:        time.Now(),
		LastSeenPrivacy: user.PrivacyContacts,
	}
	listed := user.User{ID: uuid.New(), Phone: "+15550000010"}
	stranger := user.User{ID: uuid.New(), Phone: "+15550000011"}
	f := newUserFixture(t, target, listed, stranger)
	ctx := context.Background()

	// Visibility follows the target's contact list, not the requester's.
	saved := contactOf(target.ID, listed.ID)
	if err := f.contacts.Upsert(ctx, &saved); err != nil {
		t.Fatalf("contact: %v", err)
	}

	got, err := f.service.Get(ctx, listed.ID, target.ID)
	if err != nil {
		t.Fatalf("get listed: %v", err)
	}
	if got.LastSeen.IsZero() {
		t.Error("contact cannot see last seen")
	}

	got, err = f.service.Get(ctx, stranger.ID, target.ID)
	if err != nil {
		t.Fatalf("get stranger: %v", err)
	}
	if !got.LastSeen.IsZero() {
		t.Error("stranger sees last seen under contacts privacy")
	}
}

func TestFindByPhone(t *testing.T) {
	target := user.User{ID: uuid.New(), Phone: "+15550000009", DisplayName: "Dana"}
	requester := user.User{ID: uuid.New(), Phone: "+15550000010"}
	f := newUserFixture(t, target, requester)
	ctx := context.Background()

	got, err := f.service.FindByPhone(ctx, requester.ID, target.Phone)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != target.ID {
		t.Errorf("lookup resolved %s, want %s", got.ID, target.ID)
	}

	if _, err := f.service.FindByPhone(ctx, requester.ID, "+15550099999"); !errors.Is(err, chat_errors.ErrNotFound) {
		t.Errorf("unknown phone err = %v, want not found", err)
	}
}

func TestUpdateProfileBroadcastsToPeers(t *testing.T) {
	alice, bob := testUsers()
	f := newUserFixture(t, alice, bob)
	ctx := context.Background()

	if _, err := f.chats.GetOrCreate(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("chat: %v", err)
	}

	updated, err := f.service.UpdateProfile(ctx, alice.ID, ProfileUpdate{
		DisplayName:     "Alice",
		About:           "around",
		LastSeenPrivacy: user.PrivacyContacts,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DisplayName != "Alice" || updated.LastSeenPrivacy != user.PrivacyContacts {
		t.Errorf("profile not applied: %+v", updated)
	}

	stored, _ := f.users.GetByID(ctx, alice.ID)
	if stored.About != "around" {
		t.Errorf("about not persisted: %q", stored.About)
	}

	if n := f.publisher.count(bob.ID, events.EventTypeProfileUpdated); n != 1 {
		t.Errorf("profile.updated to peer = %d, want 1", n)
	}
	if n := f.publisher.count(alice.ID, events.EventTypeProfileUpdated); n != 1 {
		t.Errorf("profile.updated to self = %d, want 1", n)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	alice, _ := testUsers()
	f := newUserFixture(t, alice)
	ctx := context.Background()

	if _, err := f.service.UpdateProfile(ctx, alice.ID, ProfileUpdate{DisplayName: ""}); !errors.Is(err, chat_errors.ErrInvalidInput) {
		t.Errorf("empty name err = %v, want invalid input", err)
	}
	if _, err := f.service.UpdateProfile(ctx, alice.ID, ProfileUpdate{
		DisplayName:     "Alice",
		LastSeenPrivacy: user.LastSeenPrivacy("friends"),
	}); !errors.Is(err, chat_errors.ErrInvalidInput) {
		t.Errorf("bogus privacy err = %v, want invalid input", err)
	}

	// Leaving the privacy field empty keeps the current setting.
	if _, err := f.service.UpdateProfile(ctx, alice.ID, ProfileUpdate{DisplayName: "Alice"}); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestGetMergesMirrorPresence(t *testing.T) {
	stale := time.Now().Add(-2 * time.Hour)
	target := user.User{
		ID:              uuid.New(),
		Phone:           "+15550000021",
		LastSeen:        stale,
		LastSeenPrivacy: user.PrivacyEveryone,
	}
	requester := user.User{ID: uuid.New(), Phone: "+15550000022"}

	users := newFakeUserRepo(target, requester)
	chats := newFakeChatRepo()
	publisher := &recordingPublisher{}
	scheduler := NewDeliveryScheduler()
	t.Cleanup(scheduler.Stop)
	mirror := newFakeMirror()
	presence := NewPresenceService(NewPresenceRegistry(), scheduler, users, chats, newFakeContactRepo(), mirror, publisher, nil)
	svc := NewUserService(users, chats, presence, publisher)
	ctx := context.Background()

	// Another replica owns target's socket; only the mirror knows.
	if err := mirror.SetOnline(ctx, target.ID); err != nil {
		t.Fatalf("mirror: %v", err)
	}

	got, err := svc.Get(ctx, requester.ID, target.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Online {
		t.Error("mirror-online user reported offline")
	}
	if got.LastSeen.Equal(stale) {
		t.Error("stale persisted last seen preferred over the mirror")
	}
}
