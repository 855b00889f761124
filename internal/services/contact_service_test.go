package services

import (
	"context"
	"errors"
	"testing"

	"pulsechat/internal/domain/user"
	chat_errors "pulsechat/pkg/errors"

	"github.com/google/uuid"
)

func TestSaveContact(t *testing.T) {
	alice, bob := testUsers()
	service := NewContactService(newFakeContactRepo(), newFakeUserRepo(alice, bob))
	ctx := context.Background()

	saved, err := service.Save(ctx, alice.ID, bob.ID, "Bobby")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Alias != "Bobby" {
		t.Errorf("alias = %q", saved.Alias)
	}

	// Saving again renames in place.
	renamed, err := service.Save(ctx, alice.ID, bob.ID, "Robert")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Alias != "Robert" {
		t.Errorf("alias after rename = %q", renamed.Alias)
	}

	items, err := service.List(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("list len = %d, want 1", len(items))
	}
	if items[0].Alias != "Robert" {
		t.Errorf("listed alias = %q, want Robert", items[0].Alias)
	}
}

func TestSaveContactRejections(t *testing.T) {
	alice, bob := testUsers()
	service := NewContactService(newFakeContactRepo(), newFakeUserRepo(alice, bob))
	ctx := context.Background()

	tests := []struct {
		name    string
		owner   uuid.UUID
		target  uuid.UUID
		alias   string
		wantErr error
	}{
		{"empty alias", alice.ID, bob.ID, "", chat_errors.ErrInvalidInput},
		{"self contact", alice.ID, alice.ID, "Me", chat_errors.ErrInvalidInput},
		{"unknown target", alice.ID, uuid.New(), "Ghost", chat_errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.Save(ctx, tt.owner, tt.target, tt.alias); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRemoveContactIdempotent(t *testing.T) {
	alice, bob := testUsers()
	service := NewContactService(newFakeContactRepo(), newFakeUserRepo(alice, bob))
	ctx := context.Background()

	if _, err := service.Save(ctx, alice.ID, bob.ID, "Bobby"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := service.Remove(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := service.Remove(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("second remove: %v", err)
	}

	items, _ := service.List(ctx, alice.ID)
	if len(items) != 0 {
		t.Errorf("list len after remove = %d, want 0", len(items))
	}
}

func TestDisplayNameFallbackChain(t *testing.T) {
	owner := user.User{ID: uuid.New(), Phone: "+15550000001"}
	named := user.User{ID: uuid.New(), Phone: "+15550000002", DisplayName: "Dana"}
	unnamed := user.User{ID: uuid.New(), Phone: "+15550000003"}
	service := NewContactService(newFakeContactRepo(), newFakeUserRepo(owner, named, unnamed))
	ctx := context.Background()

	if _, err := service.Save(ctx, owner.ID, named.ID, "Work Dana"); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := service.DisplayNameFor(ctx, owner.ID, named)
	if err != nil {
		t.Fatalf("display name: %v", err)
	}
	if got != "Work Dana" {
		t.Errorf("aliased name = %q, want Work Dana", got)
	}

	// No alias: the target's own display name.
	got, err = service.DisplayNameFor(ctx, uuid.New(), named)
	if err != nil {
		t.Fatalf("display name: %v", err)
	}
	if got != "Dana" {
		t.Errorf("unaliased name = %q, want Dana", got)
	}

	// No alias and no display name: fall back to the phone number.
	got, err = service.DisplayNameFor(ctx, owner.ID, unnamed)
	if err != nil {
		t.Fatalf("display name: %v", err)
	}
	if got != unnamed.Phone {
		t.Errorf("fallback name = %q, want %q", got, unnamed.Phone)
	}
}
