package services

import (
	"context"
	"errors"

	"pulsechat/internal/domain/contact"
	"pulsechat/internal/domain/user"
	"pulsechat/internal/repository"
	chat_errors "pulsechat/pkg/errors"

	"github.com/google/uuid"
)

// ContactService manages per-user display-name aliases for other users.
type ContactService struct {
	contacts repository.ContactRepository
	users    repository.UserRepository
}

func NewContactService(contacts repository.ContactRepository, users repository.UserRepository) *ContactService {
	return &ContactService{contacts: contacts, users: users}
}

// Save creates or renames the owner's alias for the target.
func (s *ContactService) Save(ctx context.Context, ownerID, targetID uuid.UUID, alias string) (contact.Contact, error) {
	if alias == "" || ownerID == targetID {
		return contact.Contact{}, chat_errors.ErrInvalidInput
	}
	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return contact.Contact{}, err
	}
	if !exists {
		return contact.Contact{}, chat_errors.ErrNotFound
	}

	c := contact.Contact{OwnerID: ownerID, TargetID: targetID, Alias: alias}
	if err := s.contacts.Upsert(ctx, &c); err != nil {
		return contact.Contact{}, err
	}
	return c, nil
}

func (s *ContactService) List(ctx context.Context, ownerID uuid.UUID) ([]contact.Contact, error) {
	return s.contacts.ListForOwner(ctx, ownerID)
}

func (s *ContactService) Remove(ctx context.Context, ownerID, targetID uuid.UUID) error {
	return s.contacts.Remove(ctx, ownerID, targetID)
}

// DisplayNameFor resolves what the owner should see for a user: the owner's
// alias when one exists, otherwise the target's own display name, falling
// back to the phone-number-derived default.
func (s *ContactService) DisplayNameFor(ctx context.Context, ownerID uuid.UUID, target user.User) (string, error) {
	c, err := s.contacts.Get(ctx, ownerID, target.ID)
	if err == nil {
		return c.Alias, nil
	}
	if !errors.Is(err, chat_errors.ErrNotFound) {
		return "", err
	}
	if target.DisplayName != "" {
		return target.DisplayName, nil
	}
	return target.Phone, nil
}
