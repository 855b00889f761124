package repository

import (
	"context"
	"errors"

	"pulsechat/internal/domain/contact"
	chat_errors "pulsechat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &PostgresContactRepository{db: db}
}

func (r *PostgresContactRepository) Upsert(ctx context.Context, c *contact.Contact) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"alias", "updated_at"}),
		}).
		Create(c).Error
}

func (r *PostgresContactRepository) Get(ctx context.Context, ownerID, targetID uuid.UUID) (contact.Contact, error) {
	var c contact.Contact
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND target_id = ?", ownerID, targetID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contact.Contact{}, chat_errors.ErrNotFound
		}
		return contact.Contact{}, err
	}
	return c, nil
}

func (r *PostgresContactRepository) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]contact.Contact, error) {
	var contacts []contact.Contact
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("alias ASC").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *PostgresContactRepository) Remove(ctx context.Context, ownerID, targetID uuid.UUID) error {
	// Removing an absent contact succeeds.
	return r.db.WithContext(ctx).
		Delete(&contact.Contact{}, "owner_id = ? AND target_id = ?", ownerID, targetID).Error
}

func (r *PostgresContactRepository) Exists(ctx context.Context, ownerID, targetID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&contact.Contact{}).
		Where("owner_id = ? AND target_id = ?", ownerID, targetID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
