package repository

import (
	"context"
	"errors"
	"time"

	"pulsechat/internal/domain/message"
	chat_errors "pulsechat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Omit("Reactions").Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return chat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).
		Preload("Reactions").
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, chat_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) History(ctx context.Context, chatID, viewerID uuid.UUID) ([]message.Message, error) {
	var messages []message.Message
	err := r.db.WithContext(ctx).
		Preload("Reactions").
		Joins("LEFT JOIN message_user_states mus ON mus.message_id = messages.id AND mus.user_id = ? AND mus.deleted", viewerID).
		Where("messages.chat_id = ? AND (messages.deleted_for_all OR mus.message_id IS NULL)", chatID).
		Order("messages.created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// AdvanceStatus is a guarded UPDATE: whichever of two racing delivery/read
// updates lands first, the status only ever moves forward. A no-op advance
// reports false, not an error.
func (r *PostgresMessageRepository) AdvanceStatus(ctx context.Context, messageID uuid.UUID, to message.Status) (bool, error) {
	below := message.StatusesBelow(to)
	if len(below) == 0 {
		return false, nil
	}
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ? AND status IN ?", messageID, below).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresMessageRepository) MarkChatRead(ctx context.Context, chatID, readerID uuid.UUID) ([]uuid.UUID, error) {
	var senders []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		UPDATE messages SET status = ?
		WHERE chat_id = ? AND sender_id <> ? AND status <> ?
		RETURNING sender_id`,
		message.StatusRead, chatID, readerID, message.StatusRead).
		Scan(&senders).Error
	if err != nil {
		return nil, err
	}
	return distinct(senders), nil
}

func (r *PostgresMessageRepository) UpsertReaction(ctx context.Context, reaction *message.MessageReaction) error {
	reaction.CreatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"emoji", "created_at"}),
		}).
		Create(reaction).Error
}

func (r *PostgresMessageRepository) RemoveReaction(ctx context.Context, messageID, userID uuid.UUID) error {
	// Removing an absent reaction is a success, not ErrNotFound.
	return r.db.WithContext(ctx).
		Delete(&message.MessageReaction{}, "message_id = ? AND user_id = ?", messageID, userID).Error
}

func (r *PostgresMessageRepository) MarkDeletedFor(ctx context.Context, messageID, userID uuid.UUID) error {
	now := time.Now()
	state := message.MessageUserState{
		MessageID: messageID,
		UserID:    userID,
		Deleted:   true,
		DeletedAt: &now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&state).Error
}

func (r *PostgresMessageRepository) ScrubForEveryone(ctx context.Context, messageID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ?", messageID).
		Updates(map[string]interface{}{
			"body":            "",
			"media_url":       "",
			"media_mime":      "",
			"media_size":      0,
			"media_thumbnail": "",
			"media_duration":  0,
			"deleted_for_all": true,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func distinct(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
