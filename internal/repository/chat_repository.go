package repository

import (
	"context"
	"errors"

	"pulsechat/internal/domain/chat"
	chat_errors "pulsechat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &PostgresChatRepository{db: db}
}

func (r *PostgresChatRepository) GetOrCreate(ctx context.Context, x, y uuid.UUID) (chat.Chat, error) {
	a, b := chat.NormalizePair(x, y)

	existing, err := r.GetByPair(ctx, a, b)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, chat_errors.ErrNotFound) {
		return chat.Chat{}, err
	}

	c := chat.Chat{ID: uuid.New(), ParticipantA: a, ParticipantB: b}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "participant_a"}, {Name: "participant_b"}},
			DoNothing: true,
		}).
		Create(&c)
	if res.Error != nil {
		return chat.Chat{}, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the creation race to the other end of the pair.
		return r.GetByPair(ctx, a, b)
	}
	return c, nil
}

func (r *PostgresChatRepository) GetByPair(ctx context.Context, x, y uuid.UUID) (chat.Chat, error) {
	a, b := chat.NormalizePair(x, y)
	var c chat.Chat
	err := r.db.WithContext(ctx).
		Where("participant_a = ? AND participant_b = ?", a, b).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Chat{}, chat_errors.ErrNotFound
		}
		return chat.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error) {
	var c chat.Chat
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Chat{}, chat_errors.ErrNotFound
		}
		return chat.Chat{}, err
	}
	return c, nil
}

func (r *PostgresChatRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	var chats []chat.Chat
	err := r.db.WithContext(ctx).
		Where("(participant_a = ? AND NOT hidden_a AND NOT archived_a) OR (participant_b = ? AND NOT hidden_b AND NOT archived_b)",
			userID, userID).
		Order("updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

// RecordMessage is a single conditional UPDATE so two concurrent sends to the
// same chat can never lose an unread increment.
func (r *PostgresChatRepository) RecordMessage(ctx context.Context, chatID, messageID, recipientID uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE chats SET
			last_message_id = ?,
			unread_a = CASE WHEN participant_a = ? THEN unread_a + 1 ELSE unread_a END,
			unread_b = CASE WHEN participant_b = ? THEN unread_b + 1 ELSE unread_b END,
			hidden_a = FALSE,
			hidden_b = FALSE,
			updated_at = NOW()
		WHERE id = ?`,
		messageID, recipientID, recipientID, chatID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresChatRepository) ResetUnread(ctx context.Context, chatID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE chats SET
			unread_a = CASE WHEN participant_a = ? THEN 0 ELSE unread_a END,
			unread_b = CASE WHEN participant_b = ? THEN 0 ELSE unread_b END
		WHERE id = ?`,
		userID, userID, chatID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresChatRepository) SetHidden(ctx context.Context, chatID, userID uuid.UUID, hidden bool) error {
	return r.setFlag(ctx, chatID, userID, "hidden", hidden)
}

func (r *PostgresChatRepository) SetArchived(ctx context.Context, chatID, userID uuid.UUID, archived bool) error {
	return r.setFlag(ctx, chatID, userID, "archived", archived)
}

func (r *PostgresChatRepository) setFlag(ctx context.Context, chatID, userID uuid.UUID, flag string, value bool) error {
	var stmt string
	switch flag {
	case "hidden":
		stmt = `UPDATE chats SET
			hidden_a = CASE WHEN participant_a = ? THEN ? ELSE hidden_a END,
			hidden_b = CASE WHEN participant_b = ? THEN ? ELSE hidden_b END
			WHERE id = ? AND (participant_a = ? OR participant_b = ?)`
	case "archived":
		stmt = `UPDATE chats SET
			archived_a = CASE WHEN participant_a = ? THEN ? ELSE archived_a END,
			archived_b = CASE WHEN participant_b = ? THEN ? ELSE archived_b END
			WHERE id = ? AND (participant_a = ? OR participant_b = ?)`
	default:
		return chat_errors.ErrInvalidInput
	}

	res := r.db.WithContext(ctx).Exec(stmt, userID, value, userID, value, chatID, userID, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresChatRepository) PeersOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var peers []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT CASE WHEN participant_a = ? THEN participant_b ELSE participant_a END
		FROM chats
		WHERE participant_a = ? OR participant_b = ?`,
		userID, userID, userID).
		Scan(&peers).Error
	if err != nil {
		return nil, err
	}
	return peers, nil
}
