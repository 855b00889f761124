package repository

import (
	"context"
	"errors"
	"time"

	"pulsechat/internal/domain/user"
	chat_errors "pulsechat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, chat_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByPhone(ctx context.Context, phone string) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, chat_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresUserRepository) SetOnline(ctx context.Context, id uuid.UUID, online bool, lastSeen time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"online":    online,
			"last_seen": lastSeen,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, u user.User) error {
	res := r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"display_name":      u.DisplayName,
			"about":             u.About,
			"avatar_url":        u.AvatarURL,
			"last_seen_privacy": u.LastSeenPrivacy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}
