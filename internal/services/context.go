package services

import (
	"context"

	chat_errors "pulsechat/pkg/errors"
	"pulsechat/pkg/logger"

	"github.com/google/uuid"
)

type userCtxKey struct{}

// WithUserContext stores the authenticated user on the context, both for
// handler access and for the logger's user_id field.
func WithUserContext(ctx context.Context, userID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, userCtxKey{}, userID)
	return context.WithValue(ctx, logger.UserIdKey, userID.String())
}

func UserFromContext(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(userCtxKey{}).(uuid.UUID)
	if !ok {
		return uuid.Nil, chat_errors.ErrUnauthorized
	}
	return id, nil
}
