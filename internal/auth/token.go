package auth

import (
	chat_errors "pulsechat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token issuance (OTP login) happens in the identity service; this package
// only validates the bearer tokens it mints.

type AccessClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// ParseAccessToken validates an HS256 access token and returns the user it
// was issued to.
func ParseAccessToken(secret []byte, tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, chat_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, chat_errors.ErrUnauthorized
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, chat_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok {
		return uuid.Nil, chat_errors.ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, chat_errors.ErrUnauthorized
	}
	return userID, nil
}
