package httpdto

import (
	"time"

	"pulsechat/internal/domain/user"

	"github.com/google/uuid"
)

// UpdateProfileRequest is used for PUT /users/me
type UpdateProfileRequest struct {
	DisplayName     string `json:"display_name" binding:"required"`
	About           string `json:"about,omitempty"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	LastSeenPrivacy string `json:"last_seen_privacy,omitempty"`
}

// UserView is a profile in API responses. LastSeen is nil when the target's
// privacy setting hides it from the requester.
type UserView struct {
	ID              uuid.UUID  `json:"id"`
	Phone           string     `json:"phone"`
	DisplayName     string     `json:"display_name"`
	About           string     `json:"about,omitempty"`
	AvatarURL       string     `json:"avatar_url,omitempty"`
	Online          bool       `json:"online"`
	LastSeen        *time.Time `json:"last_seen,omitempty"`
	LastSeenPrivacy string     `json:"last_seen_privacy,omitempty"`
}

func NewUserView(u user.User, self bool) UserView {
	view := UserView{
		ID:          u.ID,
		Phone:       u.Phone,
		DisplayName: u.DisplayName,
		About:       u.About,
		AvatarURL:   u.AvatarURL,
		Online:      u.Online,
	}
	if !u.LastSeen.IsZero() {
		ls := u.LastSeen
		view.LastSeen = &ls
	}
	if self {
		view.LastSeenPrivacy = string(u.LastSeenPrivacy)
	}
	return view
}
