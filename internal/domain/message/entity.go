package message

import (
	"time"

	chat_errors "pulsechat/pkg/errors"

	"github.com/google/uuid"
)

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
	KindEmoji Kind = "emoji"
)

// MaxBodyLen bounds the text body of a message.
const MaxBodyLen = 4096

type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// Rank orders statuses along the sent -> delivered -> read machine.
// A transition is valid only when the target rank is strictly greater.
func (s Status) Rank() int {
	switch s {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusRead:
		return 3
	}
	return 0
}

// StatusesBelow returns the statuses a message may hold for an advance to
// target to apply. Used by the guarded UPDATE that keeps transitions
// monotonic under concurrent delivery/read races.
func StatusesBelow(target Status) []Status {
	var out []Status
	for _, s := range []Status{StatusSent, StatusDelivered} {
		if s.Rank() < target.Rank() {
			out = append(out, s)
		}
	}
	return out
}

// Message represents the messages table. Rows are never physically deleted;
// DeletedForAll scrubs content in place and per-viewer deletion lives in
// message_user_states.
type Message struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID          uuid.UUID     `gorm:"type:uuid;index;not null" json:"chat_id"`
	SenderID        uuid.UUID     `gorm:"type:uuid;not null" json:"sender_id"`
	Kind            Kind          `gorm:"not null" json:"kind"`
	Body            string        `json:"body,omitempty"`
	MediaURL        string        `json:"media_url,omitempty"`
	MediaMime       string        `json:"media_mime,omitempty"`
	MediaSize       int64         `json:"media_size,omitempty"`
	MediaThumbnail  string        `json:"media_thumbnail,omitempty"`
	MediaDuration   int           `json:"media_duration,omitempty"`
	Status          Status        `gorm:"default:sent" json:"status"`
	DeletedForAll   bool          `gorm:"default:false" json:"deleted_for_all"`
	ForwardedFromID uuid.NullUUID `json:"forwarded_from_id,omitempty"`
	CreatedAt       time.Time     `gorm:"index" json:"created_at"`

	Reactions []MessageReaction `gorm:"foreignKey:MessageID" json:"reactions,omitempty"`
}

// MessageReaction represents message_reactions. One row per (message, user);
// a repeated reaction from the same user replaces the emoji.
type MessageReaction struct {
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey" json:"message_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Emoji     string    `gorm:"not null" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageUserState represents message_user_states: the per-viewer deletion
// set. A row with Deleted set hides the message for that user only.
type MessageUserState struct {
	MessageID uuid.UUID  `gorm:"type:uuid;primaryKey" json:"message_id"`
	UserID    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	Deleted   bool       `gorm:"default:false" json:"deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}

func (MessageReaction) TableName() string {
	return "message_reactions"
}

func (MessageUserState) TableName() string {
	return "message_user_states"
}

// Content is the kind-specific payload of a message, validated at
// construction so malformed payloads are rejected before anything is written.
type Content interface {
	kind() Kind
	validate() error
	fill(m *Message)
}

// Text is a plain text message body.
type Text struct {
	Body string
}

func (t Text) kind() Kind { return KindText }

func (t Text) validate() error {
	if t.Body == "" {
		return chat_errors.ErrInvalidInput
	}
	if len(t.Body) > MaxBodyLen {
		return chat_errors.ErrInvalidInput
	}
	return nil
}

func (t Text) fill(m *Message) { m.Body = t.Body }

// Emoji is a single-emoji message.
type Emoji struct {
	Body string
}

func (e Emoji) kind() Kind { return KindEmoji }

func (e Emoji) validate() error {
	if e.Body == "" || len(e.Body) > MaxBodyLen {
		return chat_errors.ErrInvalidInput
	}
	return nil
}

func (e Emoji) fill(m *Message) { m.Body = e.Body }

// Media is an image, audio or video payload described by an already-uploaded
// object. The engine consumes the descriptor; it never touches the bytes.
type Media struct {
	Kind      Kind
	URL       string
	Mime      string
	Size      int64
	Thumbnail string
	Duration  int
	Caption   string
}

func (md Media) kind() Kind { return md.Kind }

func (md Media) validate() error {
	switch md.Kind {
	case KindImage, KindAudio, KindVideo:
	default:
		return chat_errors.ErrInvalidInput
	}
	if md.URL == "" || md.Mime == "" {
		return chat_errors.ErrInvalidInput
	}
	if len(md.Caption) > MaxBodyLen {
		return chat_errors.ErrInvalidInput
	}
	return nil
}

func (md Media) fill(m *Message) {
	m.Body = md.Caption
	m.MediaURL = md.URL
	m.MediaMime = md.Mime
	m.MediaSize = md.Size
	m.MediaThumbnail = md.Thumbnail
	m.MediaDuration = md.Duration
}

// New builds a message in sent status from a validated content variant.
func New(chatID, senderID uuid.UUID, c Content) (Message, error) {
	if c == nil {
		return Message{}, chat_errors.ErrInvalidInput
	}
	if err := c.validate(); err != nil {
		return Message{}, err
	}
	m := Message{
		ID:       uuid.New(),
		ChatID:   chatID,
		SenderID: senderID,
		Kind:     c.kind(),
		Status:   StatusSent,
	}
	c.fill(&m)
	return m, nil
}

// Validate re-checks the body/media invariant: a message must carry a
// non-empty body or a media URL.
func (m Message) Validate() error {
	if m.Body == "" && m.MediaURL == "" {
		return chat_errors.ErrInvalidInput
	}
	if len(m.Body) > MaxBodyLen {
		return chat_errors.ErrInvalidInput
	}
	switch m.Kind {
	case KindText, KindEmoji:
		if m.Body == "" {
			return chat_errors.ErrInvalidInput
		}
	case KindImage, KindAudio, KindVideo:
		if m.MediaURL == "" || m.MediaMime == "" {
			return chat_errors.ErrInvalidInput
		}
	default:
		return chat_errors.ErrInvalidInput
	}
	return nil
}

// Content returns the content variant carried by an existing message, used by
// forwarding to copy body/media into the new message.
func (m Message) Content() Content {
	switch m.Kind {
	case KindText:
		return Text{Body: m.Body}
	case KindEmoji:
		return Emoji{Body: m.Body}
	default:
		return Media{
			Kind:      m.Kind,
			URL:       m.MediaURL,
			Mime:      m.MediaMime,
			Size:      m.MediaSize,
			Thumbnail: m.MediaThumbnail,
			Duration:  m.MediaDuration,
			Caption:   m.Body,
		}
	}
}

// Scrub blanks body and media in memory, mirroring what delete-for-everyone
// does to the stored row.
func (m *Message) Scrub() {
	m.Body = ""
	m.MediaURL = ""
	m.MediaMime = ""
	m.MediaSize = 0
	m.MediaThumbnail = ""
	m.MediaDuration = 0
	m.DeletedForAll = true
}
