package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"pulsechat/internal/domain/message"
	"pulsechat/internal/storage"
	chat_errors "pulsechat/pkg/errors"

	"github.com/google/uuid"
)

// MediaDescriptor is what the engine consumes when building a media message:
// the bytes are already stored, only the reference travels through the chat.
type MediaDescriptor struct {
	URL      string       `json:"url"`
	MimeType string       `json:"mime_type"`
	Size     int64        `json:"size"`
	Kind     message.Kind `json:"kind"`
}

// maxUploadSize bounds a single media object (64 MiB).
const maxUploadSize = 64 << 20

// UploadService stores media objects and hands back descriptors.
type UploadService struct {
	store *storage.Client
}

func NewUploadService(store *storage.Client) *UploadService {
	return &UploadService{store: store}
}

func (s *UploadService) Upload(ctx context.Context, ownerID uuid.UUID, filename, contentType string, size int64, body io.Reader) (MediaDescriptor, error) {
	if s.store == nil {
		return MediaDescriptor{}, fmt.Errorf("upload storage not configured")
	}
	kind, ok := KindForMime(contentType)
	if !ok {
		return MediaDescriptor{}, chat_errors.ErrInvalidInput
	}
	if size <= 0 || size > maxUploadSize {
		return MediaDescriptor{}, chat_errors.ErrInvalidInput
	}

	key := fmt.Sprintf("media/%s/%s%s", ownerID, uuid.New(), path.Ext(filename))
	url, err := s.store.Put(ctx, key, contentType, body)
	if err != nil {
		return MediaDescriptor{}, err
	}

	return MediaDescriptor{URL: url, MimeType: contentType, Size: size, Kind: kind}, nil
}

// KindForMime maps a mime type onto a media message kind.
func KindForMime(contentType string) (message.Kind, bool) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return message.KindImage, true
	case strings.HasPrefix(contentType, "audio/"):
		return message.KindAudio, true
	case strings.HasPrefix(contentType, "video/"):
		return message.KindVideo, true
	}
	return "", false
}
