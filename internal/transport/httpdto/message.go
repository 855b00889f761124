package httpdto

// MediaPayload describes an already-uploaded media object attached to a
// message. The upload endpoint returns one verbatim.
type MediaPayload struct {
	Kind      string `json:"kind"`
	URL       string `json:"url"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Duration  int    `json:"duration,omitempty"`
}

// SendMessageRequest is used for POST /messages. Kind selects the content
// variant: text and emoji need a body, media kinds need the media payload
// and may carry the body as a caption.
type SendMessageRequest struct {
	RecipientID string        `json:"recipient_id" binding:"required"`
	Kind        string        `json:"kind" binding:"required"`
	Body        string        `json:"body,omitempty"`
	Media       *MediaPayload `json:"media,omitempty"`
}

// ForwardMessageRequest is used for POST /messages/:id/forward
type ForwardMessageRequest struct {
	RecipientIDs []string `json:"recipient_ids" binding:"required"`
}

// SetStatusRequest is used for PUT /messages/:id/status
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ReactionRequest is used for PUT /messages/:id/reaction
type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}
