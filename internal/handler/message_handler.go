package handler

import (
	"net/http"

	"pulsechat/internal/domain/message"
	"pulsechat/internal/services"
	"pulsechat/internal/transport/httpdto"
	chat_errors "pulsechat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid recipient_id", "INVALID_REQUEST"))
		return
	}

	content, err := contentFromRequest(req)
	if err != nil {
		respondError(c, err)
		return
	}

	m, err := h.service.Send(c.Request.Context(), userID, recipientID, content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(m))
}

// History returns the conversation with the user named in the query,
// oldest-first. Fetching it marks the chat read for the caller.
func (h *MessageHandler) History(c *gin.Context) {
	otherUserID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user_id", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	items, err := h.service.GetHistory(c.Request.Context(), userID, otherUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"messages": items}))
}

func (h *MessageHandler) Forward(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.ForwardMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	recipientIDs := make([]uuid.UUID, 0, len(req.RecipientIDs))
	for _, raw := range req.RecipientIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid recipient id", "INVALID_REQUEST"))
			return
		}
		recipientIDs = append(recipientIDs, id)
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	created, err := h.service.Forward(c.Request.Context(), userID, messageID, recipientIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"messages": created}))
}

func (h *MessageHandler) SetStatus(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), userID, messageID, message.Status(req.Status)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *MessageHandler) React(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.AddReaction(c.Request.Context(), userID, messageID, req.Emoji); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *MessageHandler) Unreact(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.RemoveReaction(c.Request.Context(), userID, messageID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// Delete hides a message for the caller, or for both sides when the
// for_everyone query flag is set and the caller is the sender.
func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	forEveryone := c.Query("for_everyone") == "true"
	if err := h.service.Delete(c.Request.Context(), userID, messageID, forEveryone); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// MarkRead marks the whole conversation with the named user as read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	otherUserID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user_id", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, otherUserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func contentFromRequest(req httpdto.SendMessageRequest) (message.Content, error) {
	switch message.Kind(req.Kind) {
	case message.KindText:
		return message.Text{Body: req.Body}, nil
	case message.KindEmoji:
		return message.Emoji{Body: req.Body}, nil
	case message.KindImage, message.KindAudio, message.KindVideo:
		if req.Media == nil {
			return nil, chat_errors.ErrInvalidInput
		}
		return message.Media{
			Kind:      message.Kind(req.Kind),
			URL:       req.Media.URL,
			Mime:      req.Media.MimeType,
			Size:      req.Media.Size,
			Thumbnail: req.Media.Thumbnail,
			Duration:  req.Media.Duration,
			Caption:   req.Body,
		}, nil
	default:
		return nil, chat_errors.ErrInvalidInput
	}
}
