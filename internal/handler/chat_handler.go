package handler

import (
	"net/http"

	"pulsechat/internal/services"
	"pulsechat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Start resolves or creates the chat with another user.
func (h *ChatHandler) Start(c *gin.Context) {
	var req httpdto.StartChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	otherUserID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user_id", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	chat, err := h.service.Start(c.Request.Context(), userID, otherUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewChatView(chat, userID)))
}

func (h *ChatHandler) List(c *gin.Context) {
	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	chats, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]httpdto.ChatView, 0, len(chats))
	for _, chat := range chats {
		views = append(views, httpdto.NewChatView(chat, userID))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"chats": views}))
}

func (h *ChatHandler) Archive(c *gin.Context) {
	h.setFlag(c, func(ctx *gin.Context, userID, chatID uuid.UUID) error {
		return h.service.Archive(ctx.Request.Context(), userID, chatID)
	})
}

func (h *ChatHandler) Unarchive(c *gin.Context) {
	h.setFlag(c, func(ctx *gin.Context, userID, chatID uuid.UUID) error {
		return h.service.Unarchive(ctx.Request.Context(), userID, chatID)
	})
}

func (h *ChatHandler) Hide(c *gin.Context) {
	h.setFlag(c, func(ctx *gin.Context, userID, chatID uuid.UUID) error {
		return h.service.Hide(ctx.Request.Context(), userID, chatID)
	})
}

func (h *ChatHandler) setFlag(c *gin.Context, apply func(*gin.Context, uuid.UUID, uuid.UUID) error) {
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid chat id", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := apply(c, userID, chatID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}
