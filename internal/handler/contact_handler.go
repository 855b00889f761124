package handler

import (
	"net/http"

	"pulsechat/internal/services"
	"pulsechat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContactHandler struct {
	service *services.ContactService
}

func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// Save creates or renames the caller's alias for the target user.
func (h *ContactHandler) Save(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.SaveContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	contact, err := h.service.Save(c.Request.Context(), userID, targetID, req.Alias)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(contact))
}

func (h *ContactHandler) List(c *gin.Context) {
	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	contacts, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"contacts": contacts}))
}

func (h *ContactHandler) Remove(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.Remove(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}
