package handler

import (
	"net/http"

	"pulsechat/internal/domain/user"
	"pulsechat/internal/services"
	"pulsechat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	u, err := h.service.Get(c.Request.Context(), userID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewUserView(u, true)))
}

func (h *UserHandler) GetByID(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	u, err := h.service.Get(c.Request.Context(), userID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewUserView(u, userID == targetID)))
}

// Lookup finds a user by phone number; the last-seen privacy filter applies
// the same way it does for a direct profile read.
func (h *UserHandler) Lookup(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid phone", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	u, err := h.service.FindByPhone(c.Request.Context(), userID, phone)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewUserView(u, userID == u.ID)))
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req httpdto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), userID, services.ProfileUpdate{
		DisplayName:     req.DisplayName,
		About:           req.About,
		AvatarURL:       req.AvatarURL,
		LastSeenPrivacy: user.LastSeenPrivacy(req.LastSeenPrivacy),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewUserView(u, true)))
}
