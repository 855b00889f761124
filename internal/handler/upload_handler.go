package handler

import (
	"net/http"

	"pulsechat/internal/services"
	"pulsechat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	service *services.UploadService
}

func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// Create accepts a multipart upload under the "file" field and returns the
// media descriptor to attach to a message.
func (h *UploadHandler) Create(c *gin.Context) {
	userID, err := services.UserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("missing file", "INVALID_REQUEST"))
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("unreadable file", "INVALID_REQUEST"))
		return
	}
	defer file.Close()

	descriptor, err := h.service.Upload(
		c.Request.Context(),
		userID,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(descriptor))
}
