package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wavechat/internal/middleware"
	"wavechat/internal/storage"
	"wavechat/internal/transport/httpdto"
)

type UploadHandler struct {
	store *storage.Client
}

func NewUploadHandler(store *storage.Client) *UploadHandler {
	return &UploadHandler{store: store}
}

// Presign hands the client a short-lived PUT URL for direct uploads,
// namespaced per user so clients cannot overwrite each other's objects.
func (h *UploadHandler) Presign(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("uploads disabled", "UPLOADS_DISABLED"))
		return
	}

	var req httpdto.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	key := fmt.Sprintf("uploads/%s/%s/%s", c.GetString(middleware.UserIDKey), uuid.New().String(), req.FileName)
	url, err := h.store.PresignPut(c.Request.Context(), key, req.ContentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{
		"key":     key,
		"url":     url,
		"fileUrl": h.store.FileURL(key),
	}))
}
