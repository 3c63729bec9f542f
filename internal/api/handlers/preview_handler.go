// internal/api/handlers/preview_handler.go
// 開發用郵件預覽 Handler

package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contact-relay/internal/services"
)

// PreviewHandler 回傳 SMTP Sink 擷取的郵件
type PreviewHandler struct {
	previews services.PreviewStore
}

// NewPreviewHandler 建立 Preview Handler
func NewPreviewHandler(previews services.PreviewStore) *PreviewHandler {
	return &PreviewHandler{previews: previews}
}

// Get 取得郵件預覽
// GET /api/contact/preview/:id
func (h *PreviewHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	preview, err := h.previews.GetPreview(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrPreviewNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Preview not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load preview."})
		return
	}

	c.JSON(http.StatusOK, preview)
}
