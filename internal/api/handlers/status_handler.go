// internal/api/handlers/status_handler.go
// 服務設定狀態 Handler

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contact-relay/internal/config"
	"contact-relay/internal/services"
)

// StatusHandler 回報各供應商是否已設定
type StatusHandler struct {
	cfg *config.Config
}

// NewStatusHandler 建立 Status Handler
func NewStatusHandler(cfg *config.Config) *StatusHandler {
	return &StatusHandler{cfg: cfg}
}

// Status 回報設定狀態
// GET /api/_health
func (h *StatusHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, services.BuildStatusReport(h.cfg))
}
