// internal/api/handlers/health_handler.go
// 健康檢查 Handler

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contact-relay/internal/services"
)

// Pinger KeyDB 連線檢查
type Pinger interface {
	Ping(ctx context.Context) bool
}

// HealthHandler 健康檢查 Handler
type HealthHandler struct {
	store services.ContactStore
	keydb Pinger
}

// NewHealthHandler 建立 Health Handler，store 與 keydb 皆可為 nil
func NewHealthHandler(store services.ContactStore, keydb Pinger) *HealthHandler {
	return &HealthHandler{
		store: store,
		keydb: keydb,
	}
}

// Health 健康檢查
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := gin.H{
		"status":  "healthy",
		"version": "1.0.0",
		"services": gin.H{
			"store": "disabled",
			"keydb": "disabled",
		},
	}

	// 檢查儲存
	if h.store != nil {
		response["services"].(gin.H)["store"] = "ok"
		if err := h.store.Ping(ctx); err != nil {
			response["services"].(gin.H)["store"] = "error"
			response["status"] = "degraded"
		}
	}

	// 檢查 KeyDB
	if h.keydb != nil {
		response["services"].(gin.H)["keydb"] = "ok"
		if !h.keydb.Ping(ctx) {
			response["services"].(gin.H)["keydb"] = "error"
			response["status"] = "degraded"
		}
	}

	// 回應
	statusCode := http.StatusOK
	if response["status"] == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
