// internal/api/middlewares/request.go
// 請求 ID 與存取日誌 Middleware

package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contact-relay/internal/logger"
)

// RequestIDHeader 請求 ID 標頭
const RequestIDHeader = "X-Request-ID"

// requestIDKey gin.Context 中的請求 ID 鍵值
const requestIDKey = "request_id"

// RequestID 為每個請求附加唯一 ID，沿用用戶端帶入的值
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID 取得請求 ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// AccessLog 以 zerolog 記錄每個請求
func AccessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.WithRequestID(GetRequestID(c)).
			HTTPRequest(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}
