// internal/logger/logger.go
// 結構化日誌 (zerolog)

package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger 包裝 zerolog.Logger
type Logger struct {
	zerolog.Logger
}

// New 建立 Logger
// format 為 "console" 或 "text" 時輸出人類可讀格式，其餘輸出 JSON
func New(level string, format string) *Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter 建立寫入指定 io.Writer 的 Logger
func NewWithWriter(w io.Writer, level string, format string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if format == "text" || format == "console" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	return &Logger{Logger: zerolog.New(w).Level(lvl).With().Timestamp().Logger()}
}

// Nop 不輸出任何內容的 Logger (測試用)
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// WithComponent 附加元件名稱
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.With().Str("component", component).Logger()}
}

// WithRequestID 附加 request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.With().Str("request_id", requestID).Logger()}
}

// HTTPRequest 記錄 HTTP 請求
func (l *Logger) HTTPRequest(method, path string, statusCode int, duration time.Duration, clientIP string) {
	l.Info().
		Str("method", method).
		Str("path", path).
		Int("status", statusCode).
		Dur("duration", duration).
		Str("client_ip", clientIP).
		Msg("HTTP request")
}
