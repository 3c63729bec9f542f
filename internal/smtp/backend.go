// internal/smtp/backend.go
// SMTP Backend 介面實作 - 建立擷取郵件用的 Session

package smtp

import (
	gosmtp "github.com/emersion/go-smtp"

	"contact-relay/internal/logger"
	"contact-relay/internal/services"
)

// Backend 實作 smtp.Backend 介面
// 所有收到的郵件都轉成預覽存入 KeyDB，不會再轉寄
type Backend struct {
	previews services.PreviewStore
	log      *logger.Logger
}

// NewBackend 建立 SMTP Backend
func NewBackend(previews services.PreviewStore, log *logger.Logger) *Backend {
	return &Backend{
		previews: previews,
		log:      log,
	}
}

// NewSession 建立新的 SMTP Session
// 實作 smtp.Backend 介面
func (b *Backend) NewSession(c *gosmtp.Conn) (gosmtp.Session, error) {
	b.log.Debug().Str("remote_host", c.Hostname()).Msg("new sink connection")

	return NewSession(b.previews, b.log), nil
}
