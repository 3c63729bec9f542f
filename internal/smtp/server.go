// internal/smtp/server.go
// 開發用 SMTP Sink - 啟動與管理 SMTP 伺服器

package smtp

import (
	"errors"
	"fmt"
	"net"
	"time"

	gosmtp "github.com/emersion/go-smtp"

	"contact-relay/internal/config"
	"contact-relay/internal/logger"
	"contact-relay/internal/services"
)

// Server 開發用 SMTP 伺服器
type Server struct {
	cfg        *config.Config
	log        *logger.Logger
	smtpServer *gosmtp.Server
}

// NewServer 建立 SMTP 伺服器
func NewServer(cfg *config.Config, previews services.PreviewStore, log *logger.Logger) *Server {
	log = log.WithComponent("mail_sink")

	s := gosmtp.NewServer(NewBackend(previews, log))
	s.Addr = fmt.Sprintf(":%s", cfg.SMTPSinkPort)
	s.Domain = "contact-relay.local"
	s.ReadTimeout = 30 * time.Second
	s.WriteTimeout = 30 * time.Second
	s.MaxMessageBytes = int64(cfg.SMTPSinkMaxMessageSize) * 1024 * 1024
	s.MaxRecipients = 10
	s.AllowInsecureAuth = true // 僅供開發環境使用

	return &Server{
		cfg:        cfg,
		log:        log,
		smtpServer: s,
	}
}

// Start 啟動 SMTP 伺服器 (阻塞式)
func (s *Server) Start() error {
	s.log.Info().
		Str("port", s.cfg.SMTPSinkPort).
		Int("max_message_mb", s.cfg.SMTPSinkMaxMessageSize).
		Msg("mail sink listening")

	if err := s.smtpServer.ListenAndServe(); err != nil && !errors.Is(err, gosmtp.ErrServerClosed) {
		return fmt.Errorf("SMTP server error: %w", err)
	}

	return nil
}

// Serve 在指定 listener 上提供服務 (阻塞式)
func (s *Server) Serve(l net.Listener) error {
	if err := s.smtpServer.Serve(l); err != nil && !errors.Is(err, gosmtp.ErrServerClosed) {
		return fmt.Errorf("SMTP server error: %w", err)
	}
	return nil
}

// Shutdown 關閉伺服器
func (s *Server) Shutdown() error {
	s.log.Info().Msg("mail sink shutting down")
	return s.smtpServer.Close()
}
