// internal/smtp/session.go
// SMTP Session 處理 - 接收郵件並解析成預覽

package smtp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
	"github.com/google/uuid"

	"contact-relay/internal/logger"
	"contact-relay/internal/models"
	"contact-relay/internal/services"
)

// saveTimeout 寫入 KeyDB 的時限
const saveTimeout = 5 * time.Second

// Session 實作 smtp.Session 與 smtp.AuthSession 介面
type Session struct {
	previews services.PreviewStore
	log      *logger.Logger

	from string   // 寄件者地址
	to   []string // 收件者地址列表
}

// NewSession 建立新的 Session
func NewSession(previews services.PreviewStore, log *logger.Logger) *Session {
	return &Session{
		previews: previews,
		log:      log,
		to:       make([]string, 0),
	}
}

// AuthMechanisms 支援的認證機制
func (s *Session) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

// Auth 接受任何 PLAIN 認證
func (s *Session) Auth(mech string) (sasl.Server, error) {
	if mech != sasl.Plain {
		return nil, gosmtp.ErrAuthUnknownMechanism
	}
	return sasl.NewPlainServer(func(identity, username, password string) error {
		s.log.Debug().Str("username", username).Msg("sink accepted AUTH PLAIN")
		return nil
	}), nil
}

// Mail 處理 MAIL FROM 指令
func (s *Session) Mail(from string, opts *gosmtp.MailOptions) error {
	s.from = cleanEmail(from)
	return nil
}

// Rcpt 處理 RCPT TO 指令
func (s *Session) Rcpt(to string, opts *gosmtp.RcptOptions) error {
	s.to = append(s.to, cleanEmail(to))
	return nil
}

// Data 處理 DATA 指令，解析郵件並存成預覽
func (s *Session) Data(r io.Reader) error {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(r); err != nil {
		return fmt.Errorf("failed to read mail data: %w", err)
	}

	preview, err := ParsePreview(buf.Bytes(), s.from, s.to)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to parse captured mail")
		return fmt.Errorf("failed to parse mail: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.previews.SavePreview(ctx, preview); err != nil {
		s.log.Error().Err(err).Str("preview_id", preview.ID).Msg("failed to save preview")
		return fmt.Errorf("failed to save preview: %w", err)
	}

	s.log.Info().
		Str("preview_id", preview.ID).
		Str("from", preview.From).
		Strs("to", preview.To).
		Str("subject", preview.Subject).
		Msg("mail captured")

	return nil
}

// ParsePreview 以 go-message 解析 MIME 郵件
// 預覽 ID 取 Message-ID 的 local part，沒有 Message-ID 時產生新的 UUID
func ParsePreview(raw []byte, envelopeFrom string, envelopeTo []string) (*models.MailPreview, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer mr.Close()

	header := mr.Header
	subject, _ := header.Subject()
	messageID, _ := header.MessageID()

	preview := &models.MailPreview{
		ID:         previewID(messageID),
		MessageID:  messageID,
		From:       envelopeFrom,
		To:         envelopeTo,
		Subject:    subject,
		ReceivedAt: time.Now().UTC(),
	}

	// 信封資訊優先，缺少時改用標頭
	if preview.From == "" {
		if addrs, err := header.AddressList("From"); err == nil && len(addrs) > 0 {
			preview.From = addrs[0].Address
		}
	}
	if len(preview.To) == 0 {
		if addrs, err := header.AddressList("To"); err == nil {
			for _, addr := range addrs {
				preview.To = append(preview.To, addr.Address)
			}
		}
	}
	if addrs, err := header.AddressList("Reply-To"); err == nil && len(addrs) > 0 {
		preview.ReplyTo = addrs[0].Address
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read mail part: %w", err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		if !strings.HasPrefix(contentType, "text/plain") {
			continue
		}

		content, err := io.ReadAll(part.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read mail body: %w", err)
		}
		preview.Text = string(content)
		break
	}

	return preview, nil
}

// previewID 取 Message-ID 的 local part
func previewID(messageID string) string {
	if i := strings.Index(messageID, "@"); i > 0 {
		return messageID[:i]
	}
	if messageID != "" {
		return messageID
	}
	return uuid.New().String()
}

// Reset 重置 Session 狀態
func (s *Session) Reset() {
	s.from = ""
	s.to = make([]string, 0)
}

// Logout 處理 QUIT 指令
func (s *Session) Logout() error {
	return nil
}

// cleanEmail 清理郵件地址 (移除角括號)
func cleanEmail(email string) string {
	email = strings.TrimSpace(email)
	email = strings.TrimPrefix(email, "<")
	email = strings.TrimSuffix(email, ">")
	return email
}
