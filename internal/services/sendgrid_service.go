// internal/services/sendgrid_service.go
// SendGrid 郵件發送服務

package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

// SendGridService SendGrid 郵件發送服務
// 實作 MailSender interface
type SendGridService struct {
	cfg *config.Config
}

// NewSendGridService 建立 SendGrid 服務
func NewSendGridService(cfg *config.Config) *SendGridService {
	return &SendGridService{cfg: cfg}
}

// Name 回傳服務名稱
func (s *SendGridService) Name() string {
	return "SendGrid"
}

// IsConfigured 檢查 SendGrid 是否已設定
func (s *SendGridService) IsConfigured() bool {
	return s.cfg.SendGridAPIKey != "" && s.cfg.ContactTo != "" && s.cfg.ContactFrom != ""
}

// SendMail 發送郵件 (使用 SendGrid API)
func (s *SendGridService) SendMail(ctx context.Context, job *models.ContactMail) (string, error) {
	message := mail.NewSingleEmailPlainText(
		mail.NewEmail("", job.From),
		job.Subject,
		mail.NewEmail("", job.To),
		job.Text,
	)
	message.SetReplyTo(mail.NewEmail(job.SenderName, job.ReplyTo))

	// Client.SendWithContext 會寫入 Body，每次發送使用獨立 client
	request := sendgrid.GetRequest(s.cfg.SendGridAPIKey, "/v3/mail/send", s.cfg.SendGridBaseURL)
	request.Method = "POST"
	client := &sendgrid.Client{Request: request}

	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return "", fmt.Errorf("failed to send email via SendGrid: %w", err)
	}

	// 檢查回應狀態 (2xx 表示成功)
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", fmt.Errorf("SendGrid API error (status %d): %s", response.StatusCode, response.Body)
	}

	return firstHeader(response.Headers, "X-Message-Id"), nil
}

// firstHeader 取得回應標頭的第一個值
func firstHeader(headers map[string][]string, key string) string {
	if values := headers[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}
