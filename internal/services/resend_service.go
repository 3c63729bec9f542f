// internal/services/resend_service.go
// Resend 郵件發送服務

package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/resend/resend-go/v2"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

// ResendService Resend 郵件發送服務
// 實作 MailSender interface
type ResendService struct {
	cfg    *config.Config
	client *resend.Client
}

// NewResendService 建立 Resend 服務
func NewResendService(cfg *config.Config) (*ResendService, error) {
	client := resend.NewClient(cfg.ResendAPIKey)

	if cfg.ResendBaseURL != "" {
		baseURL, err := url.Parse(cfg.ResendBaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid RESEND_BASE_URL: %w", err)
		}
		client.BaseURL = baseURL
	}

	return &ResendService{
		cfg:    cfg,
		client: client,
	}, nil
}

// Name 回傳服務名稱
func (s *ResendService) Name() string {
	return "Resend"
}

// IsConfigured 檢查 Resend 是否已設定
func (s *ResendService) IsConfigured() bool {
	return s.cfg.ResendAPIKey != "" && s.cfg.ContactTo != "" && s.cfg.ContactFrom != ""
}

// SendMail 發送郵件 (使用 Resend API)
func (s *ResendService) SendMail(ctx context.Context, job *models.ContactMail) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    job.From,
		To:      []string{job.To},
		ReplyTo: job.ReplyTo,
		Subject: job.Subject,
		Text:    job.Text,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email via Resend: %w", err)
	}

	return sent.Id, nil
}
