// internal/services/mailgun_service.go
// Mailgun 郵件發送服務

package services

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

// MailgunService Mailgun 郵件發送服務
// 實作 MailSender interface
type MailgunService struct {
	cfg    *config.Config
	client *mailgun.MailgunImpl
}

// NewMailgunService 建立 Mailgun 服務
func NewMailgunService(cfg *config.Config) *MailgunService {
	mg := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)

	switch {
	case cfg.MailgunBaseURL != "":
		mg.SetAPIBase(cfg.MailgunBaseURL)
	case cfg.MailgunRegion == "eu":
		mg.SetAPIBase("https://api.eu.mailgun.net/v3")
	}

	return &MailgunService{
		cfg:    cfg,
		client: mg,
	}
}

// Name 回傳服務名稱
func (s *MailgunService) Name() string {
	return "Mailgun"
}

// IsConfigured 檢查 Mailgun 是否已設定
func (s *MailgunService) IsConfigured() bool {
	return s.cfg.MailgunAPIKey != "" && s.cfg.MailgunDomain != "" && s.cfg.ContactTo != "" && s.cfg.ContactFrom != ""
}

// SendMail 發送郵件 (使用 Mailgun API)
func (s *MailgunService) SendMail(ctx context.Context, job *models.ContactMail) (string, error) {
	m := s.client.NewMessage(job.From, job.Subject, job.Text, job.To)
	m.SetReplyTo(job.ReplyTo)

	_, id, err := s.client.Send(ctx, m)
	if err != nil {
		return "", fmt.Errorf("failed to send email via Mailgun: %w", err)
	}

	return id, nil
}
