// internal/services/emailjs_service.go
// EmailJS 表單轉寄服務

package services

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

// emailJSSendPath EmailJS REST 發送端點
const emailJSSendPath = "/api/v1.0/email/send"

// EmailJSService EmailJS REST API 服務
// 實作 MailSender interface
type EmailJSService struct {
	cfg    *config.Config
	client *resty.Client
}

// EmailJSRequest EmailJS 發送請求
type EmailJSRequest struct {
	ServiceID      string                `json:"service_id"`
	TemplateID     string                `json:"template_id"`
	UserID         string                `json:"user_id"`
	TemplateParams EmailJSTemplateParams `json:"template_params"`
}

// EmailJSTemplateParams EmailJS 範本參數
type EmailJSTemplateParams struct {
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	Message   string `json:"message"`
	ToEmail   string `json:"to_email"`
}

// NewEmailJSService 建立 EmailJS 服務
func NewEmailJSService(cfg *config.Config) *EmailJSService {
	client := resty.New().
		SetBaseURL(cfg.EmailJSBaseURL).
		SetTimeout(cfg.ProviderTimeout).
		SetHeader("Content-Type", "application/json")

	return &EmailJSService{
		cfg:    cfg,
		client: client,
	}
}

// Name 回傳服務名稱
func (s *EmailJSService) Name() string {
	return "EmailJS"
}

// IsConfigured 檢查 EmailJS 是否已設定
func (s *EmailJSService) IsConfigured() bool {
	return s.cfg.EmailJSConfigured()
}

// SendMail 發送郵件 (使用 EmailJS REST API)
func (s *EmailJSService) SendMail(ctx context.Context, job *models.ContactMail) (string, error) {
	payload := EmailJSRequest{
		ServiceID:  s.cfg.EmailJSServiceID,
		TemplateID: s.cfg.EmailJSTemplateID,
		UserID:     s.cfg.EmailJSPublicKey,
		TemplateParams: EmailJSTemplateParams{
			FromName:  job.SenderName,
			FromEmail: job.SenderEmail,
			Message:   job.SenderMessage,
			ToEmail:   job.To,
		},
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(emailJSSendPath)
	if err != nil {
		return "", fmt.Errorf("failed to send request to EmailJS: %w", err)
	}

	if !resp.IsSuccess() {
		return "", fmt.Errorf("EmailJS API error (status %d): %s", resp.StatusCode(), resp.String())
	}

	return "", nil
}
