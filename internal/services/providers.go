// internal/services/providers.go
// 依設定建立通知供應商列表

package services

import (
	"fmt"

	"contact-relay/internal/config"
	"contact-relay/pkg/microsoft"
)

// NewMailAPISender 建立 Mail API 供應商 (SendGrid / Resend / Mailgun / Graph)
// 未設定任何供應商時回傳預設的 SendGrid，其 IsConfigured 為 false
func NewMailAPISender(cfg *config.Config) (MailSender, error) {
	vendor, _ := cfg.MailAPIConfigured()

	switch vendor {
	case config.VendorSendGrid, "":
		return NewSendGridService(cfg), nil
	case config.VendorResend:
		return NewResendService(cfg)
	case config.VendorMailgun:
		return NewMailgunService(cfg), nil
	case config.VendorGraph:
		tokens := microsoft.NewTokenSource(microsoft.Credentials{
			TenantID:     cfg.MicrosoftTenantID,
			ClientID:     cfg.MicrosoftClientID,
			ClientSecret: cfg.MicrosoftClientSecret,
		}, microsoft.Options{Timeout: cfg.ProviderTimeout})
		return NewGraphMailService(cfg, tokens), nil
	}

	return nil, fmt.Errorf("unknown MAIL_API_VENDOR %q", vendor)
}

// NewProviderChain 依固定優先順序建立供應商: Mail API → EmailJS → SMTP
func NewProviderChain(cfg *config.Config) ([]MailSender, error) {
	mailAPI, err := NewMailAPISender(cfg)
	if err != nil {
		return nil, err
	}

	return []MailSender{
		mailAPI,
		NewEmailJSService(cfg),
		NewSMTPService(cfg),
	}, nil
}
