// internal/services/mail_sender.go
// 郵件發送服務共用介面

package services

import (
	"context"

	"contact-relay/internal/models"
)

// MailSender 郵件發送服務介面
// 所有通知供應商 (Mail API、EmailJS、SMTP) 都需實作此介面
type MailSender interface {
	// SendMail 發送郵件，回傳供應商的訊息參考 ID (可能為空)
	SendMail(ctx context.Context, mail *models.ContactMail) (string, error)

	// Name 回傳服務名稱，用於 logging 與回應訊息
	Name() string

	// IsConfigured 所需設定是否齊全
	IsConfigured() bool
}
