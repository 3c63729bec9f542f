// internal/models/mail.go
// 郵件與發送結果模型

package models

import "time"

// ContactMail 發送給站長的通知郵件
type ContactMail struct {
	From    string // 寄件者 (設定值)
	To      string // 收件者 (CONTACT_TO)
	ReplyTo string // 訪客 Email
	Subject string
	Text    string // 純文字內容

	// 原始欄位，供範本型供應商 (EmailJS) 使用
	SenderName    string
	SenderEmail   string
	SenderMessage string
}

// DeliveryStatus 單一供應商的發送結果
type DeliveryStatus string

const (
	DeliverySent          DeliveryStatus = "sent"
	DeliveryNotConfigured DeliveryStatus = "not_configured"
	DeliveryFailed        DeliveryStatus = "failed"
)

// FailureClass 發送失敗類別
type FailureClass string

const (
	FailureGeneric      FailureClass = "generic"
	FailureConnectivity FailureClass = "connectivity"
)

// DeliveryOutcome 發送結果
type DeliveryOutcome struct {
	Status    DeliveryStatus
	Provider  string
	Reference string // 供應商回傳的訊息 ID (SMTP 為 Message-ID)
	Class     FailureClass
	Err       error
}

// Sent 是否已成功送出
func (o DeliveryOutcome) Sent() bool {
	return o.Status == DeliverySent
}

// MailPreview 開發用 SMTP Sink 擷取的郵件
type MailPreview struct {
	ID         string    `json:"id"`
	MessageID  string    `json:"message_id"`
	From       string    `json:"from"`
	To         []string  `json:"to"`
	ReplyTo    string    `json:"reply_to,omitempty"`
	Subject    string    `json:"subject"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}
