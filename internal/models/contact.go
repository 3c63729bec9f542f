// internal/models/contact.go
// 聯絡表單資料模型

package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactRequest 通過驗證的聯絡表單請求 (已 trim)
type ContactRequest struct {
	Name    string
	Email   string
	Message string
}

// ContactSubmission 清理後的聯絡表單內容
// Name 與 Message 已移除 < > " ' 字元，Email 維持原樣
type ContactSubmission struct {
	Name    string
	Email   string
	Message string
}

// RequestMeta 請求中介資訊 (寫入儲存用)
type RequestMeta struct {
	UserAgent string
	IPAddress string
}

// ContactMessage 聯絡訊息資料模型
type ContactMessage struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	UserAgent string    `json:"user_agent,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定資料表名稱
func (ContactMessage) TableName() string {
	return "contact_messages"
}

// NewContactMessage 由清理後內容與請求資訊建立資料列
func NewContactMessage(sub ContactSubmission, meta RequestMeta) *ContactMessage {
	return &ContactMessage{
		ID:        uuid.New(),
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
	}
}
