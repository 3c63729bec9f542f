// internal/contact/compose.go
// 通知郵件內容與 mailto 備援連結

package contact

import (
	"fmt"
	"net/url"
	"strings"

	"contact-relay/internal/models"
)

// Subject 通知郵件主旨
func Subject(name string) string {
	return fmt.Sprintf("New portfolio message from %s", name)
}

// Body 通知郵件純文字內容
func Body(sub models.ContactSubmission) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\n\nMessage:\n%s\n", sub.Name, sub.Email, sub.Message)
}

// BuildMail 建立送往站長的通知郵件
func BuildMail(sub models.ContactSubmission, from, to string) *models.ContactMail {
	return &models.ContactMail{
		From:          from,
		To:            to,
		ReplyTo:       sub.Email,
		Subject:       Subject(sub.Name),
		Text:          Body(sub),
		SenderName:    sub.Name,
		SenderEmail:   sub.Email,
		SenderMessage: sub.Message,
	}
}

// MailtoLink 建立預先填好內容的 mailto 連結，供前端在伺服器無法寄信時改用
func MailtoLink(to string, sub models.ContactSubmission) string {
	if to == "" {
		return ""
	}

	subject := fmt.Sprintf("Portfolio inquiry from %s", sub.Name)
	body := strings.Join([]string{
		"Name: " + sub.Name,
		"Email: " + sub.Email,
		"",
		sub.Message,
	}, "\n")

	return fmt.Sprintf("mailto:%s?subject=%s&body=%s", to, encodeComponent(subject), encodeComponent(body))
}

// encodeComponent 以 %20 表示空白 (mailto 用戶端不認得 "+")
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
