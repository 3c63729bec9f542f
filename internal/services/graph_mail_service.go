// internal/services/graph_mail_service.go
// Microsoft Graph API 郵件發送服務

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
	"contact-relay/pkg/microsoft"
)

// DefaultGraphBaseURL Graph API 端點
const DefaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

// GraphMailService Microsoft Graph API 郵件發送服務
// 以 CONTACT_FROM 信箱的身分呼叫 sendMail，實作 MailSender interface
type GraphMailService struct {
	cfg        *config.Config
	tokens     *microsoft.TokenSource
	httpClient *http.Client
	baseURL    string
}

// NewGraphMailService 建立 Graph API 郵件服務
func NewGraphMailService(cfg *config.Config, tokens *microsoft.TokenSource) *GraphMailService {
	return &GraphMailService{
		cfg:        cfg,
		tokens:     tokens,
		httpClient: &http.Client{},
		baseURL:    DefaultGraphBaseURL,
	}
}

// WithBaseURL 指定 Graph API 端點
func (s *GraphMailService) WithBaseURL(baseURL string) *GraphMailService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// Name 回傳服務名稱
func (s *GraphMailService) Name() string {
	return "Microsoft Graph"
}

// IsConfigured 檢查 OAuth 與收寄件者是否已設定
func (s *GraphMailService) IsConfigured() bool {
	return s.tokens.IsConfigured() && s.cfg.ContactTo != "" && s.cfg.ContactFrom != ""
}

// GraphMailRequest Graph API 郵件請求結構
type GraphMailRequest struct {
	Message         GraphMessage `json:"message"`
	SaveToSentItems bool         `json:"saveToSentItems"`
}

// GraphMessage Graph API 郵件訊息結構
type GraphMessage struct {
	Subject      string           `json:"subject"`
	Body         GraphBody        `json:"body"`
	ToRecipients []GraphRecipient `json:"toRecipients"`
	ReplyTo      []GraphRecipient `json:"replyTo,omitempty"`
}

// GraphBody Graph API 郵件內容結構
type GraphBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// GraphRecipient Graph API 收件人結構
type GraphRecipient struct {
	EmailAddress GraphEmailAddress `json:"emailAddress"`
}

// GraphEmailAddress Graph API 電子郵件地址結構
type GraphEmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// GraphErrorResponse Graph API 錯誤回應
type GraphErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SendMail 發送郵件 (使用 Microsoft Graph API)
func (s *GraphMailService) SendMail(ctx context.Context, job *models.ContactMail) (string, error) {
	accessToken, err := s.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}

	jsonBody, err := json.Marshal(buildGraphRequest(job))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	graphURL := fmt.Sprintf("%s/users/%s/sendMail", s.baseURL, url.PathEscape(job.From))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// 檢查回應 (202 Accepted 表示成功)
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		var errResp GraphErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("Graph API error (%s): %s", errResp.Error.Code, errResp.Error.Message)
		}

		return "", fmt.Errorf("Graph API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return resp.Header.Get("request-id"), nil
}

// buildGraphRequest 建立 Graph API 請求結構
func buildGraphRequest(job *models.ContactMail) *GraphMailRequest {
	return &GraphMailRequest{
		Message: GraphMessage{
			Subject: job.Subject,
			Body: GraphBody{
				ContentType: "text",
				Content:     job.Text,
			},
			ToRecipients: []GraphRecipient{
				{EmailAddress: GraphEmailAddress{Address: job.To}},
			},
			ReplyTo: []GraphRecipient{
				{EmailAddress: GraphEmailAddress{Name: job.SenderName, Address: job.ReplyTo}},
			},
		},
		SaveToSentItems: false,
	}
}
