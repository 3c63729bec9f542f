// internal/api/handlers/contact_handler.go
// 聯絡表單 Handler

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contact-relay/internal/config"
	"contact-relay/internal/contact"
	"contact-relay/internal/logger"
	"contact-relay/internal/models"
	"contact-relay/internal/services"
)

// 回應訊息
const (
	msgInvalidJSON      = "Invalid JSON body."
	msgDeliveryDisabled = "Message received. Email delivery is disabled in this environment."
	msgNotConfigured    = "Email delivery is not configured on the server."
	msgDeliveryFailed   = "Email delivery failed. Please try again later."
	msgConnectivityHint = "The mail server could not be reached. Please try again in a few minutes or email directly."
	codeNotConfigured   = "SMTP_NOT_CONFIGURED"
	codeDeliveryFailed  = "EMAIL_DELIVERY_FAILED"
	smtpProviderName    = "SMTP"
	previewRoutePrefix  = "/api/contact/preview/"
)

// ContactHandler 聯絡表單 Handler
type ContactHandler struct {
	cfg      *config.Config
	router   *services.MailRouter
	recorder *services.ContactRecorder
	previews bool // 是否可提供 SMTP Sink 預覽
	log      *logger.Logger
}

// NewContactHandler 建立 Contact Handler
func NewContactHandler(cfg *config.Config, router *services.MailRouter, recorder *services.ContactRecorder, previews bool, log *logger.Logger) *ContactHandler {
	return &ContactHandler{
		cfg:      cfg,
		router:   router,
		recorder: recorder,
		previews: previews,
		log:      log.WithComponent("contact_handler"),
	}
}

// SubmitResponse 成功回應
type SubmitResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Preview string `json:"preview,omitempty"`
}

// ErrorResponse 錯誤回應
type ErrorResponse struct {
	Error    string          `json:"error"`
	Code     string          `json:"code,omitempty"`
	Hint     string          `json:"hint,omitempty"`
	Fallback *FallbackMailto `json:"fallback,omitempty"`
}

// FallbackMailto 預填的 mailto 連結
type FallbackMailto struct {
	Mailto string `json:"mailto"`
}

// Submit 處理聯絡表單
// POST /api/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	// 整個 body 必須是單一 JSON 值，結尾多餘內容也視為格式錯誤
	var raw interface{}
	body, err := c.GetRawData()
	if err != nil || json.Unmarshal(body, &raw) != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidJSON})
		return
	}

	req, err := contact.ParseRequest(raw)
	if err != nil {
		h.rejectInput(c, err)
		return
	}

	sub, err := contact.Sanitize(req)
	if err != nil {
		h.rejectInput(c, err)
		return
	}

	// 背景寫入，不等待結果
	h.recorder.Record(sub, requestMeta(c))

	job := contact.BuildMail(sub, h.cfg.ContactFrom, h.cfg.ContactTo)
	report := h.router.Deliver(job)

	h.respond(c, sub, report.Outcome)
}

// respond 依最終發送結果組出回應
func (h *ContactHandler) respond(c *gin.Context, sub models.ContactSubmission, outcome models.DeliveryOutcome) {
	switch outcome.Status {
	case models.DeliverySent:
		resp := SubmitResponse{
			OK:      true,
			Message: "Message sent via " + outcome.Provider + ".",
		}
		if h.previews && !h.cfg.IsProduction() && outcome.Provider == smtpProviderName && outcome.Reference != "" {
			resp.Preview = previewRoutePrefix + outcome.Reference
		}
		c.JSON(http.StatusOK, resp)

	case models.DeliveryNotConfigured:
		if !h.cfg.IsProduction() {
			c.JSON(http.StatusOK, SubmitResponse{OK: true, Message: msgDeliveryDisabled})
			return
		}

		resp := ErrorResponse{Error: msgNotConfigured, Code: codeNotConfigured}
		if link := contact.MailtoLink(h.cfg.ContactFallbackEmail, sub); link != "" {
			resp.Fallback = &FallbackMailto{Mailto: link}
		}
		c.JSON(http.StatusServiceUnavailable, resp)

	default:
		resp := ErrorResponse{Error: msgDeliveryFailed, Code: codeDeliveryFailed}
		if outcome.Class == models.FailureConnectivity {
			resp.Hint = msgConnectivityHint
		}
		c.JSON(http.StatusBadGateway, resp)
	}
}

// rejectInput 回應驗證錯誤
func (h *ContactHandler) rejectInput(c *gin.Context, err error) {
	var verr *contact.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Message})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: contact.ErrInvalidInput.Message})
}

// requestMeta 取得 User-Agent 與來源 IP
// 優先使用 X-Forwarded-For 的第一個位址
func requestMeta(c *gin.Context) models.RequestMeta {
	ip := c.GetHeader("X-Forwarded-For")
	if i := strings.Index(ip, ","); i >= 0 {
		ip = ip[:i]
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		ip = c.ClientIP()
	}

	return models.RequestMeta{
		UserAgent: c.GetHeader("User-Agent"),
		IPAddress: ip,
	}
}
