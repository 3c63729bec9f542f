// internal/services/smtp_service.go
// SMTP 直連發送服務

package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
	"github.com/google/uuid"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

// ErrGreetingTimeout SMTP 伺服器未在時限內送出問候
var ErrGreetingTimeout = errors.New("smtp greeting timed out")

// SMTPService SMTP 直連發送服務
// 465 埠使用隱含 TLS，其他埠先以明文連線，伺服器支援時再 STARTTLS
// 實作 MailSender interface
type SMTPService struct {
	cfg       *config.Config
	localName string
	tlsBase   *tls.Config // nil 時使用系統憑證
}

// NewSMTPService 建立 SMTP 服務
func NewSMTPService(cfg *config.Config) *SMTPService {
	localName, err := os.Hostname()
	if err != nil || localName == "" {
		localName = "localhost"
	}

	return &SMTPService{
		cfg:       cfg,
		localName: localName,
	}
}

// Name 回傳服務名稱
func (s *SMTPService) Name() string {
	return "SMTP"
}

// IsConfigured 檢查 SMTP 是否已設定
func (s *SMTPService) IsConfigured() bool {
	return s.cfg.SMTPConfigured()
}

// Secure 是否使用隱含 TLS
func (s *SMTPService) Secure() bool {
	return s.cfg.SMTPPort == config.SMTPSecurePort
}

// SendMail 發送郵件，回傳 Message-ID 的 local part
func (s *SMTPService) SendMail(ctx context.Context, job *models.ContactMail) (string, error) {
	from := s.senderAddress(job)
	messageRef := uuid.New().String()

	raw, err := buildSMTPMessage(job, from, messageRef+"@"+domainOf(from))
	if err != nil {
		return "", fmt.Errorf("failed to build message: %w", err)
	}

	addr := net.JoinHostPort(s.cfg.SMTPHost, strconv.Itoa(s.cfg.SMTPPort))

	client, err := s.dial(ctx, addr)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if err := client.Auth(sasl.NewPlainClient("", s.cfg.SMTPUser, s.cfg.SMTPPassword)); err != nil {
		return "", fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := client.Mail(from, nil); err != nil {
		return "", fmt.Errorf("SMTP MAIL FROM rejected: %w", err)
	}
	if err := client.Rcpt(job.To, nil); err != nil {
		return "", fmt.Errorf("SMTP RCPT TO rejected: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("SMTP DATA rejected: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("SMTP server rejected message: %w", err)
	}

	// 郵件已被接受，QUIT 失敗不影響結果
	_ = client.Quit()

	return messageRef, nil
}

// dial 建立連線並完成問候，連線、問候、閒置各自有逾時
// 非 465 埠先以明文探測，伺服器宣告 STARTTLS 時改用新連線升級為 TLS
func (s *SMTPService) dial(ctx context.Context, addr string) (*gosmtp.Client, error) {
	if s.Secure() {
		return s.open(ctx, addr, true, s.hello)
	}

	client, err := s.open(ctx, addr, false, s.hello)
	if err != nil {
		return nil, err
	}
	if ok, _ := client.Extension("STARTTLS"); !ok {
		return client, nil
	}
	client.Close()

	client, err = s.open(ctx, addr, false, s.helloStartTLS)
	if err != nil {
		return nil, fmt.Errorf("STARTTLS with %s failed: %w", addr, err)
	}
	return client, nil
}

// open 建立 TCP (或隱含 TLS) 連線，在問候時限內執行 handshake
func (s *SMTPService) open(ctx context.Context, addr string, implicitTLS bool, handshake func(net.Conn) (*gosmtp.Client, error)) (*gosmtp.Client, error) {
	dialer := &net.Dialer{Timeout: s.cfg.SMTPConnectTimeout}

	var conn net.Conn
	var err error
	if implicitTLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: s.tlsConfig()}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	// 問候逾時: 時間到直接關閉連線，讓阻塞中的讀取返回
	timer := time.AfterFunc(s.cfg.SMTPGreetingTimeout, func() { conn.Close() })
	client, err := handshake(conn)
	if !timer.Stop() {
		conn.Close()
		return nil, fmt.Errorf("no greeting from %s within %s: %w", addr, s.cfg.SMTPGreetingTimeout, ErrGreetingTimeout)
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SMTP handshake with %s failed: %w", addr, err)
	}

	client.CommandTimeout = s.cfg.SMTPSocketTimeout
	client.SubmissionTimeout = s.cfg.SMTPSocketTimeout
	return client, nil
}

// hello 讀取問候並送出 EHLO
func (s *SMTPService) hello(conn net.Conn) (*gosmtp.Client, error) {
	client := gosmtp.NewClient(conn)
	if err := client.Hello(s.localName); err != nil {
		return nil, err
	}
	return client, nil
}

// helloStartTLS 送出 STARTTLS，完成 TLS handshake 後重新 EHLO
func (s *SMTPService) helloStartTLS(conn net.Conn) (*gosmtp.Client, error) {
	client, err := gosmtp.NewClientStartTLS(conn, s.tlsConfig())
	if err != nil {
		return nil, err
	}
	if err := client.Hello(s.localName); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (s *SMTPService) tlsConfig() *tls.Config {
	cfg := &tls.Config{}
	if s.tlsBase != nil {
		cfg = s.tlsBase.Clone()
	}
	cfg.ServerName = s.cfg.SMTPHost
	cfg.MinVersion = tls.VersionTLS12
	return cfg
}

// senderAddress SMTP_FROM 不是 Email 時 (例如 "apikey") 改用 CONTACT_FROM
func (s *SMTPService) senderAddress(job *models.ContactMail) string {
	if strings.Contains(s.cfg.SMTPFrom, "@") {
		return s.cfg.SMTPFrom
	}
	return job.From
}

// Classify 區分連線類錯誤 (連線重置、逾時) 與一般發送錯誤
func (s *SMTPService) Classify(err error) models.FailureClass {
	return ClassifySMTPError(err)
}

// ClassifySMTPError 區分連線類錯誤與一般發送錯誤
func ClassifySMTPError(err error) models.FailureClass {
	if err == nil {
		return models.FailureGeneric
	}

	if errors.Is(err, ErrGreetingTimeout) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, syscall.ECONNRESET) {
		return models.FailureConnectivity
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.FailureConnectivity
	}

	// go-smtp 部分錯誤未以 %w 包裝
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection reset") || strings.Contains(msg, "i/o timeout") {
		return models.FailureConnectivity
	}

	return models.FailureGeneric
}

// buildSMTPMessage 以 go-message 組出純文字 MIME 郵件
func buildSMTPMessage(job *models.ContactMail, from, messageID string) ([]byte, error) {
	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Name: "Portfolio Contact", Address: from}})
	h.SetAddressList("To", []*mail.Address{{Address: job.To}})
	h.SetAddressList("Reply-To", []*mail.Address{{Name: job.SenderName, Address: job.ReplyTo}})
	h.SetSubject(job.Subject)
	h.SetMessageID(messageID)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, job.Text); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// domainOf 取得 Email 的網域部分
func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
