// internal/config/config.go
// 設定模組 - 載入環境變數

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
)

// Mail API 供應商名稱
const (
	VendorSendGrid = "sendgrid"
	VendorResend   = "resend"
	VendorMailgun  = "mailgun"
	VendorGraph    = "graph"
)

// SMTPSecurePort 使用隱含 TLS 的 SMTP 埠號
const SMTPSecurePort = 465

// Config 應用程式設定
type Config struct {
	// 環境
	Env       string
	APIPort   string
	LogLevel  string
	LogFormat string

	// 收件與寄件
	ContactTo            string
	ContactFrom          string
	ContactFallbackEmail string

	// Mail API
	MailAPIVendor   string
	SendGridAPIKey  string
	SendGridBaseURL string
	ResendAPIKey    string
	ResendBaseURL   string
	MailgunAPIKey   string
	MailgunDomain   string
	MailgunRegion   string
	MailgunBaseURL  string

	// Microsoft OAuth 2.0 (Graph sendMail)
	MicrosoftTenantID     string
	MicrosoftClientID     string
	MicrosoftClientSecret string

	// EmailJS
	EmailJSServiceID  string
	EmailJSTemplateID string
	EmailJSPublicKey  string
	EmailJSBaseURL    string

	// SMTP 直連
	SMTPHost            string
	SMTPPort            int
	SMTPUser            string
	SMTPPassword        string
	SMTPFrom            string
	SMTPConnectTimeout  time.Duration
	SMTPGreetingTimeout time.Duration
	SMTPSocketTimeout   time.Duration

	// 儲存
	SupabaseURL string
	SupabaseKey string
	DatabaseURL string

	// KeyDB (預覽快取)
	KeyDBURL        string
	KeyDBPassword   string
	KeyDBPreviewTTL time.Duration

	// 逾時
	ProviderTimeout time.Duration
	StoreTimeout    time.Duration

	// 開發用 SMTP Sink
	SMTPSinkPort           string
	SMTPSinkMaxMessageSize int // MB
}

// Load 載入設定
func Load() *Config {
	// 嘗試載入 .env 檔案 (開發環境)
	_ = godotenv.Load()

	contactTo := getEnv("CONTACT_TO", "")

	return &Config{
		// 環境
		Env:       getEnv("APP_ENV", "development"),
		APIPort:   getEnv("API_PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// 收件與寄件
		ContactTo:            contactTo,
		ContactFrom:          getEnv("CONTACT_FROM", contactTo),
		ContactFallbackEmail: getEnv("CONTACT_FALLBACK_EMAIL", contactTo),

		// Mail API
		MailAPIVendor:   strings.ToLower(getEnv("MAIL_API_VENDOR", "")),
		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		SendGridBaseURL: getEnv("SENDGRID_BASE_URL", "https://api.sendgrid.com"),
		ResendAPIKey:    getEnv("RESEND_API_KEY", ""),
		ResendBaseURL:   getEnv("RESEND_BASE_URL", "https://api.resend.com/"),
		MailgunAPIKey:   getEnv("MAILGUN_API_KEY", ""),
		MailgunDomain:   getEnv("MAILGUN_DOMAIN", ""),
		MailgunRegion:   strings.ToLower(getEnv("MAILGUN_REGION", "us")),
		MailgunBaseURL:  getEnv("MAILGUN_BASE_URL", ""),

		// Microsoft OAuth 2.0
		MicrosoftTenantID:     getEnv("MICROSOFT_TENANT_ID", ""),
		MicrosoftClientID:     getEnv("MICROSOFT_CLIENT_ID", ""),
		MicrosoftClientSecret: getEnv("MICROSOFT_CLIENT_SECRET", ""),

		// EmailJS (相容 NEXT_PUBLIC_ 前綴)
		EmailJSServiceID:  getEnvAny("", "EMAILJS_SERVICE_ID", "NEXT_PUBLIC_EMAILJS_SERVICE_ID"),
		EmailJSTemplateID: getEnvAny("", "EMAILJS_TEMPLATE_ID", "NEXT_PUBLIC_EMAILJS_TEMPLATE_ID"),
		EmailJSPublicKey:  getEnvAny("", "EMAILJS_PUBLIC_KEY", "NEXT_PUBLIC_EMAILJS_PUBLIC_KEY", "EMAILJS_USER"),
		EmailJSBaseURL:    getEnv("EMAILJS_BASE_URL", "https://api.emailjs.com"),

		// SMTP 直連
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:            getEnv("SMTP_USER", ""),
		SMTPPassword:        NormalizeSecret(getEnv("SMTP_PASS", "")),
		SMTPFrom:            getEnv("SMTP_FROM", getEnv("SMTP_USER", "")),
		SMTPConnectTimeout:  getEnvAsSeconds("SMTP_CONNECT_TIMEOUT_SECONDS", 10),
		SMTPGreetingTimeout: getEnvAsSeconds("SMTP_GREETING_TIMEOUT_SECONDS", 10),
		SMTPSocketTimeout:   getEnvAsSeconds("SMTP_SOCKET_TIMEOUT_SECONDS", 15),

		// 儲存
		SupabaseURL: strings.TrimRight(getEnvAny("", "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"), "/"),
		SupabaseKey: getEnvAny("", "SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		// KeyDB
		KeyDBURL:        getEnv("KEYDB_URL", ""),
		KeyDBPassword:   getEnv("KEYDB_PASSWORD", ""),
		KeyDBPreviewTTL: time.Duration(getEnvAsInt("KEYDB_PREVIEW_TTL_HOURS", 24)) * time.Hour,

		// 逾時
		ProviderTimeout: getEnvAsSeconds("PROVIDER_TIMEOUT_SECONDS", 15),
		StoreTimeout:    getEnvAsSeconds("STORE_TIMEOUT_SECONDS", 10),

		// 開發用 SMTP Sink
		SMTPSinkPort:           getEnv("SMTP_SINK_PORT", "1025"),
		SMTPSinkMaxMessageSize: getEnvAsInt("SMTP_SINK_MAX_MESSAGE_SIZE_MB", 10),
	}
}

// IsProduction 是否為正式環境
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "production", "prod":
		return true
	}
	return false
}

// MailAPIConfigured 回傳實際使用的 Mail API 供應商
// MAIL_API_VENDOR 有設定時只看該供應商，否則依 SendGrid → Resend → Mailgun → Graph 順序取第一個有金鑰者
func (c *Config) MailAPIConfigured() (string, bool) {
	if c.ContactTo == "" || c.ContactFrom == "" {
		return c.MailAPIVendor, false
	}

	if c.MailAPIVendor != "" {
		return c.MailAPIVendor, c.vendorHasKey(c.MailAPIVendor)
	}

	for _, vendor := range []string{VendorSendGrid, VendorResend, VendorMailgun, VendorGraph} {
		if c.vendorHasKey(vendor) {
			return vendor, true
		}
	}
	return "", false
}

func (c *Config) vendorHasKey(vendor string) bool {
	switch vendor {
	case VendorSendGrid:
		return c.SendGridAPIKey != ""
	case VendorResend:
		return c.ResendAPIKey != ""
	case VendorMailgun:
		return c.MailgunAPIKey != "" && c.MailgunDomain != ""
	case VendorGraph:
		return c.MicrosoftTenantID != "" && c.MicrosoftClientID != "" && c.MicrosoftClientSecret != ""
	}
	return false
}

// EmailJSConfigured EmailJS 所需識別碼是否齊全
func (c *Config) EmailJSConfigured() bool {
	return c.EmailJSServiceID != "" && c.EmailJSTemplateID != "" && c.EmailJSPublicKey != "" && c.ContactTo != ""
}

// SMTPConfigured SMTP 直連所需設定是否齊全
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPPort > 0 && c.SMTPUser != "" && c.SMTPPassword != "" && c.ContactTo != ""
}

// SupabaseConfigured Supabase 儲存是否已設定
func (c *Config) SupabaseConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// StoreConfigured 是否有任何儲存後端
func (c *Config) StoreConfigured() bool {
	return c.SupabaseConfigured() || c.DatabaseURL != ""
}

// AnyProviderConfigured 是否至少有一個通知供應商
func (c *Config) AnyProviderConfigured() bool {
	_, mailAPI := c.MailAPIConfigured()
	return mailAPI || c.EmailJSConfigured() || c.SMTPConfigured()
}

// NormalizeSecret 移除密碼中的空白與破折號
// Gmail App Password 以 "abcd efgh ijkl mnop" 或 "abcd-efgh-..." 格式發放
func NormalizeSecret(secret string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, secret)
}

// getEnv 取得環境變數，若不存在則回傳預設值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAny 依序取得第一個有值的環境變數
func getEnvAny(defaultValue string, keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}

// getEnvAsInt 取得環境變數並轉換為整數
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsSeconds 取得以秒為單位的逾時設定
func getEnvAsSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
}
