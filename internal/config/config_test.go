package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONTACT_TO", "owner@example.com")

	cfg := Load()

	assert.Equal(t, "owner@example.com", cfg.ContactFrom)
	assert.Equal(t, "owner@example.com", cfg.ContactFallbackEmail)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 10*time.Second, cfg.SMTPConnectTimeout)
	assert.Equal(t, 10*time.Second, cfg.SMTPGreetingTimeout)
	assert.Equal(t, 15*time.Second, cfg.SMTPSocketTimeout)
	assert.Equal(t, 15*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 24*time.Hour, cfg.KeyDBPreviewTTL)
	assert.Equal(t, "https://api.emailjs.com", cfg.EmailJSBaseURL)
}

func TestLoadPublicPrefixedFallbacks(t *testing.T) {
	t.Setenv("NEXT_PUBLIC_EMAILJS_SERVICE_ID", "svc")
	t.Setenv("NEXT_PUBLIC_EMAILJS_TEMPLATE_ID", "tpl")
	t.Setenv("EMAILJS_USER", "pub")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "https://xyz.supabase.co/")
	t.Setenv("NEXT_PUBLIC_SUPABASE_ANON_KEY", "anon")
	t.Setenv("CONTACT_TO", "owner@example.com")

	cfg := Load()

	assert.True(t, cfg.EmailJSConfigured())
	assert.Equal(t, "https://xyz.supabase.co", cfg.SupabaseURL)
	assert.True(t, cfg.SupabaseConfigured())
	assert.True(t, cfg.StoreConfigured())
}

func TestLoadNormalizesSMTPPassword(t *testing.T) {
	t.Setenv("SMTP_PASS", "abcd efgh-ijkl\tmnop")

	assert.Equal(t, "abcdefghijklmnop", Load().SMTPPassword)
}

func TestNormalizeSecret(t *testing.T) {
	assert.Equal(t, "abcdefgh", NormalizeSecret(" ab-cd\nef gh "))
	assert.Equal(t, "", NormalizeSecret(" - "))
}

func TestIsProduction(t *testing.T) {
	for env, want := range map[string]bool{
		"production":  true,
		"prod":        true,
		"Production":  true,
		"development": false,
		"":            false,
	} {
		assert.Equal(t, want, (&Config{Env: env}).IsProduction(), env)
	}
}

func TestMailAPIConfigured(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantVendor string
		wantOK     bool
	}{
		{"none", Config{ContactTo: "a@b.co", ContactFrom: "a@b.co"}, "", false},
		{"sendgrid wins", Config{ContactTo: "a@b.co", ContactFrom: "a@b.co", SendGridAPIKey: "k", ResendAPIKey: "k"}, VendorSendGrid, true},
		{"mailgun needs domain", Config{ContactTo: "a@b.co", ContactFrom: "a@b.co", MailgunAPIKey: "k"}, "", false},
		{"mailgun", Config{ContactTo: "a@b.co", ContactFrom: "a@b.co", MailgunAPIKey: "k", MailgunDomain: "d"}, VendorMailgun, true},
		{"explicit vendor without key", Config{ContactTo: "a@b.co", ContactFrom: "a@b.co", MailAPIVendor: VendorResend, SendGridAPIKey: "k"}, VendorResend, false},
		{"no recipient", Config{SendGridAPIKey: "k"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendor, ok := tt.cfg.MailAPIConfigured()
			assert.Equal(t, tt.wantVendor, vendor)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestSMTPConfiguredRequiresAllKeys(t *testing.T) {
	cfg := Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "u", SMTPPassword: "p", ContactTo: "a@b.co"}
	assert.True(t, cfg.SMTPConfigured())
	assert.True(t, cfg.AnyProviderConfigured())

	cfg.ContactTo = ""
	assert.False(t, cfg.SMTPConfigured())
	assert.False(t, cfg.AnyProviderConfigured())
}
