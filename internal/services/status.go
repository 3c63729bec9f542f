// internal/services/status.go
// 服務設定狀態 (只回報是否設定，不含任何金鑰)

package services

import "contact-relay/internal/config"

// statusNote 狀態回應附註
const statusNote = "This endpoint reports availability of configured services (does not reveal secrets)."

// ServiceFlags 各服務是否已設定
type ServiceFlags struct {
	MailAPI bool `json:"mail_api"`
	EmailJS bool `json:"emailjs"`
	SMTP    bool `json:"smtp"`
	Store   bool `json:"store"`
}

// StatusReport 設定狀態回報
type StatusReport struct {
	OK            bool         `json:"ok"`
	Services      ServiceFlags `json:"services"`
	MailAPIVendor string       `json:"mail_api_vendor,omitempty"`
	Note          string       `json:"note"`
}

// BuildStatusReport 依設定產生狀態回報
func BuildStatusReport(cfg *config.Config) StatusReport {
	vendor, mailAPI := cfg.MailAPIConfigured()
	if !mailAPI {
		vendor = ""
	}

	return StatusReport{
		OK: true,
		Services: ServiceFlags{
			MailAPI: mailAPI,
			EmailJS: cfg.EmailJSConfigured(),
			SMTP:    cfg.SMTPConfigured(),
			Store:   cfg.StoreConfigured(),
		},
		MailAPIVendor: vendor,
		Note:          statusNote,
	}
}
