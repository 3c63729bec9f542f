// internal/services/mail_router.go
// 郵件路由服務 - 依固定優先順序逐一嘗試通知供應商

package services

import (
	"context"
	"time"

	"contact-relay/internal/logger"
	"contact-relay/internal/models"
)

// FailureClassifier 可區分失敗類別的供應商 (目前為 SMTP)
type FailureClassifier interface {
	Classify(err error) models.FailureClass
}

// MailRouter 郵件路由服務
// 依序嘗試 Mail API → EmailJS → SMTP，第一個成功即停止
// 各次嘗試依序等待完成，不並行，避免同一封訊息重複寄出
type MailRouter struct {
	senders []MailSender
	timeout time.Duration
	log     *logger.Logger
}

// DeliveryReport 一次完整路由的結果
type DeliveryReport struct {
	Outcome  models.DeliveryOutcome   // 最終結果
	Attempts []models.DeliveryOutcome // 每個供應商的結果 (依順序)
}

// AnyAttempted 是否至少嘗試過一個已設定的供應商
func (r DeliveryReport) AnyAttempted() bool {
	for _, a := range r.Attempts {
		if a.Status != models.DeliveryNotConfigured {
			return true
		}
	}
	return false
}

// NewMailRouter 建立郵件路由服務，senders 依優先順序排列
func NewMailRouter(log *logger.Logger, timeout time.Duration, senders ...MailSender) *MailRouter {
	return &MailRouter{
		senders: senders,
		timeout: timeout,
		log:     log.WithComponent("mail_router"),
	}
}

// Senders 回傳供應商列表 (依優先順序)
func (r *MailRouter) Senders() []MailSender {
	return r.senders
}

// Attempt 嘗試單一供應商
// 使用與請求無關的 context，用戶端斷線不會中斷進行中的發送
func (r *MailRouter) Attempt(sender MailSender, job *models.ContactMail) models.DeliveryOutcome {
	if !sender.IsConfigured() {
		return models.DeliveryOutcome{Status: models.DeliveryNotConfigured, Provider: sender.Name()}
	}

	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	ref, err := sender.SendMail(ctx, job)
	if err != nil {
		class := models.FailureGeneric
		if classifier, ok := sender.(FailureClassifier); ok {
			class = classifier.Classify(err)
		}
		return models.DeliveryOutcome{
			Status:   models.DeliveryFailed,
			Provider: sender.Name(),
			Class:    class,
			Err:      err,
		}
	}

	return models.DeliveryOutcome{Status: models.DeliverySent, Provider: sender.Name(), Reference: ref}
}

// Deliver 依優先順序發送，回傳第一個成功的結果
// 全部未設定回傳 NotConfigured，有嘗試但全部失敗回傳最後一次的 Failed
func (r *MailRouter) Deliver(job *models.ContactMail) DeliveryReport {
	report := DeliveryReport{
		Outcome:  models.DeliveryOutcome{Status: models.DeliveryNotConfigured},
		Attempts: make([]models.DeliveryOutcome, 0, len(r.senders)),
	}

	for _, sender := range r.senders {
		outcome := r.Attempt(sender, job)
		report.Attempts = append(report.Attempts, outcome)

		switch outcome.Status {
		case models.DeliveryNotConfigured:
			r.log.Debug().Str("provider", outcome.Provider).Msg("provider not configured, skipping")

		case models.DeliveryFailed:
			r.log.Warn().
				Err(outcome.Err).
				Str("provider", outcome.Provider).
				Str("failure_class", string(outcome.Class)).
				Msg("provider failed, trying next")
			report.Outcome = outcome

		case models.DeliverySent:
			r.log.Info().
				Str("provider", outcome.Provider).
				Str("reference", outcome.Reference).
				Msg("contact message delivered")
			report.Outcome = outcome
			return report
		}
	}

	if !report.AnyAttempted() {
		r.log.Warn().Msg("no notification provider configured")
	} else {
		r.log.Error().Str("last_provider", report.Outcome.Provider).Msg("all configured providers failed")
	}

	return report
}
