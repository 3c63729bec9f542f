// internal/services/contact_recorder.go
// 聯絡訊息紀錄器 - 背景寫入，不阻塞請求

package services

import (
	"context"
	"sync"
	"time"

	"contact-relay/internal/logger"
	"contact-relay/internal/models"
)

// ContactRecorder 以背景 goroutine 寫入儲存
// 寫入失敗只記錄日誌，不影響回應
type ContactRecorder struct {
	store   ContactStore
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
}

// NewContactRecorder 建立紀錄器，store 為 nil 時 Record 不做任何事
func NewContactRecorder(store ContactStore, timeout time.Duration, log *logger.Logger) *ContactRecorder {
	return &ContactRecorder{
		store:   store,
		timeout: timeout,
		log:     log.WithComponent("contact_recorder"),
	}
}

// Enabled 是否有設定儲存
func (r *ContactRecorder) Enabled() bool {
	return r != nil && r.store != nil
}

// Record 背景寫入一筆聯絡訊息，立即返回
func (r *ContactRecorder) Record(sub models.ContactSubmission, meta models.RequestMeta) {
	if !r.Enabled() {
		return
	}

	msg := models.NewContactMessage(sub, meta)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error().Interface("panic", rec).Msg("contact message write panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.store.Insert(ctx, msg); err != nil {
			r.log.Warn().Err(err).Str("store", r.store.Name()).Msg("failed to record contact message")
			return
		}

		r.log.Debug().Str("store", r.store.Name()).Str("id", msg.ID.String()).Msg("contact message recorded")
	}()
}

// Wait 等待進行中的寫入完成，逾時回傳 false
func (r *ContactRecorder) Wait(timeout time.Duration) bool {
	if r == nil {
		return true
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
