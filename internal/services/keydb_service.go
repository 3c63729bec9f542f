// internal/services/keydb_service.go
// KeyDB 預覽快取服務

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

// ErrPreviewNotFound 預覽不存在或已過期
var ErrPreviewNotFound = errors.New("preview not found")

// PreviewStore 郵件預覽存取介面
type PreviewStore interface {
	SavePreview(ctx context.Context, preview *models.MailPreview) error
	GetPreview(ctx context.Context, id string) (*models.MailPreview, error)
}

// PreviewService KeyDB 預覽服務
// 實作 PreviewStore interface
type PreviewService struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPreviewService 建立 KeyDB 預覽服務
// KEYDB_URL 可為 host:port 或 redis:// URL
func NewPreviewService(cfg *config.Config) (*PreviewService, error) {
	opts, err := keydbOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// 測試連接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to KeyDB: %w", err)
	}

	return &PreviewService{
		client: client,
		ttl:    cfg.KeyDBPreviewTTL,
	}, nil
}

func keydbOptions(cfg *config.Config) (*redis.Options, error) {
	if strings.HasPrefix(cfg.KeyDBURL, "redis://") || strings.HasPrefix(cfg.KeyDBURL, "rediss://") {
		opts, err := redis.ParseURL(cfg.KeyDBURL)
		if err != nil {
			return nil, fmt.Errorf("invalid KEYDB_URL: %w", err)
		}
		if opts.Password == "" {
			opts.Password = cfg.KeyDBPassword
		}
		return opts, nil
	}

	return &redis.Options{
		Addr:     cfg.KeyDBURL,
		Password: cfg.KeyDBPassword,
		DB:       0,
	}, nil
}

// PreviewKey 預覽在 KeyDB 的鍵值
func PreviewKey(id string) string {
	return fmt.Sprintf("mail:preview:%s", id)
}

// SavePreview 儲存郵件預覽
func (s *PreviewService) SavePreview(ctx context.Context, preview *models.MailPreview) error {
	data, err := json.Marshal(preview)
	if err != nil {
		return fmt.Errorf("failed to marshal preview: %w", err)
	}

	return s.client.Set(ctx, PreviewKey(preview.ID), data, s.ttl).Err()
}

// GetPreview 取得郵件預覽
func (s *PreviewService) GetPreview(ctx context.Context, id string) (*models.MailPreview, error) {
	data, err := s.client.Get(ctx, PreviewKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPreviewNotFound
		}
		return nil, fmt.Errorf("failed to get preview: %w", err)
	}

	var preview models.MailPreview
	if err := json.Unmarshal(data, &preview); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preview: %w", err)
	}

	return &preview, nil
}

// Ping 檢查連接
func (s *PreviewService) Ping(ctx context.Context) bool {
	return s.client.Ping(ctx).Err() == nil
}

// Close 關閉連接
func (s *PreviewService) Close() error {
	return s.client.Close()
}
