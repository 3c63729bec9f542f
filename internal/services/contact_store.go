// internal/services/contact_store.go
// 聯絡訊息儲存 - Supabase REST 或 PostgreSQL

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

// ContactStore 聯絡訊息儲存介面
type ContactStore interface {
	// Insert 寫入一筆聯絡訊息
	Insert(ctx context.Context, msg *models.ContactMessage) error
	// Ping 檢查儲存是否可用
	Ping(ctx context.Context) error
	// Name 回傳儲存名稱
	Name() string
}

// NewContactStore 依設定建立儲存，Supabase 優先，皆未設定時回傳 nil
func NewContactStore(cfg *config.Config) (ContactStore, error) {
	if cfg.SupabaseConfigured() {
		return NewSupabaseStore(cfg), nil
	}

	if cfg.DatabaseURL != "" {
		db, err := OpenPostgres(cfg)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(db)
	}

	return nil, nil
}

// supabaseTablePath PostgREST 資料表端點
const supabaseTablePath = "/rest/v1/contact_messages"

// SupabaseStore 透過 Supabase PostgREST 寫入
type SupabaseStore struct {
	client *resty.Client
}

// supabaseRow 寫入 PostgREST 的資料列 (id 與 created_at 由資料庫產生)
type supabaseRow struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	UserAgent string `json:"user_agent,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
}

// NewSupabaseStore 建立 Supabase 儲存
func NewSupabaseStore(cfg *config.Config) *SupabaseStore {
	client := resty.New().
		SetBaseURL(cfg.SupabaseURL).
		SetTimeout(cfg.StoreTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("apikey", cfg.SupabaseKey).
		SetAuthToken(cfg.SupabaseKey)

	return &SupabaseStore{client: client}
}

// Name 回傳儲存名稱
func (s *SupabaseStore) Name() string {
	return "supabase"
}

// Insert 寫入一筆聯絡訊息
func (s *SupabaseStore) Insert(ctx context.Context, msg *models.ContactMessage) error {
	row := supabaseRow{
		Name:      msg.Name,
		Email:     msg.Email,
		Message:   msg.Message,
		UserAgent: msg.UserAgent,
		IPAddress: msg.IPAddress,
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody([]supabaseRow{row}).
		Post(supabaseTablePath)
	if err != nil {
		return fmt.Errorf("failed to reach Supabase: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("Supabase insert failed (status %d): %s", resp.StatusCode(), resp.String())
	}

	return nil
}

// Ping 檢查 PostgREST 是否回應
func (s *SupabaseStore) Ping(ctx context.Context) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("select", "id").
		SetQueryParam("limit", "1").
		Get(supabaseTablePath)
	if err != nil {
		return fmt.Errorf("failed to reach Supabase: %w", err)
	}
	if resp.StatusCode() >= 500 {
		return fmt.Errorf("Supabase unavailable (status %d)", resp.StatusCode())
	}
	return nil
}

// PostgresStore 透過 gorm 寫入 PostgreSQL
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres 開啟資料庫連線並設定連接池
func OpenPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn, err := postgresDSN(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	gormLogger := gormlogger.Default
	if cfg.IsProduction() {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// postgresDSN 將 postgres:// URL 轉為 key=value DSN，其他格式原樣回傳
func postgresDSN(databaseURL string) (string, error) {
	if !strings.HasPrefix(databaseURL, "postgres://") && !strings.HasPrefix(databaseURL, "postgresql://") {
		return databaseURL, nil
	}

	dsn, err := pq.ParseURL(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	return dsn, nil
}

// NewPostgresStore 建立 PostgreSQL 儲存並確保資料表存在
func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&models.ContactMessage{}); err != nil {
		return nil, fmt.Errorf("failed to migrate contact_messages: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Name 回傳儲存名稱
func (s *PostgresStore) Name() string {
	return "postgres"
}

// Insert 寫入一筆聯絡訊息
func (s *PostgresStore) Insert(ctx context.Context, msg *models.ContactMessage) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to insert contact message: %w", err)
	}
	return nil
}

// Ping 檢查資料庫連線
func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 關閉資料庫連線
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
