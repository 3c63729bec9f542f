// pkg/microsoft/oauth.go
// Microsoft identity platform client credentials token，供 Graph sendMail 使用

package microsoft

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultAuthority Microsoft identity platform 端點
const DefaultAuthority = "https://login.microsoftonline.com"

// GraphScope Graph 應用程式權限的 scope
const GraphScope = "https://graph.microsoft.com/.default"

// refreshMargin 到期前多久視為失效
const refreshMargin = time.Minute

// ErrEmptyToken token 端點回應中沒有 access_token
var ErrEmptyToken = errors.New("token response did not contain an access token")

// Credentials 應用程式註冊的憑證
type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// Options token 端點設定，零值使用預設值
type Options struct {
	Authority string        // 預設 DefaultAuthority，主權雲或測試時覆寫
	Timeout   time.Duration // 預設 15 秒
}

// TokenSource 取得並快取 Graph access token
type TokenSource struct {
	creds  Credentials
	client *resty.Client

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// NewTokenSource 建立 TokenSource
func NewTokenSource(creds Credentials, opts Options) *TokenSource {
	if opts.Authority == "" {
		opts.Authority = DefaultAuthority
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	return &TokenSource{
		creds: creds,
		client: resty.New().
			SetBaseURL(strings.TrimRight(opts.Authority, "/")).
			SetTimeout(opts.Timeout),
	}
}

// IsConfigured 三項憑證是否齊全
func (s *TokenSource) IsConfigured() bool {
	return s.creds.TenantID != "" && s.creds.ClientID != "" && s.creds.ClientSecret != ""
}

// Token 回傳快取中的 token，快到期時重新取得
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if token, ok := s.cached(); ok {
		return token, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 等鎖期間可能已被其他 goroutine 更新
	if s.token != "" && time.Now().Add(refreshMargin).Before(s.expiresAt) {
		return s.token, nil
	}

	token, ttl, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	s.expiresAt = time.Now().Add(ttl)
	return token, nil
}

func (s *TokenSource) cached() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token != "" && time.Now().Add(refreshMargin).Before(s.expiresAt) {
		return s.token, true
	}
	return "", false
}

// fetch 以 client credentials grant 向 token 端點換取 token
func (s *TokenSource) fetch(ctx context.Context) (string, time.Duration, error) {
	var out tokenResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     s.creds.ClientID,
			"client_secret": s.creds.ClientSecret,
			"scope":         GraphScope,
			"grant_type":    "client_credentials",
		}).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/" + url.PathEscape(s.creds.TenantID) + "/oauth2/v2.0/token")
	if err != nil {
		return "", 0, fmt.Errorf("failed to request token: %w", err)
	}
	if resp.IsError() {
		return "", 0, fmt.Errorf("token request failed with status: %d", resp.StatusCode())
	}
	if out.AccessToken == "" {
		return "", 0, ErrEmptyToken
	}

	return out.AccessToken, time.Duration(out.ExpiresIn) * time.Second, nil
}
