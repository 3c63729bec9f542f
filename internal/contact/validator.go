// internal/contact/validator.go
// 聯絡表單驗證與清理

package contact

import (
	"regexp"
	"strings"
	"unicode/utf16"

	"contact-relay/internal/models"
)

// MinMessageLength 訊息最少字元數 (trim 後，以 UTF-16 code unit 計，與瀏覽器端一致)
const MinMessageLength = 10

// ValidationError 表單驗證錯誤，Message 直接回傳給前端
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrMissingFields   = &ValidationError{Code: "missing_fields", Message: "Name, email, and message are required."}
	ErrInvalidEmail    = &ValidationError{Code: "invalid_email", Message: "Invalid email."}
	ErrMessageTooShort = &ValidationError{Code: "message_too_short", Message: "Message must be at least 10 characters."}
	ErrInvalidInput    = &ValidationError{Code: "invalid_input", Message: "Invalid input detected."}
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var stripDisallowed = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "")

// ParseRequest 將任意 JSON 值轉為 ContactRequest
// 非物件或非字串欄位一律視為空字串，不會因格式錯誤而 panic
func ParseRequest(raw interface{}) (models.ContactRequest, error) {
	fields, _ := raw.(map[string]interface{})

	req := models.ContactRequest{
		Name:    strings.TrimSpace(asString(fields["name"])),
		Email:   strings.TrimSpace(asString(fields["email"])),
		Message: strings.TrimSpace(asString(fields["message"])),
	}

	if err := Validate(req); err != nil {
		return models.ContactRequest{}, err
	}
	return req, nil
}

// Validate 依序檢查必填、Email 格式、訊息長度
func Validate(req models.ContactRequest) error {
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return ErrMissingFields
	}
	if !IsValidEmail(req.Email) {
		return ErrInvalidEmail
	}
	if messageLength(req.Message) < MinMessageLength {
		return ErrMessageTooShort
	}
	return nil
}

// messageLength 以 UTF-16 code unit 計算長度，BMP 以外的字元 (例如 emoji) 算 2
func messageLength(msg string) int {
	return len(utf16.Encode([]rune(msg)))
}

// IsValidEmail 簡易 Email 格式檢查
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// Sanitize 移除 Name 與 Message 中的 < > " ' 字元
// 若清理後欄位變空，代表輸入僅由不允許的字元組成
func Sanitize(req models.ContactRequest) (models.ContactSubmission, error) {
	sub := models.ContactSubmission{
		Name:    StripDisallowed(req.Name),
		Email:   req.Email,
		Message: StripDisallowed(req.Message),
	}

	if (req.Name != "" && sub.Name == "") || (req.Message != "" && sub.Message == "") {
		return models.ContactSubmission{}, ErrInvalidInput
	}
	return sub, nil
}

// StripDisallowed 移除 < > " ' 字元
func StripDisallowed(s string) string {
	return stripDisallowed.Replace(s)
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
