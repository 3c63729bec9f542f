package contact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-relay/internal/models"
)

func body(name, email, message interface{}) map[string]interface{} {
	return map[string]interface{}{"name": name, "email": email, "message": message}
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		raw     interface{}
		wantErr error
	}{
		{"valid", body("Ana", "ana@x.co", "Hello, this is a test message."), nil},
		{"missing name", body("   ", "ana@x.co", "Hello, this is a test message."), ErrMissingFields},
		{"missing email wins over bad message", body("Ana", "", "short"), ErrMissingFields},
		{"missing message", body("Ana", "not-an-email", "\t\n"), ErrMissingFields},
		{"non-string name", body(42, "ana@x.co", "Hello, this is a test message."), ErrMissingFields},
		{"nested object message", body("Ana", "ana@x.co", map[string]interface{}{"a": "b"}), ErrMissingFields},
		{"not an object", []interface{}{"Ana"}, ErrMissingFields},
		{"null body", nil, ErrMissingFields},
		{"invalid email no at", body("Ana", "ana.x.co", "Hello, this is a test message."), ErrInvalidEmail},
		{"invalid email no dot", body("Ana", "ana@xco", "Hello, this is a test message."), ErrInvalidEmail},
		{"invalid email inner space", body("Ana", "an a@x.co", "Hello, this is a test message."), ErrInvalidEmail},
		{"invalid email double at", body("Ana", "ana@@x.co", "Hello, this is a test message."), ErrInvalidEmail},
		{"email padded with spaces", body("Ana", "  ana@x.co  ", "Hello, this is a test message."), nil},
		{"message nine chars", body("Ana", "ana@x.co", "123456789"), ErrMessageTooShort},
		{"message padded to ten", body("Ana", "ana@x.co", "   123456789   "), ErrMessageTooShort},
		{"message exactly ten", body("Ana", "ana@x.co", "1234567890"), nil},
		{"multibyte ten runes", body("Ana", "ana@x.co", "héllo wörl"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(req.Email), req.Email)
		})
	}
}

func TestParseRequestTrimsFields(t *testing.T) {
	req, err := ParseRequest(body("  Ana ", " ana@x.co ", "  Hello, this is a test message.  "))
	require.NoError(t, err)
	assert.Equal(t, models.ContactRequest{
		Name:    "Ana",
		Email:   "ana@x.co",
		Message: "Hello, this is a test message.",
	}, req)
}

func TestMessageLengthBoundary(t *testing.T) {
	for n := 0; n <= 12; n++ {
		msg := strings.Repeat("a", n)
		err := Validate(models.ContactRequest{Name: "Ana", Email: "ana@x.co", Message: msg})
		switch {
		case n == 0:
			assert.ErrorIs(t, err, ErrMissingFields, "length %d", n)
		case n < MinMessageLength:
			assert.ErrorIs(t, err, ErrMessageTooShort, "length %d", n)
		default:
			assert.NoError(t, err, "length %d", n)
		}
	}
}

func TestMessageLengthCountsUTF16Units(t *testing.T) {
	tests := []struct {
		name   string
		msg    string
		length int
		valid  bool
	}{
		{"five emoji", strings.Repeat("😀", 5), 10, true},
		{"four emoji", strings.Repeat("😀", 4), 8, false},
		{"nine cjk", strings.Repeat("你", 9), 9, false},
		{"ten cjk", strings.Repeat("你", 10), 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.length, messageLength(tt.msg))
			err := Validate(models.ContactRequest{Name: "Ana", Email: "ana@x.co", Message: tt.msg})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMessageTooShort)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	t.Run("strips disallowed characters from name and message only", func(t *testing.T) {
		sub, err := Sanitize(models.ContactRequest{
			Name:    `<b>"Ana"</b>`,
			Email:   "ana@x.co",
			Message: `It's <script>alert("x")</script> fine`,
		})
		require.NoError(t, err)
		assert.Equal(t, "bAna/b", sub.Name)
		assert.Equal(t, "Its scriptalert(x)/script fine", sub.Message)
		assert.Equal(t, "ana@x.co", sub.Email)
	})

	t.Run("name made only of disallowed characters", func(t *testing.T) {
		_, err := Sanitize(models.ContactRequest{Name: `<>"'`, Email: "ana@x.co", Message: "Hello, this is a test message."})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("message made only of disallowed characters", func(t *testing.T) {
		_, err := Sanitize(models.ContactRequest{Name: "Ana", Email: "ana@x.co", Message: `<<<<>>>>""''`})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"plain text",
		`<a href="x">link</a>`,
		`'''"""<<<>>>`,
		"mixed <é> 'ünicode'",
		"",
	}

	for _, in := range inputs {
		once := StripDisallowed(in)
		assert.Equal(t, once, StripDisallowed(once), "input %q", in)
		assert.NotContains(t, once, "<")
		assert.NotContains(t, once, "'")
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.c"))
	assert.True(t, IsValidEmail(" first.last+tag@sub.example.org "))
	assert.False(t, IsValidEmail("a@b"))
	assert.False(t, IsValidEmail("@b.c"))
	assert.False(t, IsValidEmail("a@.c"))
	assert.False(t, IsValidEmail(""))
}
