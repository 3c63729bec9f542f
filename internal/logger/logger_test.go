package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRequestWritesStructuredFields(t *testing.T) {
	buf := new(bytes.Buffer)
	log := NewWithWriter(buf, "info", "json").WithComponent("http").WithRequestID("req-1")

	log.HTTPRequest("POST", "/api/contact", 200, 15*time.Millisecond, "203.0.113.7")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http", entry["component"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, "HTTP request", entry["message"])
}

func TestLevelFiltering(t *testing.T) {
	buf := new(bytes.Buffer)
	log := NewWithWriter(buf, "warn", "json")

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInvalidLevelDefaultsToInfo(t *testing.T) {
	buf := new(bytes.Buffer)
	log := NewWithWriter(buf, "loud", "json")

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
