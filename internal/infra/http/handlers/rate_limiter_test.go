package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Window(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))

	now = now.Add(2 * time.Minute)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	var rl *RateLimiter
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	assert.Equal(t, "203.0.113.9", clientIP(req))

	req.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", clientIP(req))
}

func TestParseAmount(t *testing.T) {
	v := parseAmount([]byte(`125.5`))
	if assert.NotNil(t, v) {
		assert.Equal(t, 125.5, *v)
	}
	v = parseAmount([]byte(`" 42 "`))
	if assert.NotNil(t, v) {
		assert.Equal(t, 42.0, *v)
	}
	assert.Nil(t, parseAmount(nil))
	assert.Nil(t, parseAmount([]byte(`null`)))
	assert.Nil(t, parseAmount([]byte(`""`)))
	assert.Nil(t, parseAmount([]byte(`true`)))
}
