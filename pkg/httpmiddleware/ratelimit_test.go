package httpmiddleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func hit(h http.Handler, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/analytics/track", nil)
	req.RemoteAddr = addr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 11, 18, 12, 0, 0, 0, time.UTC)}
	h := NewLimiter(RateLimitConfig{Max: 2, Window: time.Minute, Now: clock.Now}).Middleware()(okHandler())

	w := hit(h, "10.0.0.1:9999")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:9999").Code)

	w = hit(h, "10.0.0.1:9999")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "rate limit exceeded", body.Error)

	// Other clients have their own budget.
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1").Code)
}

func TestRateLimit_WindowSlides(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 11, 18, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(RateLimitConfig{Max: 2, Window: time.Minute, Now: clock.Now})
	h := l.Middleware()(okHandler())

	hit(h, "10.0.0.1:1")
	hit(h, "10.0.0.1:1")
	require.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1").Code)

	// Half way into the next window the previous two hits weigh one.
	clock.now = clock.now.Add(90 * time.Second)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1").Code)

	clock.now = clock.now.Add(3 * time.Minute)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
}

func TestLimiterSweep(t *testing.T) {
	now := time.Date(2024, 11, 18, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(RateLimitConfig{Max: 1, Window: time.Minute})
	_, _, ok := l.Allow("a", now)
	require.True(t, ok)

	l.Sweep(now.Add(time.Minute))
	assert.Len(t, l.clients, 1)
	l.Sweep(now.Add(2 * time.Minute))
	assert.Empty(t, l.clients)
}

func TestClientIP(t *testing.T) {
	for _, tt := range []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{name: "ForwardedFor", header: map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, remote: "9.9.9.9:1", want: "1.1.1.1"},
		{name: "RealIP", header: map[string]string{"X-Real-IP": "3.3.3.3"}, remote: "9.9.9.9:1", want: "3.3.3.3"},
		{name: "Remote", remote: "9.9.9.9:1", want: "9.9.9.9"},
		{name: "NoPort", remote: "pipe", want: "pipe"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
