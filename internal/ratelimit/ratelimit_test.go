package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/headlines/internal/metrics"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAllowBurstThenRefill(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewClientLimiter(1, 2, WithClock(clock.Now), WithMetrics(metrics.New()))

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow("a") {
		t.Fatal("third request should be rejected")
	}
	if !l.Allow("b") {
		t.Fatal("other clients have their own bucket")
	}

	clock.Advance(time.Second)
	if !l.Allow("a") {
		t.Fatal("token should refill after one second")
	}
}

func TestCleanupRemovesIdleClients(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewClientLimiter(1, 1, WithClock(clock.Now), WithIdleTTL(time.Minute), WithMetrics(metrics.New()))

	l.Allow("old")
	clock.Advance(2 * time.Minute)
	l.Allow("new")

	if n := l.Cleanup(); n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	if l.Clients() != 1 {
		t.Fatalf("expected 1 client left, got %d", l.Clients())
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	l := NewClientLimiter(0.001, 1, WithMetrics(m))

	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	if w := do(); w.Code != http.StatusOK {
		t.Fatalf("first request: status %d", w.Code)
	}
	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status %d", w.Code)
	}
	if body := w.Body.String(); body != `{"error":"Too many requests"}` {
		t.Errorf("body = %s", body)
	}
	if m.RateLimited != 1 {
		t.Errorf("rate limited counter = %d", m.RateLimited)
	}
}
