package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(rate float64, burst int) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return newLimiter(rate, burst, clock.now), clock
}

func TestTake_BurstThenDeny(t *testing.T) {
	limiter, _ := newTestLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if ok, _ := limiter.take("203.0.113.1"); !ok {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	ok, wait := limiter.take("203.0.113.1")
	if ok {
		t.Fatal("request exceeding burst should be denied")
	}
	if wait <= 0 || wait > time.Second {
		t.Errorf("expected wait within one token interval, got %v", wait)
	}
}

func TestTake_Replenishes(t *testing.T) {
	limiter, clock := newTestLimiter(2, 1)

	limiter.take("a")
	if ok, _ := limiter.take("a"); ok {
		t.Fatal("expected denial after exhausting burst")
	}

	clock.advance(500 * time.Millisecond)
	if ok, _ := limiter.take("a"); !ok {
		t.Error("expected a token after half a second at 2/s")
	}
}

func TestTake_TokensCappedAtBurst(t *testing.T) {
	limiter, clock := newTestLimiter(100, 2)

	limiter.take("a")
	clock.advance(time.Hour)

	allowed := 0
	for i := 0; i < 5; i++ {
		if ok, _ := limiter.take("a"); ok {
			allowed++
		}
	}
	if allowed != 2 {
		t.Errorf("expected burst of 2 after idling, got %d", allowed)
	}
}

func TestTake_KeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(1, 1)

	limiter.take("a")
	if ok, _ := limiter.take("b"); !ok {
		t.Error("a different client should have its own bucket")
	}
}

func TestSweep_ForgetsIdleClients(t *testing.T) {
	limiter, clock := newTestLimiter(1, 1)

	limiter.take("idle")
	clock.advance(idleTimeout / 2)
	limiter.take("active")
	clock.advance(idleTimeout/2 + time.Second)
	limiter.sweep()

	if _, ok := limiter.buckets["idle"]; ok {
		t.Error("expected idle client to be swept")
	}
	if _, ok := limiter.buckets["active"]; !ok {
		t.Error("expected recently seen client to be kept")
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote host without port", "192.0.2.10:53211", "", "192.0.2.10"},
		{"ipv6 remote", "[2001:db8::1]:443", "", "2001:db8::1"},
		{"forwarded single", "10.0.0.1:1234", "203.0.113.50", "203.0.113.50"},
		{"forwarded chain uses first hop", "10.0.0.1:1234", "203.0.113.50, 10.0.0.2", "203.0.113.50"},
		{"blank forwarded ignored", "192.0.2.10:1", " ", "192.0.2.10"},
		{"unparseable remote", "pipe", "", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientKey(r); got != tt.want {
				t.Errorf("clientKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMiddleware_RefusesOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(0.5, 1)
	calls := 0
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		// Different source ports from one host share a bucket.
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "192.0.2.10:" + string(rune('1'+i)) + "000"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, r)
	}

	if calls != 1 {
		t.Errorf("expected next handler called once, got %d", calls)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", last.Code)
	}
	if got := last.Header().Get("Retry-After"); got != "2" {
		t.Errorf("expected Retry-After 2 at 0.5 req/s, got %q", got)
	}
	if ct := last.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error, got Content-Type %q", ct)
	}
	if !strings.Contains(last.Body.String(), `"error":"too many requests"`) {
		t.Errorf("unexpected body %s", last.Body.String())
	}
}
