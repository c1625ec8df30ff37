package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/scan", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RatePerMin: 60, Burst: 3})
	defer rl.Stop()
	router := newLimitedRouter(rl)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/scan", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, w.Code)
		}
	}
}

func TestRateLimiterZeroConfigUsesDefaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	defer rl.Stop()
	router := newLimitedRouter(rl)

	// A zero rate must fall back to the defaults instead of dividing
	// by zero while building the Retry-After header
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/scan", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", w.Code)
	}

	if rl.config.RatePerMin != DefaultRatePerMin {
		t.Errorf("rate: got %d, want %d", rl.config.RatePerMin, DefaultRatePerMin)
	}
	if rl.config.Burst != DefaultBurst {
		t.Errorf("burst: got %d, want %d", rl.config.Burst, DefaultBurst)
	}

	for i := 0; i < DefaultBurst; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/scan", nil))
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/scan", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After: got %q, want %q", w.Header().Get("Retry-After"), "1")
	}
}

func TestRateLimiterRejectsBeyondBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RatePerMin: 1, Burst: 2})
	defer rl.Stop()
	router := newLimitedRouter(rl)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/scan", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/scan", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestRateLimiterTracksClientsSeparately(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RatePerMin: 1, Burst: 1})
	defer rl.Stop()
	router := newLimitedRouter(rl)

	first := httptest.NewRequest(http.MethodPost, "/scan", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, first)
	if w.Code != http.StatusOK {
		t.Fatalf("first client: got %d, want 200", w.Code)
	}

	// Exhausting one client's bucket must not affect another
	second := httptest.NewRequest(http.MethodPost, "/scan", nil)
	second.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, second)
	if w.Code != http.StatusOK {
		t.Fatalf("second client: got %d, want 200", w.Code)
	}

	if rl.LimiterCount() != 2 {
		t.Errorf("tracked clients: got %d, want 2", rl.LimiterCount())
	}
}

func TestRateLimiterCleanupDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RatePerMin: 60, Burst: 1, CleanupInterval: 10 * time.Millisecond})
	defer rl.Stop()

	rl.getOrCreateLimiter("ip:10.0.0.1")
	if rl.LimiterCount() != 1 {
		t.Fatalf("tracked clients: got %d, want 1", rl.LimiterCount())
	}

	deadline := time.Now().Add(time.Second)
	for rl.LimiterCount() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if rl.LimiterCount() != 0 {
		t.Errorf("idle client not cleaned up, %d remaining", rl.LimiterCount())
	}
}
