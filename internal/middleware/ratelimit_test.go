package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/hitoshi/cardoctor/internal/model"
)

func requestAs(email string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	if email == "" {
		return req
	}
	return req.WithContext(ContextWithIdentity(req.Context(), model.Identity{Email: email}))
}

func limitedHandler(rl *RateLimiter, count *int) http.Handler {
	return rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if count != nil {
			*count++
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimitMiddleware_AllowsRequestsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 2, Burst: 5, CleanupInterval: time.Minute})
	defer rl.Stop()

	calls := 0
	handler := limitedHandler(rl, &calls)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestAs("a@x.com"))
		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
	if calls != 5 {
		t.Errorf("handler call count = %d, want 5", calls)
	}
}

func TestRateLimitMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.5, Burst: 2, CleanupInterval: time.Minute})
	defer rl.Stop()

	handler := limitedHandler(rl, nil)

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestAs("a@x.com"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("a@x.com"))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil {
		t.Fatalf("Retry-After should be an integer: %v", err)
	}
	if retryAfter != 2 {
		t.Errorf("Retry-After = %d, want 2", retryAfter)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodeRateLimited {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeRateLimited)
	}
}

func TestRateLimitMiddleware_IsolatesIdentities(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	handler := limitedHandler(rl, nil)

	handler.ServeHTTP(httptest.NewRecorder(), requestAs("a@x.com"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("b@x.com"))
	if w.Code != http.StatusOK {
		t.Errorf("other identity: status = %d, want %d", w.Code, http.StatusOK)
	}
	if rl.LimiterCount() != 2 {
		t.Errorf("LimiterCount = %d, want 2", rl.LimiterCount())
	}
}

func TestRateLimitMiddleware_NoIdentity_Returns401(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	defer rl.Stop()

	w := httptest.NewRecorder()
	limitedHandler(rl, nil).ServeHTTP(w, requestAs(""))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRateLimiter_CleanupRemovesExpiredEntries(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 2, Burst: 5, CleanupInterval: time.Minute})
	defer rl.Stop()

	limitedHandler(rl, nil).ServeHTTP(httptest.NewRecorder(), requestAs("a@x.com"))
	if rl.LimiterCount() != 1 {
		t.Fatalf("LimiterCount = %d, want 1", rl.LimiterCount())
	}

	// TTLはCleanupIntervalの2倍
	rl.cleanup(time.Now().Add(time.Minute))
	if rl.LimiterCount() != 1 {
		t.Errorf("entry within TTL should remain")
	}
	rl.cleanup(time.Now().Add(3 * time.Minute))
	if rl.LimiterCount() != 0 {
		t.Errorf("LimiterCount = %d, want 0 after cleanup", rl.LimiterCount())
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	rl.Stop()
	rl.Stop()
}

func TestPerMinuteRateLimiterConfig(t *testing.T) {
	cfg := PerMinuteRateLimiterConfig(60)
	if cfg.Rate != 1 || cfg.Burst != 60 {
		t.Errorf("config = %+v", cfg)
	}

	def := DefaultRateLimiterConfig()
	if def.Rate != 2 || def.Burst != 120 || def.CleanupInterval != 5*time.Minute {
		t.Errorf("default config = %+v", def)
	}

	if got := PerMinuteRateLimiterConfig(0); got.Burst != 120 {
		t.Errorf("non-positive value should fall back to 120, got %+v", got)
	}
}
