package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/cardoctor/internal/model"
)

func TestRecoveryMiddleware_Panic_Returns500(t *testing.T) {
	handler := NewRecoveryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodeInternalError {
		t.Errorf("code = %q", body.Code)
	}
}

func TestSecurityHeadersMiddleware_SetsHeaders(t *testing.T) {
	handler := NewSecurityHeadersMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

// ロギング → セッション → 所有者確認 → レート制限の順で連結した場合の動作を検証する。
func TestMiddlewareChain_SessionOwnershipRateLimit(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(token string) (model.Identity, error) {
			return model.Identity{Email: token + "@x.com"}, nil
		},
	}
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 10, CleanupInterval: time.Minute})
	defer rl.Stop()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := NewLoggingMiddleware(logger)(
		NewSessionMiddleware(verifier, nil)(
			NewOwnershipMiddleware("email")(
				rl.Middleware()(final))))

	tests := []struct {
		name   string
		target string
		token  string
		want   int
	}{
		{"no cookie", "/bookings?email=a@x.com", "", http.StatusUnauthorized},
		{"owner", "/bookings?email=a@x.com", "a", http.StatusOK},
		{"other owner", "/bookings?email=b@x.com", "a", http.StatusForbidden},
		{"no filter", "/bookings", "a", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.token})
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to parse JSON log: %v", err)
			}
			if tt.token != "" && entry["email"] != tt.token+"@x.com" {
				t.Errorf("logged email = %v", entry["email"])
			}
		})
	}
}
