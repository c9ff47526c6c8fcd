package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/cardoctor/internal/auth"
	"github.com/hitoshi/cardoctor/internal/model"
)

// --- モック定義 ---

type mockVerifier struct {
	verifyFn func(token string) (model.Identity, error)
	calls    int
}

func (m *mockVerifier) Verify(token string) (model.Identity, error) {
	m.calls++
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return model.Identity{}, auth.ErrInvalidToken
}

type mockAuthRecorder struct {
	reasons []string
}

func (m *mockAuthRecorder) RecordAuthFailure(reason string) {
	m.reasons = append(m.reasons, reason)
}

func okHandler(t *testing.T, captured *model.Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Error("identity should be present in context")
		}
		if captured != nil {
			*captured = identity
		}
		w.WriteHeader(http.StatusOK)
	})
}

func failHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})
}

// --- テスト ---

func TestSessionMiddleware_ValidToken_InjectsIdentity(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(token string) (model.Identity, error) {
			if token == "valid-token" {
				return model.Identity{Email: "a@x.com"}, nil
			}
			return model.Identity{}, auth.ErrInvalidToken
		},
	}

	var captured model.Identity
	handler := NewSessionMiddleware(verifier, nil)(okHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "valid-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if captured.Email != "a@x.com" {
		t.Errorf("email = %q, want %q", captured.Email, "a@x.com")
	}
}

func TestSessionMiddleware_NoCookie_Returns401WithoutVerify(t *testing.T) {
	verifier := &mockVerifier{}
	rec := &mockAuthRecorder{}
	handler := NewSessionMiddleware(verifier, rec)(failHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if verifier.calls != 0 {
		t.Errorf("Verify called %d times, want 0", verifier.calls)
	}
	if len(rec.reasons) != 1 || rec.reasons[0] != "missing" {
		t.Errorf("reasons = %v, want [missing]", rec.reasons)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Message != "unauthorized access" {
		t.Errorf("message = %q, want %q", body.Message, "unauthorized access")
	}
}

func TestSessionMiddleware_EmptyCookie_Returns401WithoutVerify(t *testing.T) {
	verifier := &mockVerifier{}
	handler := NewSessionMiddleware(verifier, nil)(failHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: ""})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if verifier.calls != 0 {
		t.Errorf("Verify called %d times, want 0", verifier.calls)
	}
}

func TestSessionMiddleware_VerifyFailure_Returns401AndRecordsReason(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
	}{
		{"expired", fmt.Errorf("%w: %w", auth.ErrInvalidToken, auth.ErrTokenExpired), "expired"},
		{"signature", fmt.Errorf("%w: %w", auth.ErrInvalidToken, auth.ErrInvalidSignature), "invalid_signature"},
		{"malformed", fmt.Errorf("%w: %w", auth.ErrInvalidToken, auth.ErrMalformedToken), "malformed"},
		{"other", errors.New("boom"), "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &mockVerifier{
				verifyFn: func(string) (model.Identity, error) { return model.Identity{}, tt.err },
			}
			rec := &mockAuthRecorder{}
			handler := NewSessionMiddleware(verifier, rec)(failHandler(t))

			req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
			req.AddCookie(&http.Cookie{Name: "token", Value: "bad"})
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
			if len(rec.reasons) != 1 || rec.reasons[0] != tt.reason {
				t.Errorf("reasons = %v, want [%s]", rec.reasons, tt.reason)
			}
		})
	}
}

// 異なるシークレットで署名されたトークンは401となる。
func TestSessionMiddleware_TokenFromOtherSecret_Returns401(t *testing.T) {
	issuer, err := auth.NewTokenCodec(auth.TokenCodecConfig{Secret: []byte("secret-a")})
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	verifier, err := auth.NewTokenCodec(auth.TokenCodecConfig{Secret: []byte("secret-b")})
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	token, _, err := issuer.Issue(model.Identity{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	handler := NewSessionMiddleware(verifier, nil)(failHandler(t))
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestSessionMiddleware_RealCodec_ValidToken_Passes(t *testing.T) {
	codec, err := auth.NewTokenCodec(auth.TokenCodecConfig{Secret: []byte("secret-a")})
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	token, _, err := codec.Issue(model.Identity{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	var captured model.Identity
	handler := NewSessionMiddleware(codec, nil)(okHandler(t, &captured))
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if captured.Email != "a@x.com" {
		t.Errorf("email = %q", captured.Email)
	}
}

func TestIdentityFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := IdentityFromContext(req.Context()); ok {
		t.Error("identity should be absent")
	}
}

func TestContextWithIdentity_RoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := ContextWithIdentity(req.Context(), model.Identity{Email: "a@x.com"})

	identity, ok := IdentityFromContext(ctx)
	if !ok || identity.Email != "a@x.com" {
		t.Errorf("identity = %+v, ok = %v", identity, ok)
	}
}
