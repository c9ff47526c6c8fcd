// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/cardoctor/internal/auth"
	"github.com/hitoshi/cardoctor/internal/model"
)

// SessionCookieName はセッショントークンを保持するCookieの名前。
const SessionCookieName = "token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに識別情報を格納するためのキー。
var identityContextKey = contextKey("identity")

// TokenVerifier はセッショントークン検証のインターフェース。
type TokenVerifier interface {
	Verify(token string) (model.Identity, error)
}

// AuthFailureRecorder は認証失敗の理由を記録するインターフェース。
type AuthFailureRecorder interface {
	RecordAuthFailure(reason string)
}

// NewSessionMiddleware はCookieのセッショントークンを検証するミドルウェアを返す。
// 検証に成功した識別情報をリクエストコンテキストに注入する。
// トークンがない場合は検証を行わずに401を返す。検証失敗の理由はログとメトリクスにのみ残す。
func NewSessionMiddleware(verifier TokenVerifier, recorder AuthFailureRecorder) func(next http.Handler) http.Handler {
	record := func(string) {}
	if recorder != nil {
		record = recorder.RecordAuthFailure
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				record("missing")
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			identity, err := verifier.Verify(cookie.Value)
			if err != nil {
				reason := failureReason(err)
				record(reason)
				slog.WarnContext(r.Context(), "session token rejected",
					slog.String("reason", reason),
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			ctx := ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// failureReason は検証エラーをメトリクス用の理由ラベルに変換する。
func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, auth.ErrMalformedToken):
		return "malformed"
	default:
		return "invalid"
	}
}

// IdentityFromContext はリクエストコンテキストから識別情報を取得する。
// セッションミドルウェアを通過したリクエストでのみokがtrueとなる。
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	if !ok || identity.Email == "" {
		return model.Identity{}, false
	}
	return identity, true
}

// ContextWithIdentity はコンテキストに識別情報を注入する。
// 外側のロギングミドルウェアにも認証済みのemailを伝える。
func ContextWithIdentity(ctx context.Context, identity model.Identity) context.Context {
	if info, ok := ctx.Value(requestInfoContextKey).(*requestInfo); ok {
		info.email = identity.Email
	}
	return context.WithValue(ctx, identityContextKey, identity)
}
