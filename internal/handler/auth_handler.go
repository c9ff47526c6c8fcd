// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/cardoctor/internal/auth"
	"github.com/hitoshi/cardoctor/internal/middleware"
	"github.com/hitoshi/cardoctor/internal/model"
)

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 1 << 20

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignIn(ctx context.Context, identity model.Identity) (*auth.Session, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieSecure   bool
	CookieSameSite http.SameSite
	SessionMaxAge  int // セッションCookieの有効期間（秒）
}

// AuthHandler はサインイン・サインアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	if config.CookieSameSite == 0 {
		config.CookieSameSite = http.SameSiteStrictMode
	}
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// successResponse はサインイン・サインアウトの応答ボディ。
type successResponse struct {
	Success bool `json:"success"`
}

// SignIn は識別情報からセッショントークンを発行し、Cookieに設定する。
// POST /jwt
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var identity model.Identity
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&identity); err != nil {
		middleware.WriteError(w, r, model.NewBadRequestError("body must be a JSON object with an email"))
		return
	}

	session, err := h.service.SignIn(r.Context(), identity)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(session.Token, h.config.SessionMaxAge))
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// SignOut はセッションCookieを削除する。トークン自体は失効させない。
// POST /logOut
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: h.config.CookieSameSite,
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
