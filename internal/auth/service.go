// Package auth はセッショントークンの発行・検証とサインイン処理を提供する。
package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/cardoctor/internal/model"
)

// TokenIssuer はセッショントークン発行のインターフェース。
type TokenIssuer interface {
	Issue(identity model.Identity) (string, time.Time, error)
}

// Session はサインインで発行されたセッションを表す。
type Session struct {
	Token     string
	Identity  model.Identity
	ExpiresAt time.Time
}

// Service はサインインに関するビジネスロジックを提供する。
type Service struct {
	issuer TokenIssuer
}

// NewService はServiceを生成する。
func NewService(issuer TokenIssuer) *Service {
	return &Service{issuer: issuer}
}

// SignIn は識別情報を検証し、セッショントークンを発行する。
// emailが空の場合はBadRequestを返す。
func (s *Service) SignIn(ctx context.Context, identity model.Identity) (*Session, error) {
	identity.Email = strings.TrimSpace(identity.Email)
	if identity.Email == "" {
		return nil, model.NewBadRequestError("email is required")
	}

	token, expiresAt, err := s.issuer.Issue(identity)
	if err != nil {
		return nil, model.NewInternalError(err)
	}

	slog.InfoContext(ctx, "session issued",
		slog.String("email", identity.Email),
		slog.Time("expires_at", expiresAt),
	)

	return &Session{
		Token:     token,
		Identity:  identity,
		ExpiresAt: expiresAt,
	}, nil
}
