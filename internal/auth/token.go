// Package auth はセッショントークンの発行・検証とサインイン処理を提供する。
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hitoshi/cardoctor/internal/model"
)

// DefaultTokenTTL はセッショントークンの既定の有効期間（365日）。
const DefaultTokenTTL = 365 * 24 * time.Hour

// トークン検証エラー。
// 呼び出し側はErrInvalidTokenのみで判定し、個別の原因はログにのみ使用する。
var (
	ErrInvalidToken     = errors.New("invalid session token")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrTokenExpired     = errors.New("token is expired")
	ErrMalformedToken   = errors.New("token is malformed")
)

// ErrSecretRequired は署名用シークレットが未設定の場合のエラー。
var ErrSecretRequired = errors.New("token secret is required")

// sessionClaims はJWTに格納するクレーム。
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenCodecConfig はTokenCodecの設定。
type TokenCodecConfig struct {
	Secret []byte
	TTL    time.Duration    // 0の場合はDefaultTokenTTL
	Now    func() time.Time // nilの場合はtime.Now
}

// TokenCodec はHS256署名付きセッショントークンを発行・検証する。
// サーバー側にセッションストアは持たず、署名の正当性のみを根拠とする。
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec はTokenCodecを生成する。
func NewTokenCodec(cfg TokenCodecConfig) (*TokenCodec, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrSecretRequired
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{
		secret: cfg.Secret,
		ttl:    ttl,
		now:    now,
	}, nil
}

// TTL はトークンの有効期間を返す。
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue は識別情報を埋め込んだトークンを発行し、トークンと有効期限を返す。
// 同じ識別情報でも呼び出しごとに異なるトークンとなる（jtiを付与するため）。
func (c *TokenCodec) Issue(identity model.Identity) (string, time.Time, error) {
	issuedAt := c.now()
	expiresAt := issuedAt.Add(c.ttl)

	claims := sessionClaims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify はトークンの署名と有効期限を検証し、埋め込まれた識別情報を返す。
// 失敗時のエラーはすべてErrInvalidTokenに一致する。
func (c *TokenCodec) Verify(token string) (model.Identity, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, classify(err))
	}

	if strings.TrimSpace(claims.Email) == "" {
		return model.Identity{}, fmt.Errorf("%w: %w: email claim is missing", ErrInvalidToken, ErrMalformedToken)
	}

	return model.Identity{Email: claims.Email}, nil
}

// classify はjwtライブラリのエラーを署名不一致・期限切れ・形式不正のいずれかに分類する。
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
