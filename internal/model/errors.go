// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, store, system
	Action   string // ユーザー向け対処方法

	// cause はログ用の内部原因。レスポンスには含めない。
	cause error
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は内部原因を返す。
func (e *APIError) Unwrap() error {
	return e.cause
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInvalidID     = "INVALID_ID"
	ErrCodeStoreError    = "STORE_ERROR"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// NewUnauthorizedError は認証失敗エラーを生成する。
// トークン欠落・署名不一致・期限切れのいずれでも同一の内容を返す。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "unauthorized access",
		Category: "auth",
		Action:   "Sign in again to obtain a new session.",
	}
}

// NewForbiddenError は所有者不一致エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "forbidden access",
		Category: "auth",
		Action:   "Only the owner of the resource can access it.",
	}
}

// NewBadRequestError はリクエスト内容が不正な場合のエラーを生成する。
func NewBadRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeBadRequest,
		Message:  fmt.Sprintf("invalid request: %s", reason),
		Category: "validation",
		Action:   "Check the request body and try again.",
	}
}

// NewInvalidIDError は識別子の形式が不正な場合のエラーを生成する。
func NewInvalidIDError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidID,
		Message:  fmt.Sprintf("invalid identifier: %q", id),
		Category: "validation",
		Action:   "Use the identifier returned by the server.",
	}
}

// NewStoreError は永続化層の失敗を表すエラーを生成する。
// causeはログ出力用に保持し、クライアントには返さない。
func NewStoreError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeStoreError,
		Message:  "the data store is unavailable",
		Category: "store",
		Action:   "Please wait and try again later.",
		cause:    cause,
	}
}

// NewInternalError は内部エラーを生成する。
func NewInternalError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeInternalError,
		Message:  "internal server error",
		Category: "system",
		Action:   "Please wait and try again later.",
		cause:    cause,
	}
}
