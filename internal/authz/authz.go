// Package authz はリソース所有者の判定を提供する。
package authz

import (
	"errors"

	"github.com/hitoshi/cardoctor/internal/model"
)

// ErrForbidden は呼び出し元がリソースの所有者でない場合のエラー。
var ErrForbidden = errors.New("caller does not own the resource")

// Authorize は識別情報のemailが所有者emailと完全一致するかを判定する。
// 大文字小文字の正規化は行わない。emailが空の識別情報はどの所有者にも一致しない。
func Authorize(identity model.Identity, owner string) error {
	if identity.Email == "" || identity.Email != owner {
		return ErrForbidden
	}
	return nil
}
