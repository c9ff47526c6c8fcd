package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/cardoctor/internal/authz"
	"github.com/hitoshi/cardoctor/internal/model"
)

// NewOwnershipMiddleware はクエリパラメータの所有者emailと識別情報を照合するミドルウェアを返す。
// パラメータが存在し（空文字を含む）、識別情報と一致しない場合は403を返す。
// パラメータが存在しない場合は照合せずに通過させる。絞り込みの有無は後段が決める。
// SessionMiddlewareの後に配置すること。
func NewOwnershipMiddleware(param string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			values := r.URL.Query()
			if !values.Has(param) {
				next.ServeHTTP(w, r)
				return
			}

			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			if err := authz.Authorize(identity, values.Get(param)); err != nil {
				slog.WarnContext(r.Context(), "owner mismatch",
					slog.String("email", identity.Email),
					slog.String("requested", values.Get(param)),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
