package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/cardoctor/internal/repository"
)

const rootBanner = "Doctor is running....."

// healthTimeout はヘルスチェック時のストア疎通確認の上限時間。
const healthTimeout = 2 * time.Second

// Root は稼働確認用の固定文字列を返す。
// GET /
func Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, rootBanner)
}

// NewHealthHandler はストアの疎通を確認するヘルスチェックハンドラーを返す。
// GET /health
func NewHealthHandler(pinger repository.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := pinger.Ping(ctx); err != nil {
				slog.ErrorContext(r.Context(), "health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
