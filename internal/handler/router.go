package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/cardoctor/internal/metrics"
	"github.com/hitoshi/cardoctor/internal/middleware"
	"github.com/hitoshi/cardoctor/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger             *slog.Logger
	TokenVerifier      middleware.TokenVerifier
	CORSAllowedOrigins []string
	RateLimiter        *middleware.RateLimiter
	Metrics            *metrics.Collector
	MetricsGatherer    prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// サービスカタログ
	CatalogService CatalogServiceInterface

	// 予約
	BookingService BookingServiceInterface
	// BookingOwnerChecks がtrueの場合、予約の変更操作もセッション必須とする。
	BookingOwnerChecks bool

	// ヘルスチェック
	Pinger repository.Pinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → Metrics → Session → Ownership → RateLimit
//
// サインイン・サービスカタログ・ヘルスチェックは認証なしで公開する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins))

	var authRecorder middleware.AuthFailureRecorder
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		authRecorder = deps.Metrics
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	serviceHandler := NewServiceHandler(deps.CatalogService)
	bookingHandler := NewBookingHandler(deps.BookingService)

	session := middleware.NewSessionMiddleware(deps.TokenVerifier, authRecorder)
	limit := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		limit = deps.RateLimiter.Middleware()
	}

	// --- 認証不要のルート ---

	r.Get("/", Root)
	r.Get("/health", NewHealthHandler(deps.Pinger))
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Post("/jwt", authHandler.SignIn)
	r.Post("/logOut", authHandler.SignOut)

	r.Route("/services", func(r chi.Router) {
		r.Get("/", serviceHandler.ListServices)
		r.Get("/{id}", serviceHandler.GetService)
	})

	// --- 予約 ---
	r.Route("/bookings", func(r chi.Router) {
		// 一覧はセッションと所有者照合が必須
		r.With(session, middleware.NewOwnershipMiddleware("email"), limit).Get("/", bookingHandler.ListBookings)

		// 変更操作は所有者判定が有効な場合のみセッション必須
		r.Group(func(r chi.Router) {
			if deps.BookingOwnerChecks {
				r.Use(session, limit)
			}
			r.Post("/", bookingHandler.CreateBooking)
			r.Patch("/{id}", bookingHandler.UpdateBookingStatus)
			r.Delete("/{id}", bookingHandler.DeleteBooking)
		})
	})

	return r
}
