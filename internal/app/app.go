// Package app はプロセスの起動とサブコマンドの実行を提供する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/cardoctor/internal/auth"
	"github.com/hitoshi/cardoctor/internal/booking"
	"github.com/hitoshi/cardoctor/internal/catalog"
	"github.com/hitoshi/cardoctor/internal/config"
	"github.com/hitoshi/cardoctor/internal/database"
	"github.com/hitoshi/cardoctor/internal/handler"
	"github.com/hitoshi/cardoctor/internal/logger"
	"github.com/hitoshi/cardoctor/internal/metrics"
	"github.com/hitoshi/cardoctor/internal/middleware"
	"github.com/hitoshi/cardoctor/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間の上限。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, os.Getenv("LOG_LEVEL"))

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "5000"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("store", cfg.StoreDriver),
		slog.String("env", cfg.AppEnv),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// Stores はリクエスト処理に必要なストア一式。
type Stores struct {
	Services repository.ServiceRepository
	Bookings repository.BookingRepository
	Pinger   repository.Pinger

	close func() error
}

// Close はストアが保持する接続を解放する。
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStores は設定されたドライバーに応じてストアを開く。
// postgresの場合は起動時に1度だけ接続プールを開き、疎通を確認する。
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		services := repository.NewMemoryServiceRepo(repository.DemoServices()...)
		slog.Warn("using in-memory store; data is lost on restart")
		return &Stores{
			Services: services,
			Bookings: repository.NewMemoryBookingRepo(),
			Pinger:   services,
		}, nil
	}

	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	store := database.Store{DB: db}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	return &Stores{
		Services: repository.NewPostgresServiceRepo(db),
		Bookings: repository.NewPostgresBookingRepo(db),
		Pinger:   store,
		close:    db.Close,
	}, nil
}

// NewHandler は設定とストアから全依存関係をワイヤリングしたHTTPハンドラーを返す。
// 返却されるcleanupはバックグラウンド処理を停止するため、終了時に呼び出すこと。
func NewHandler(cfg *config.Config, stores *Stores) (http.Handler, func(), error) {
	// 1. トークン
	codec, err := auth.NewTokenCodec(auth.TokenCodecConfig{
		Secret: []byte(cfg.AccessTokenSecret),
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	// 2. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 3. ドメインサービス
	authService := auth.NewService(codec)
	catalogService := catalog.NewService(stores.Services)
	bookingService := booking.NewService(stores.Bookings,
		booking.WithOwnerChecks(cfg.BookingOwnerChecks),
		booking.WithRecorder(collector),
	)

	// 4. レート制限（configはreq/min単位）
	limiter := middleware.NewRateLimiter(middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral))

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:             slog.Default(),
		TokenVerifier:      codec,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
		Metrics:            collector,
		MetricsGatherer:    reg,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieSecure:   cfg.CookieSecure,
			CookieSameSite: cfg.CookieSameSite,
			SessionMaxAge:  int(codec.TTL().Seconds()),
		},

		CatalogService: catalogService,

		BookingService:     bookingService,
		BookingOwnerChecks: cfg.BookingOwnerChecks,

		Pinger: stores.Pinger,
	})

	if !cfg.BookingOwnerChecks {
		slog.Warn("booking owner checks are disabled; mutations accept unauthenticated requests")
	}

	return router, limiter.Stop, nil
}

// runServe はAPIサーバーモードで起動する。
// ストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	router, cleanup, err := NewHandler(cfg, stores)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return fmt.Errorf("migrate requires STORE_DRIVER=%s, got %q", config.StoreDriverPostgres, cfg.StoreDriver)
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
