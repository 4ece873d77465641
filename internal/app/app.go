// Package app はプロセスの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"database/sql"
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/todoman/internal/auth"
	"github.com/hitoshi/todoman/internal/cache"
	"github.com/hitoshi/todoman/internal/config"
	"github.com/hitoshi/todoman/internal/database"
	"github.com/hitoshi/todoman/internal/handler"
	"github.com/hitoshi/todoman/internal/logger"
	"github.com/hitoshi/todoman/internal/metrics"
	"github.com/hitoshi/todoman/internal/repository"
	"github.com/hitoshi/todoman/internal/security"
	"github.com/hitoshi/todoman/internal/todo"
)

// minJWTSecretBytes はHS512の署名鍵として推奨する最小バイト数。
const minJWTSecretBytes = 32

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	if len(cfg.JWTSecretKey) < minJWTSecretBytes {
		slog.Warn("JWT_SECRET_KEY is shorter than recommended",
			slog.Int("length", len(cfg.JWTSecretKey)),
			slog.Int("recommended", minJWTSecretBytes),
		)
	}

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
			port = "8080"
		}
		return runHealthcheck(port)
	}

	var migrateOpts MigrateOptions
	if cmd == CommandMigrate {
		opts, err := ParseMigrateOptions(args[1:])
		if err != nil {
			return fmt.Errorf("invalid migrate arguments: %w", err)
		}
		migrateOpts = opts
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg, migrateOpts)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "todoman"),
	)
	collector := metrics.NewCollector(reg)

	// 3. 依存関係の構築
	router, closeCache := buildRouter(context.Background(), cfg, db, collector, reg)
	defer closeCache()

	// 4. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	case <-stop:
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// buildRouter はリポジトリ・サービス・ハンドラーを組み立ててルーターを返す。
// 戻り値の関数はRedis接続を閉じる。
func buildRouter(
	ctx context.Context,
	cfg *config.Config,
	db *sql.DB,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
) (http.Handler, func()) {
	// リポジトリ
	userRepo := repository.NewPostgresUserRepo(db)
	todoRepo := repository.NewPostgresTodoRepo(db)

	// セキュリティ
	hasher := security.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService(cfg.JWTSecretKey, cfg.JWTExpiration)

	// ドメインサービス
	authService := auth.NewService(userRepo, hasher, tokens)

	todoOpts := []todo.Option{todo.WithMetrics(collector)}
	closeCache := func() {}
	var cacheChecker handler.HealthChecker
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			// キャッシュは任意のため、接続できなくてもDB参照のみで起動する
			slog.Warn("caller cache disabled",
				slog.String("redis_url", maskURL(cfg.RedisURL)),
				slog.String("error", err.Error()),
			)
		} else {
			slog.Info("caller cache enabled", slog.Duration("ttl", cfg.CallerCacheTTL))
			callerCache := cache.NewCallerIDCache(client, cfg.CallerCacheTTL)
			todoOpts = append(todoOpts, todo.WithCallerCache(callerCache))
			cacheChecker = callerCache
			closeCache = func() {
				if err := client.Close(); err != nil {
					slog.Warn("failed to close redis client", slog.String("error", err.Error()))
				}
			}
		}
	}
	todoService := todo.NewService(todoRepo, userRepo, todoOpts...)

	deps := &handler.RouterDeps{
		TokenVerifier:      tokens,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:             slog.Default(),

		HealthChecker: database.NewHealthChecker(db),
		CacheChecker:  cacheChecker,
		Metrics:       collector,
		Gatherer:      gatherer,

		AuthService: handler.NewAuthServiceAdapter(authService),
		TodoService: handler.NewTodoServiceAdapter(todoService),

		StaticDir: cfg.StaticDir,
	}

	return handler.NewRouter(deps), closeCache
}

// runMigrate はデータベースマイグレーションを実行する。
// upの場合は全ての未適用マイグレーションを、downの場合は指定件数をロールバックする。
func runMigrate(cfg *config.Config, opts MigrateOptions) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskURL(cfg.DatabaseURL)),
		slog.String("direction", string(opts.Direction)),
	)

	if opts.Direction == MigrateDown {
		if err := database.RollbackMigrations(cfg.DatabaseURL, opts.Steps); err != nil {
			return fmt.Errorf("migration rollback failed: %w", err)
		}
		slog.Info("database migrations rolled back", slog.Int("steps", opts.Steps))
		return nil
	}

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
	endpoint := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskURL は接続URLの認証情報をマスクする。
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	return u.Redacted()
}
