package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/todoman/internal/metrics"
	"github.com/hitoshi/todoman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier      middleware.TokenVerifier
	CORSAllowedOrigins []string
	Logger             *slog.Logger

	// 監視
	HealthChecker HealthChecker
	CacheChecker  HealthChecker // 呼び出し元キャッシュ（無効な場合はnil）
	Metrics       metrics.MetricsCollector
	Gatherer      prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface

	// Todo
	TodoService TodoServiceInterface

	// 静的ファイル（空の場合は配信しない）
	StaticDir string
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → Recovery → SecurityHeaders → Logging → Metrics → TokenAuth
//
// TokenAuthは許可リストのパスを検査しない。/api/* はさらに認証済みIDを必須とする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// CORS ミドルウェアを最上位に適用（プリフライトはゲートに到達しない）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(metrics.NewHTTPMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewTokenAuthMiddleware(deps.TokenVerifier))

	var authMetrics AuthMetricsRecorder
	if deps.Metrics != nil {
		authMetrics = deps.Metrics
	}
	authHandler := NewAuthHandler(deps.AuthService, authMetrics)
	todoHandler := NewTodoHandler(deps.TodoService)
	healthHandler := NewHealthHandler(deps.HealthChecker, deps.CacheChecker)

	// --- 認証不要のルート ---
	r.Get("/", Home)
	r.Get("/health", healthHandler.Health)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}
	if deps.StaticDir != "" {
		r.Handle("/frontend/*", NewStaticHandler(deps.StaticDir))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/validate", authHandler.Validate)
	})

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRequireIdentityMiddleware())

		r.Route("/api/todos", func(r chi.Router) {
			r.Get("/", todoHandler.ListTodos)
			r.Post("/", todoHandler.CreateTodo)
			r.Get("/filter", todoHandler.FilterTodos)
			r.Delete("/completed", todoHandler.DeleteCompletedTodos)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", todoHandler.UpdateTodo)
				r.Delete("/", todoHandler.DeleteTodo)
				r.Patch("/toggle", todoHandler.ToggleTodo)
			})
		})
	})

	return r
}
