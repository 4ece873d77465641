// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 認証操作の結果ラベル。
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// unmatchedRoute はルーティングされなかったリクエストのラベル。
// 生のパスをラベルにするとカーディナリティが発散するため集約する。
const unmatchedRoute = "unmatched"

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordRegistration(result string)
	RecordLogin(result string)
	RecordTodoOperation(op string)
	RecordTodosDeleted(count int)
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	todoOps       *prometheus.CounterVec
	todosDeleted  prometheus.Counter
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todoman_registrations_total",
			Help: "ユーザー登録の試行数（結果別）",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todoman_logins_total",
			Help: "ログインの試行数（結果別）",
		}, []string{"result"}),
		todoOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todoman_todo_operations_total",
			Help: "成功したTodo操作の数（操作種別）",
		}, []string{"operation"}),
		todosDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoman_completed_todos_deleted_total",
			Help: "一括削除された完了済みTodoの合計数",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todoman_http_requests_total",
			Help: "HTTPリクエスト数（メソッド・ルート・ステータスコード別）",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "todoman_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.todoOps,
		c.todosDeleted,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

// RecordRegistration はユーザー登録の結果を記録する。
func (c *Collector) RecordRegistration(result string) {
	c.registrations.WithLabelValues(result).Inc()
}

// RecordLogin はログインの結果を記録する。
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordTodoOperation は成功したTodo操作を記録する。
func (c *Collector) RecordTodoOperation(op string) {
	c.todoOps.WithLabelValues(op).Inc()
}

// RecordTodosDeleted は一括削除された件数を記録する。
func (c *Collector) RecordTodosDeleted(count int) {
	c.todosDeleted.Add(float64(count))
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// statusWriter はレスポンスのステータスコードを記録する。
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// NewHTTPMiddleware はリクエストをchiのルートパターン単位で記録するミドルウェアを返す。
// ルートパターンはハンドラー実行後に確定するため、記録は後続の処理後に行う。
func NewHTTPMiddleware(m MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			m.RecordHTTPRequest(r.Method, route, sw.status, time.Since(start))
		})
	}
}
