package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/todoman/internal/model"
)

// frontendIndexPath はルートアクセス時のリダイレクト先。
const frontendIndexPath = "/frontend/index.html"

// HealthChecker はデータストアの疎通確認を行う。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// キャッシュの疎通状態。
const (
	cacheStatusOK          = "ok"
	cacheStatusUnavailable = "unavailable"
)

// healthResponse はヘルスチェックのレスポンス。
// Cacheはキャッシュが有効な場合のみ出力する。
type healthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache,omitempty"`
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	checker HealthChecker
	cache   HealthChecker
}

// NewHealthHandler はHealthHandlerを生成する。
// checkerがnilの場合は常に正常を返す。cacheがnilの場合はキャッシュ状態を出力しない。
func NewHealthHandler(checker, cache HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker, cache: cache}
}

// Health はデータベースへの疎通を確認して結果を返す。
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		if err := h.checker.Ping(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeAPIErrorResponse(w, http.StatusServiceUnavailable, &model.APIError{
				Code:     model.ErrCodeInternal,
				Message:  "データベースに接続できません。",
				Category: "system",
				Action:   "しばらく待ってから再度お試しください。",
			})
			return
		}
	}

	resp := healthResponse{Status: "ok"}
	if h.cache != nil {
		// キャッシュ障害時もDB参照で動作するため、状態の報告のみ行う
		resp.Cache = cacheStatusOK
		if err := h.cache.Ping(r.Context()); err != nil {
			slog.Warn("cache health check failed", slog.String("error", err.Error()))
			resp.Cache = cacheStatusUnavailable
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Home はフロントエンドのトップページへリダイレクトする。
// GET /
func Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, frontendIndexPath, http.StatusFound)
}

// NewStaticHandler は/frontend/配下の静的ファイルを配信するハンドラーを返す。
func NewStaticHandler(dir string) http.Handler {
	return http.StripPrefix("/frontend/", http.FileServer(http.Dir(dir)))
}
