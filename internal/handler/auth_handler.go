// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/todoman/internal/metrics"
	"github.com/hitoshi/todoman/internal/middleware"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*loginResponse, error)
	Validate(token string) error
}

// AuthMetricsRecorder は認証操作のメトリクスを記録する。
type AuthMetricsRecorder interface {
	RecordRegistration(result string)
	RecordLogin(result string)
}

// credentialsRequest は登録・ログインのリクエストボディ。
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse はログイン成功時のレスポンス。
// ExpiresAtはUNIXエポックからのミリ秒。
type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// AuthHandler はユーザー登録・ログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics AuthMetricsRecorder
}

// NewAuthHandler はAuthHandlerを生成する。
// metricsがnilの場合はメトリクスを記録しない。
func NewAuthHandler(service AuthServiceInterface, metrics AuthMetricsRecorder) *AuthHandler {
	return &AuthHandler{
		service: service,
		metrics: metrics,
	}
}

// Register は新規ユーザーを登録する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSONBody(w, r, &req) {
		h.recordRegistration(metrics.ResultFailure)
		return
	}

	if err := h.service.Register(r.Context(), req.Username, req.Password); err != nil {
		h.recordRegistration(metrics.ResultFailure)
		handleServiceError(w, err)
		return
	}

	h.recordRegistration(metrics.ResultSuccess)
	writeJSON(w, http.StatusOK, messageResponse{Message: "ユーザー登録が完了しました。"})
}

// Login は認証情報を検証しトークンを返す。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSONBody(w, r, &req) {
		h.recordLogin(metrics.ResultFailure)
		return
	}

	resp, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.recordLogin(metrics.ResultFailure)
		handleServiceError(w, err)
		return
	}

	h.recordLogin(metrics.ResultSuccess)
	writeJSON(w, http.StatusOK, resp)
}

// Validate はAuthorizationヘッダーのトークンが有効かを返す。
// GET /auth/validate
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.BearerToken(r)
	if err := h.service.Validate(token); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "トークンは有効です。"})
}

func (h *AuthHandler) recordRegistration(result string) {
	if h.metrics != nil {
		h.metrics.RecordRegistration(result)
	}
}

func (h *AuthHandler) recordLogin(result string) {
	if h.metrics != nil {
		h.metrics.RecordLogin(result)
	}
}
