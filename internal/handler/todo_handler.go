package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/todoman/internal/middleware"
	"github.com/hitoshi/todoman/internal/model"
)

// TodoServiceInterface はTodoハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	ListTodos(ctx context.Context, username string) ([]todoResponse, error)
	FilterTodos(ctx context.Context, username string, completed bool) ([]todoResponse, error)
	CreateTodo(ctx context.Context, username, task string, completed bool) (*todoResponse, error)
	UpdateTodo(ctx context.Context, username, todoID, task string, completed bool) (*todoResponse, error)
	ToggleTodo(ctx context.Context, username, todoID string) (*todoResponse, error)
	DeleteTodo(ctx context.Context, username, todoID string) error
	DeleteCompletedTodos(ctx context.Context, username string) (int64, error)
}

// todoResponse はTodoのJSONレスポンス。
type todoResponse struct {
	ID          string    `json:"id"`
	Task        string    `json:"task"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UserID      string    `json:"userId"`
}

// todoRequest はTodo作成・更新のリクエストボディ。
type todoRequest struct {
	Task        string `json:"task"`
	IsCompleted bool   `json:"isCompleted"`
}

// deleteCompletedResponse は完了済みTodo一括削除のレスポンス。
type deleteCompletedResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// TodoHandler はTodo管理のHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(service TodoServiceInterface) *TodoHandler {
	return &TodoHandler{service: service}
}

// ListTodos は呼び出し元のTodo一覧を返す。
// GET /api/todos
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	todos, err := h.service.ListTodos(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// FilterTodos は完了状態で絞り込んだTodo一覧を返す。
// GET /api/todos/filter?isCompleted=true
func (h *TodoHandler) FilterTodos(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	raw := r.URL.Query().Get("isCompleted")
	if raw == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("isCompletedパラメータは必須です"))
		return
	}
	completed, err := strconv.ParseBool(raw)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("isCompletedはtrueまたはfalseで指定してください"))
		return
	}

	todos, err := h.service.FilterTodos(r.Context(), username, completed)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// CreateTodo は新しいTodoを作成する。
// POST /api/todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	var req todoRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	todo, err := h.service.CreateTodo(r.Context(), username, req.Task, req.IsCompleted)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// UpdateTodo はTodoのタスクと完了状態を更新する。
// PUT /api/todos/{id}
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	todoID := chi.URLParam(r, "id")

	var req todoRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	todo, err := h.service.UpdateTodo(r.Context(), username, todoID, req.Task, req.IsCompleted)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// ToggleTodo はTodoの完了状態を反転する。
// PATCH /api/todos/{id}/toggle
func (h *TodoHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	todo, err := h.service.ToggleTodo(r.Context(), username, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// DeleteTodo はTodoを削除する。
// DELETE /api/todos/{id}
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTodo(r.Context(), username, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCompletedTodos は呼び出し元の完了済みTodoを一括削除する。
// DELETE /api/todos/completed
func (h *TodoHandler) DeleteCompletedTodos(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteCompletedTodos(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteCompletedResponse{
		Message: "完了済みのTodoを削除しました。",
		Deleted: deleted,
	})
}

// requireUsername はコンテキストから認証済みユーザー名を取り出す。
// 存在しない場合は401を書き込みfalseを返す。
func requireUsername(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, err := middleware.UsernameFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return "", false
	}
	return username, true
}
