package handler

import (
	"context"

	"github.com/hitoshi/todoman/internal/auth"
	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/todo"
)

// AuthServiceAdapter は auth.Service を AuthServiceInterface に適合させるアダプタ。
type AuthServiceAdapter struct {
	svc *auth.Service
}

// NewAuthServiceAdapter はAuthServiceAdapterを生成する。
func NewAuthServiceAdapter(svc *auth.Service) *AuthServiceAdapter {
	return &AuthServiceAdapter{svc: svc}
}

// Register は新規ユーザーを登録する。
func (a *AuthServiceAdapter) Register(ctx context.Context, username, password string) error {
	return a.svc.Register(ctx, username, password)
}

// Login はログインしトークンをhandlerレスポンス型で返す。
func (a *AuthServiceAdapter) Login(ctx context.Context, username, password string) (*loginResponse, error) {
	result, err := a.svc.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UnixMilli(),
	}, nil
}

// Validate はトークンを検証する。
func (a *AuthServiceAdapter) Validate(token string) error {
	return a.svc.Validate(token)
}

// TodoServiceAdapter は todo.Service を TodoServiceInterface に適合させるアダプタ。
type TodoServiceAdapter struct {
	svc *todo.Service
}

// NewTodoServiceAdapter はTodoServiceAdapterを生成する。
func NewTodoServiceAdapter(svc *todo.Service) *TodoServiceAdapter {
	return &TodoServiceAdapter{svc: svc}
}

// ListTodos は呼び出し元のTodo一覧をhandlerレスポンス型で返す。
func (a *TodoServiceAdapter) ListTodos(ctx context.Context, username string) ([]todoResponse, error) {
	todos, err := a.svc.List(ctx, username)
	if err != nil {
		return nil, err
	}
	return toTodoResponses(todos), nil
}

// FilterTodos は完了状態で絞り込んだTodo一覧をhandlerレスポンス型で返す。
func (a *TodoServiceAdapter) FilterTodos(ctx context.Context, username string, completed bool) ([]todoResponse, error) {
	todos, err := a.svc.Filter(ctx, username, completed)
	if err != nil {
		return nil, err
	}
	return toTodoResponses(todos), nil
}

// CreateTodo はTodoを作成しhandlerレスポンス型で返す。
func (a *TodoServiceAdapter) CreateTodo(ctx context.Context, username, task string, completed bool) (*todoResponse, error) {
	t, err := a.svc.Create(ctx, username, task, completed)
	if err != nil {
		return nil, err
	}
	resp := toTodoResponse(t)
	return &resp, nil
}

// UpdateTodo はTodoを更新しhandlerレスポンス型で返す。
func (a *TodoServiceAdapter) UpdateTodo(ctx context.Context, username, todoID, task string, completed bool) (*todoResponse, error) {
	t, err := a.svc.Update(ctx, username, todoID, task, completed)
	if err != nil {
		return nil, err
	}
	resp := toTodoResponse(t)
	return &resp, nil
}

// ToggleTodo は完了状態を反転しhandlerレスポンス型で返す。
func (a *TodoServiceAdapter) ToggleTodo(ctx context.Context, username, todoID string) (*todoResponse, error) {
	t, err := a.svc.Toggle(ctx, username, todoID)
	if err != nil {
		return nil, err
	}
	resp := toTodoResponse(t)
	return &resp, nil
}

// DeleteTodo はTodoを削除する。
func (a *TodoServiceAdapter) DeleteTodo(ctx context.Context, username, todoID string) error {
	return a.svc.Delete(ctx, username, todoID)
}

// DeleteCompletedTodos は完了済みTodoを一括削除し削除件数を返す。
func (a *TodoServiceAdapter) DeleteCompletedTodos(ctx context.Context, username string) (int64, error) {
	return a.svc.DeleteCompleted(ctx, username)
}

// toTodoResponse はmodel.TodoをJSONレスポンス型に変換する。
func toTodoResponse(t *model.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		Task:        t.Task,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UserID:      t.UserID,
	}
}

// toTodoResponses は空の場合も空配列としてシリアライズされるスライスを返す。
func toTodoResponses(todos []*model.Todo) []todoResponse {
	results := make([]todoResponse, len(todos))
	for i, t := range todos {
		results[i] = toTodoResponse(t)
	}
	return results
}
