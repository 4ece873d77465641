// Package todo はTodo管理のドメインロジックを提供する。
// 全ての操作は呼び出し元ユーザーの所有するTodoのみを対象とする。
package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// MaxTaskLength はタスク文字列の最大文字数。
const MaxTaskLength = 255

// Todo操作の種別。メトリクスのラベルに使用する。
const (
	OpList            = "list"
	OpCreate          = "create"
	OpUpdate          = "update"
	OpDelete          = "delete"
	OpFilter          = "filter"
	OpToggle          = "toggle"
	OpDeleteCompleted = "delete_completed"
)

// CallerCache はユーザー名からユーザーIDへの対応をキャッシュする。
type CallerCache interface {
	Get(ctx context.Context, username string) (string, bool, error)
	Set(ctx context.Context, username, userID string) error
}

// MetricsRecorder はTodo操作のメトリクスを記録する。
type MetricsRecorder interface {
	RecordTodoOperation(op string)
	RecordTodosDeleted(count int)
}

// Service はTodo管理のサービス層。
type Service struct {
	todoRepo  repository.TodoRepository
	userRepo  repository.UserRepository
	cache     CallerCache
	metrics   MetricsRecorder
	now       func() time.Time
}

// Option はServiceの任意設定。
type Option func(*Service)

// WithCallerCache は呼び出し元IDのキャッシュを設定する。
func WithCallerCache(c CallerCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics はメトリクス記録先を設定する。
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	todoRepo repository.TodoRepository,
	userRepo repository.UserRepository,
	opts ...Option,
) *Service {
	s := &Service{
		todoRepo: todoRepo,
		userRepo: userRepo,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List は呼び出し元が所有する全Todoを返す。
func (s *Service) List(ctx context.Context, username string) ([]*model.Todo, error) {
	userID, err := s.resolveCaller(ctx, username)
	if err != nil {
		return nil, err
	}

	todos, err := s.todoRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Todo一覧の取得に失敗しました: %w", err)
	}
	s.record(OpList)
	return todos, nil
}

// Filter は呼び出し元のTodoのうち完了状態が一致するものを返す。
func (s *Service) Filter(ctx context.Context, username string, completed bool) ([]*model.Todo, error) {
	userID, err := s.resolveCaller(ctx, username)
	if err != nil {
		return nil, err
	}

	todos, err := s.todoRepo.ListByUserIDAndCompleted(ctx, userID, completed)
	if err != nil {
		return nil, fmt.Errorf("Todoの絞り込みに失敗しました: %w", err)
	}
	s.record(OpFilter)
	return todos, nil
}

// Create は呼び出し元を所有者とするTodoを作成する。
func (s *Service) Create(ctx context.Context, username, task string, completed bool) (*model.Todo, error) {
	userID, err := s.resolveCaller(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := validateTask(task); err != nil {
		return nil, err
	}

	todo := &model.Todo{
		ID:          uuid.New().String(),
		Task:        task,
		IsCompleted: completed,
		CreatedAt:   s.now(),
		UserID:      userID,
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("Todoの作成に失敗しました: %w", err)
	}

	s.record(OpCreate)
	return todo, nil
}

// Update はTodoのタスクと完了状態を上書きする。
func (s *Service) Update(ctx context.Context, username, todoID, task string, completed bool) (*model.Todo, error) {
	todo, err := s.findOwned(ctx, username, todoID)
	if err != nil {
		return nil, err
	}

	if err := validateTask(task); err != nil {
		return nil, err
	}

	todo.Task = task
	todo.IsCompleted = completed
	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, writeFailure(err, todoID, "Todoの更新に失敗しました")
	}

	s.record(OpUpdate)
	return todo, nil
}

// Toggle はTodoの完了状態を反転する。
func (s *Service) Toggle(ctx context.Context, username, todoID string) (*model.Todo, error) {
	todo, err := s.findOwned(ctx, username, todoID)
	if err != nil {
		return nil, err
	}

	toggled, err := s.todoRepo.Toggle(ctx, todo.ID, todo.UserID)
	if err != nil {
		return nil, writeFailure(err, todoID, "Todoの完了状態の更新に失敗しました")
	}

	s.record(OpToggle)
	return toggled, nil
}

// Delete はTodoを削除する。
func (s *Service) Delete(ctx context.Context, username, todoID string) error {
	todo, err := s.findOwned(ctx, username, todoID)
	if err != nil {
		return err
	}

	if err := s.todoRepo.DeleteByID(ctx, todo.ID, todo.UserID); err != nil {
		return writeFailure(err, todoID, "Todoの削除に失敗しました")
	}

	s.record(OpDelete)
	return nil
}

// DeleteCompleted は呼び出し元の完了済みTodoを一括削除し、削除件数を返す。
func (s *Service) DeleteCompleted(ctx context.Context, username string) (int64, error) {
	userID, err := s.resolveCaller(ctx, username)
	if err != nil {
		return 0, err
	}

	deleted, err := s.todoRepo.DeleteCompletedByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("完了済みTodoの一括削除に失敗しました: %w", err)
	}

	s.record(OpDeleteCompleted)
	if s.metrics != nil {
		s.metrics.RecordTodosDeleted(int(deleted))
	}
	slog.Info("completed todos deleted",
		slog.String("user_id", userID),
		slog.Int64("deleted", deleted),
	)
	return deleted, nil
}

// findOwned は呼び出し元を解決し、所有するTodoを取得する。
// 不在またはIDがUUID形式でない場合はTODO_NOT_FOUND、所有者が異なる場合はFORBIDDENを返す。
func (s *Service) findOwned(ctx context.Context, username, todoID string) (*model.Todo, error) {
	userID, err := s.resolveCaller(ctx, username)
	if err != nil {
		return nil, err
	}

	if _, err := uuid.Parse(todoID); err != nil {
		return nil, model.NewTodoNotFoundError(todoID)
	}

	todo, err := s.todoRepo.FindByID(ctx, todoID)
	if err != nil {
		return nil, fmt.Errorf("Todoの取得に失敗しました: %w", err)
	}
	if todo == nil {
		return nil, model.NewTodoNotFoundError(todoID)
	}
	if !todo.OwnedBy(userID) {
		slog.Warn("todo access denied",
			slog.String("todo_id", todoID),
			slog.String("username", username),
		)
		return nil, model.NewForbiddenError()
	}
	return todo, nil
}

// resolveCaller はユーザー名をユーザーIDに解決する。
// キャッシュを優先し、ミス時はusersテーブルを参照する。
// キャッシュの障害はDB参照にフォールバックする。
func (s *Service) resolveCaller(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", model.NewUnauthorizedError()
	}

	if s.cache != nil {
		id, ok, err := s.cache.Get(ctx, username)
		if err != nil {
			slog.Warn("caller cache lookup failed",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		} else if ok {
			return id, nil
		}
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return "", model.NewUnknownCallerError()
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, username, user.ID); err != nil {
			slog.Warn("caller cache store failed",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
	}
	return user.ID, nil
}

// validateTask はタスク文字列が空白のみでなく、MaxTaskLength文字以下であることを検証する。
// 文字列は送信されたまま保存し、表示側でエスケープする。
func validateTask(task string) error {
	if strings.TrimSpace(task) == "" {
		return model.NewValidationError("タスクは必須です")
	}
	if utf8.RuneCountInString(task) > MaxTaskLength {
		return model.NewValidationError(fmt.Sprintf("タスクは%d文字以下で指定してください", MaxTaskLength))
	}
	return nil
}

// writeFailure は書き込み時のエラーを変換する。
// 読み取り後に対象行が消えていた場合はTODO_NOT_FOUNDとする。
func writeFailure(err error, todoID, msg string) error {
	if errors.Is(err, repository.ErrTodoNotFound) {
		return model.NewTodoNotFoundError(todoID)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (s *Service) record(op string) {
	if s.metrics != nil {
		s.metrics.RecordTodoOperation(op)
	}
}
