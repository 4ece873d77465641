package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/todoman/internal/model"
)

const todoColumns = `id, task, is_completed, created_at, user_id`

// PostgresTodoRepo はPostgreSQLを使用したTodoリポジトリ。
type PostgresTodoRepo struct {
	db *sql.DB
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sql.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

// FindByID は指定IDのTodoを取得する。見つからない場合はnilを返す。
func (r *PostgresTodoRepo) FindByID(ctx context.Context, id string) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1`,
		id,
	).Scan(&todo.ID, &todo.Task, &todo.IsCompleted, &todo.CreatedAt, &todo.UserID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Todoの取得に失敗しました: %w", err)
	}
	return todo, nil
}

// ListByUserID はユーザーの全Todoを作成日時の昇順で返す。
func (r *PostgresTodoRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Todo, error) {
	return r.list(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE user_id = $1 ORDER BY created_at ASC, id ASC`,
		userID,
	)
}

// ListByUserIDAndCompleted はユーザーのTodoを完了状態で絞り込んで返す。
func (r *PostgresTodoRepo) ListByUserIDAndCompleted(ctx context.Context, userID string, completed bool) ([]*model.Todo, error) {
	return r.list(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE user_id = $1 AND is_completed = $2 ORDER BY created_at ASC, id ASC`,
		userID, completed,
	)
}

func (r *PostgresTodoRepo) list(ctx context.Context, query string, args ...any) ([]*model.Todo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Todo一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	todos := []*model.Todo{}
	for rows.Next() {
		todo := &model.Todo{}
		if err := rows.Scan(&todo.ID, &todo.Task, &todo.IsCompleted, &todo.CreatedAt, &todo.UserID); err != nil {
			return nil, fmt.Errorf("Todo行の読み取りに失敗しました: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Todo一覧の走査に失敗しました: %w", err)
	}
	return todos, nil
}

// Create はTodoを作成する。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (id, task, is_completed, created_at, user_id)
		 VALUES ($1, $2, $3, $4, $5)`,
		todo.ID, todo.Task, todo.IsCompleted, todo.CreatedAt, todo.UserID,
	)
	if err != nil {
		return fmt.Errorf("Todoの作成に失敗しました: %w", err)
	}
	return nil
}

// Update は所有者が一致するTodoのタスクと完了状態を更新する。created_atとuser_idは変更しない。
// 対象行が存在しない場合はErrTodoNotFoundを返す。
func (r *PostgresTodoRepo) Update(ctx context.Context, todo *model.Todo) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE todos SET task = $1, is_completed = $2 WHERE id = $3 AND user_id = $4`,
		todo.Task, todo.IsCompleted, todo.ID, todo.UserID,
	)
	if err != nil {
		return fmt.Errorf("Todoの更新に失敗しました: %w", err)
	}
	return expectOneRow(result, todo.ID)
}

// Toggle は所有者が一致するTodoの完了状態を単一のUPDATE文で反転し、更新後の行を返す。
// 対象行が存在しない場合はErrTodoNotFoundを返す。
func (r *PostgresTodoRepo) Toggle(ctx context.Context, id, userID string) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE todos SET is_completed = NOT is_completed
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+todoColumns,
		id, userID,
	).Scan(&todo.ID, &todo.Task, &todo.IsCompleted, &todo.CreatedAt, &todo.UserID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTodoNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("Todoの完了状態の更新に失敗しました: %w", err)
	}
	return todo, nil
}

// DeleteByID は所有者が一致するTodoを削除する。
// 対象行が存在しない場合はErrTodoNotFoundを返す。
func (r *PostgresTodoRepo) DeleteByID(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("Todoの削除に失敗しました: %w", err)
	}
	return expectOneRow(result, id)
}

func expectOneRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrTodoNotFound, id)
	}
	return nil
}

// DeleteCompletedByUserID はユーザーの完了済みTodoを単一のDELETE文で削除し、削除件数を返す。
func (r *PostgresTodoRepo) DeleteCompletedByUserID(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE user_id = $1 AND is_completed = true`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("完了済みTodoの一括削除に失敗しました: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)
