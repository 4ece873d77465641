// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/todoman/internal/model"
)

// ErrDuplicateUsername はユーザー名のユニーク制約違反を表す。
// 同時登録の競合時にExistsByUsernameの確認をすり抜けた場合に返る。
var ErrDuplicateUsername = errors.New("username already exists")

// ErrTodoNotFound は更新・削除の対象行が存在しないことを表す。
// 読み取り後に別リクエストが削除した場合や所有者が一致しない場合に返る。
var ErrTodoNotFound = errors.New("todo not found")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByUsername はユーザー名（大文字小文字を区別）でユーザーを取得する。
	// 見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// ExistsByUsername はユーザー名が登録済みかを返す。
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Create はユーザーを作成する。ユーザー名が重複する場合はErrDuplicateUsernameを返す。
	Create(ctx context.Context, user *model.User) error
}

// TodoRepository はTodoデータの永続化インターフェース。
// 一覧は作成日時の昇順で返す。
type TodoRepository interface {
	// FindByID は指定IDのTodoを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Todo, error)

	// ListByUserID はユーザーの全Todoを返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Todo, error)

	// ListByUserIDAndCompleted はユーザーのTodoのうち完了状態が一致するものを返す。
	ListByUserIDAndCompleted(ctx context.Context, userID string, completed bool) ([]*model.Todo, error)

	// Create はTodoを作成する。
	Create(ctx context.Context, todo *model.Todo) error

	// Update はTodoのタスクと完了状態を更新する。todo.UserIDが所有者と一致する行のみ対象とする。
	// 対象行がない場合はErrTodoNotFoundを返す。
	Update(ctx context.Context, todo *model.Todo) error

	// Toggle は所有者が一致するTodoの完了状態を原子的に反転し、更新後の行を返す。
	// 対象行がない場合はErrTodoNotFoundを返す。
	Toggle(ctx context.Context, id, userID string) (*model.Todo, error)

	// DeleteByID は所有者が一致するTodoを削除する。対象行がない場合はErrTodoNotFoundを返す。
	DeleteByID(ctx context.Context, id, userID string) error

	// DeleteCompletedByUserID はユーザーの完了済みTodoを一括削除し、削除件数を返す。
	DeleteCompletedByUserID(ctx context.Context, userID string) (int64, error)
}
