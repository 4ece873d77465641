package model

import "time"

// Todo はユーザーが所有するタスクを表す。
// CreatedAtは作成時に設定され、以後変更されない。
type Todo struct {
	ID          string
	Task        string
	IsCompleted bool
	CreatedAt   time.Time
	UserID      string
}

// OwnedBy はTodoが指定ユーザーの所有であるかを判定する。
func (t *Todo) OwnedBy(userID string) bool {
	return t.UserID != "" && t.UserID == userID
}
