// Package model はドメインモデルを定義する。
package model

import "time"

// DefaultRole は新規登録ユーザーに付与するロール。
const DefaultRole = "USER"

// User はサービス利用ユーザー（認証情報）を表す。
// 登録後に更新・削除されることはない。
type User struct {
	ID        string
	Username  string
	Password  string // bcryptハッシュ
	Role      string
	CreatedAt time.Time
}
