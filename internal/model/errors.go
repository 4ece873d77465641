package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, todo, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeUsernameExists     = "USERNAME_EXISTS"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeUnknownCaller      = "UNKNOWN_CALLER"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeTodoNotFound       = "TODO_NOT_FOUND"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewValidationError は入力値バリデーションエラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidRequestError はリクエストボディやクエリの解析失敗エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストの解析に失敗しました: %s", reason),
		Category: "validation",
		Action:   "正しい形式でリクエストしてください。",
	}
}

// NewUsernameExistsError はユーザー名重複エラーを生成する。
func NewUsernameExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeUsernameExists,
		Message:  "このユーザー名は既に使用されています。",
		Category: "validation",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// ユーザー不在とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewUnauthorizedError は認証情報が提示されていない場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewTokenExpiredError はトークン期限切れエラーを生成する。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenExpired,
		Message:  "トークンの有効期限が切れています。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewInvalidTokenError は不正なトークンのエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "トークンが不正です。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewUnknownCallerError はトークンのユーザーが存在しない場合のエラーを生成する。
func NewUnknownCallerError() *APIError {
	return &APIError{
		Code:     ErrCodeUnknownCaller,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewForbiddenError は他ユーザーのTodoを操作しようとした場合のエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "このTodoを操作する権限がありません。",
		Category: "todo",
		Action:   "自分のTodoのみ操作できます。",
	}
}

// NewTodoNotFoundError はTodo未検出エラーを生成する。
func NewTodoNotFoundError(todoID string) *APIError {
	return &APIError{
		Code:     ErrCodeTodoNotFound,
		Message:  fmt.Sprintf("指定されたTodoが見つかりません: %s", todoID),
		Category: "todo",
		Action:   "TodoのIDを確認してください。",
	}
}

// NewInternalError は内部エラーの統一メッセージを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
