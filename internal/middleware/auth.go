// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/todoman/internal/auth"
	"github.com/hitoshi/todoman/internal/model"
)

const bearerPrefix = "bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// usernameContextKey はリクエストコンテキストに認証済みユーザー名を格納するためのキー。
var usernameContextKey = contextKey("username")

// TokenVerifier はBearerトークンを検証し、subject（ユーザー名）を返す。
// 期限切れの場合はauth.ErrTokenExpiredをerrors.Isで判別できるエラーを返す。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// IsPublicPath は認証ゲートが検査しないパスかを判定する。
func IsPublicPath(path string) bool {
	switch path {
	case "/", "/favicon.ico", "/health", "/metrics", "/frontend", "/auth":
		return true
	}
	return strings.HasPrefix(path, "/frontend/") || strings.HasPrefix(path, "/auth/")
}

// NewTokenAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// 公開パスは検査しない。トークンが無い場合は匿名として後続に渡す。
// 期限切れのトークンには401、それ以外の不正なトークンには403を即座に返す。
// 検証に成功した場合はユーザー名をリクエストコンテキストに注入する。
func NewTokenAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			username, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					WriteAPIError(w, model.NewTokenExpiredError())
					return
				}
				slog.Debug("token rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				WriteAPIError(w, model.NewInvalidTokenError())
				return
			}

			setLoggedUsername(r.Context(), username)
			next.ServeHTTP(w, r.WithContext(ContextWithUsername(r.Context(), username)))
		})
	}
}

// NewRequireIdentityMiddleware は認証済みユーザーが無いリクエストに401を返すミドルウェアを返す。
// 保護対象のルートグループに適用する。
func NewRequireIdentityMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := UsernameFromContext(r.Context()); err != nil {
				WriteAPIError(w, model.NewUnauthorizedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// スキーム名の大文字小文字は区別しない。
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

// UsernameFromContext はリクエストコンテキストから認証済みユーザー名を取得する。
func UsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value(usernameContextKey).(string)
	if !ok || username == "" {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}

// ContextWithUsername はコンテキストに認証済みユーザー名を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameContextKey, username)
}
