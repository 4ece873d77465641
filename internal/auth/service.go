// Package auth はユーザー登録・ログインとJWTの発行・検証を提供する。
package auth

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
	"github.com/hitoshi/todoman/internal/security"
)

// ユーザー名・パスワードの長さ制約（文字数）。
const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
	MinPasswordLength = 6
)

// PasswordHasher はパスワードのハッシュ化と照合のインターフェース。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) error
}

// TokenIssuer はトークンの発行と検証のインターフェース。
type TokenIssuer interface {
	Issue(username string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// LoginResult はログイン成功時に返すトークンと有効期限。
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	now      func() time.Time
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		now:      time.Now,
	}
}

// Register は新規ユーザーを登録する。
// 入力不正の場合はVALIDATION_ERROR、ユーザー名重複の場合はUSERNAME_EXISTSを返す。
func (s *Service) Register(ctx context.Context, username, password string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return model.NewUsernameExistsError()
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:        uuid.New().String(),
		Username:  username,
		Password:  hashed,
		Role:      model.DefaultRole,
		CreatedAt: s.now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return model.NewUsernameExistsError()
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", username),
	)
	return nil
}

// Login は認証情報を検証し、トークンを発行する。
// ユーザー不在とパスワード不一致はいずれもINVALID_CREDENTIALSを返す。
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, model.NewValidationError("ユーザー名とパスワードは必須です")
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := s.hasher.Compare(user.Password, password); err != nil {
		if !errors.Is(err, security.ErrPasswordMismatch) {
			slog.Warn("password comparison failed",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
		return nil, model.NewInvalidCredentialsError()
	}

	token, expiresAt, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in", slog.String("username", user.Username))
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// Validate はトークンが有効かを検証する。
// 無効・期限切れ・未指定のいずれもUNAUTHORIZEDとして扱う。
func (s *Service) Validate(token string) error {
	if token == "" {
		return model.NewUnauthorizedError()
	}
	if _, err := s.tokens.Verify(token); err != nil {
		return model.NewUnauthorizedError()
	}
	return nil
}

// validateCredentials は登録時のユーザー名・パスワードを検証する。
func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return model.NewValidationError("ユーザー名は必須です")
	}
	if n := utf8.RuneCountInString(username); n < MinUsernameLength || n > MaxUsernameLength {
		return model.NewValidationError(
			fmt.Sprintf("ユーザー名は%d〜%d文字で指定してください", MinUsernameLength, MaxUsernameLength))
	}
	if strings.TrimSpace(password) == "" {
		return model.NewValidationError("パスワードは必須です")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return model.NewValidationError(
			fmt.Sprintf("パスワードは%d文字以上で指定してください", MinPasswordLength))
	}
	if len(password) > security.MaxPasswordBytes {
		return model.NewValidationError(
			fmt.Sprintf("パスワードは%dバイト以下で指定してください", security.MaxPasswordBytes))
	}
	return nil
}
