// Package security はパスワードのハッシュ化と照合を提供する。
package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes はbcryptが扱えるパスワードの最大バイト長。
const MaxPasswordBytes = 72

// ErrPasswordMismatch はパスワードがハッシュと一致しないことを表す。
var ErrPasswordMismatch = errors.New("password does not match")

// PasswordHasher はbcryptによるパスワードのハッシュ化と照合を行う。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher はPasswordHasherを生成する。
// costがbcryptの許容範囲外の場合はbcrypt.DefaultCostを使用する。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash は平文パスワードのbcryptハッシュを返す。
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare はハッシュと平文パスワードを照合する。
// 一致しない場合はErrPasswordMismatchを返す。
func (h *PasswordHasher) Compare(hashed, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	if err != nil {
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}
