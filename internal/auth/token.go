package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// トークン検証の失敗理由。ミドルウェアはerrors.Isで判別してステータスを決める。
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenService はHS512署名のJWTを発行・検証する。
// subjectにユーザー名を格納し、ロール等の追加クレームは持たない。
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService はTokenServiceを生成する。
func NewTokenService(secret string, lifetime time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Issue はusernameをsubjectとするトークンを発行し、トークン文字列と有効期限を返す。
// iatは秒単位に切り捨てるため、expクレームと戻り値の有効期限は一致する。
func (s *TokenService) Issue(username string) (string, time.Time, error) {
	issuedAt := s.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.lifetime)

	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify はトークンの署名・アルゴリズム・有効期限を検証し、subjectを返す。
// 期限切れの場合はErrTokenExpired、それ以外の不正はErrTokenInvalidを返す。
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims.Subject, nil
}
