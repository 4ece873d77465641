package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/todoman/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// StatusForAPIError はAPIErrorコードに対応するHTTPステータスを返す。
// 未知のコードは500として扱う。
//
// INVALID_TOKENとUNKNOWN_CALLERは認証情報そのものが拒否されたものとして403を返し、
// 認証情報が無い場合と期限切れの場合のみ401で再ログインを促す。
func StatusForAPIError(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidRequest, model.ErrCodeUsernameExists:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized, model.ErrCodeTokenExpired:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidToken, model.ErrCodeForbidden, model.ErrCodeUnknownCaller:
		return http.StatusForbidden
	case model.ErrCodeTodoNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteAPIError はコードに対応するステータスでエラーを書き込む。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	WriteErrorResponse(w, StatusForAPIError(apiErr), apiErr)
}

// WriteErrorResponse は指定ステータスでエラーを書き込む。
// 401にはWWW-AuthenticateでBearerスキームを示し、期限切れの場合はinvalid_tokenを付与する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	if statusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", bearerChallenge(apiErr))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	}); err != nil {
		slog.Error("failed to encode error response", slog.String("error", err.Error()))
	}
}

// WriteInternalServerError は詳細を含まない500レスポンスを書き込む。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}

func bearerChallenge(apiErr *model.APIError) string {
	if apiErr.Code == model.ErrCodeTokenExpired {
		return `Bearer error="invalid_token", error_description="token expired"`
	}
	return "Bearer"
}
