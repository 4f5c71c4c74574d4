package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/emerald/devdash/internal/middleware"
	"github.com/emerald/devdash/internal/model"
)

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidSchedule, model.ErrCodeInvalidAccount:
		return http.StatusBadRequest
	case model.ErrCodeBotNotFound:
		return http.StatusNotFound
	case model.ErrCodeFeedUnreachable:
		return http.StatusUnprocessableEntity
	case model.ErrCodeRPCFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
