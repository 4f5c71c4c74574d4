// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/emerald/devdash/internal/middleware"
	"github.com/emerald/devdash/internal/telegramauth"
	"github.com/emerald/devdash/internal/token"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login はログインペイロードを検証し、セッショントークンを発行する。
	Login(ctx context.Context, payload *telegramauth.LoginPayload) (string, error)
}

// TokenCheckVerifier はトークン有効性確認のインターフェース。
// token.Verifierの部分集合として定義する。
type TokenCheckVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// AuthHandler はTelegramログイン認証のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	verifier TokenCheckVerifier
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, verifier TokenCheckVerifier) *AuthHandler {
	return &AuthHandler{
		service:  service,
		verifier: verifier,
	}
}

// tokenResponse はログイン成功時のAPIレスポンス。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login はTelegramログインペイロードを検証してセッショントークンを発行する。
// POST /auth/telegram
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload telegramauth.LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		// ボディが解析できない場合も署名検証失敗と同じ401で返す
		middleware.WriteUnauthorized(w, "Invalid login payload")
		return
	}

	tok, err := h.service.Login(r.Context(), &payload)
	if err != nil {
		var verr *telegramauth.Error
		if errors.As(err, &verr) {
			middleware.WriteUnauthorized(w, verr.Message)
			return
		}
		slog.Error("login failed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: tok,
		TokenType:   "bearer",
	})
}

// Check は提出されたトークンの有効性を確認する。
// Bearerミドルウェアを経由せず、ヘッダーを直接検査する。
// GET /auth/check
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	raw, ok := middleware.ExtractBearerToken(r.Header.Get("Authorization"))
	if !ok {
		middleware.WriteUnauthorized(w, "Not authenticated")
		return
	}

	if _, err := h.verifier.Verify(raw); err != nil {
		middleware.WriteUnauthorized(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"authenticated": true})
}
