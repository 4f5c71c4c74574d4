package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/emerald/devdash/internal/middleware"
	"github.com/emerald/devdash/internal/model"
)

// defaultTierListLimit は/tiersの一覧取得のデフォルト件数。
const defaultTierListLimit = 100

// UserDirectoryInterface はユーザーハンドラーが必要とする永続化インターフェース。
type UserDirectoryInterface interface {
	List(ctx context.Context, limit int) ([]*model.DashboardUser, error)
	SetTier(ctx context.Context, telegramID int64, tier string, role *string) error
}

// UserHandler は利用者情報とティア管理のHTTPハンドラー。
type UserHandler struct {
	users UserDirectoryInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(users UserDirectoryInterface) *UserHandler {
	return &UserHandler{users: users}
}

// meResponse は/meのAPIレスポンス。
// トークンに埋め込まれたスナップショットをそのまま返し、DBは参照しない。
type meResponse struct {
	Profile model.TelegramIdentity `json:"profile"`
	Role    string                 `json:"role"`
	Tier    string                 `json:"tier"`
}

// Me は現在の利用者情報をトークンのクレームから返す。
// GET /me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w, "Not authenticated")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(meResponse{
		Profile: claims.Identity,
		Role:    claims.Role,
		Tier:    claims.Tier,
	})
}

// tierUserResponse はティア一覧の1行分のレスポンス。
type tierUserResponse struct {
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	Tier       string    `json:"tier"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListTiers は利用者のロール・ティア一覧を返す。
// GET /tiers?limit=100
func (h *UserHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	limit := defaultTierListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("limitは正の整数で指定してください"))
			return
		}
		limit = parsed
	}

	users, err := h.users.List(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]tierUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, tierUserResponse{
			TelegramID: u.TelegramID,
			Username:   u.Username,
			Role:       u.Role,
			Tier:       u.Tier,
			CreatedAt:  u.CreatedAt,
			UpdatedAt:  u.UpdatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"users": out})
}

// setTierRequest はティア更新リクエストのボディ。
type setTierRequest struct {
	TelegramID int64   `json:"telegram_id"`
	Tier       string  `json:"tier"`
	Role       *string `json:"role,omitempty"`
}

// SetTier は指定利用者のティア（と任意でロール）を更新する。
// POST /tiers
func (h *UserHandler) SetTier(w http.ResponseWriter, r *http.Request) {
	var req setTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("JSONの解析に失敗しました"))
		return
	}

	if req.TelegramID == 0 || req.Tier == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("telegram_idとtierは必須です"))
		return
	}

	if err := h.users.SetTier(r.Context(), req.TelegramID, req.Tier, req.Role); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
