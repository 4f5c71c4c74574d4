package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/emerald/devdash/internal/model"
)

// FlagRepositoryInterface はフラグハンドラーが必要とする永続化インターフェース。
type FlagRepositoryInterface interface {
	List(ctx context.Context) ([]*model.FeatureFlag, error)
	Upsert(ctx context.Context, flag *model.FeatureFlag) (*model.FeatureFlag, error)
}

// FlagHandler はフィーチャーフラグ管理のHTTPハンドラー。
type FlagHandler struct {
	flags FlagRepositoryInterface
}

// NewFlagHandler はFlagHandlerを生成する。
func NewFlagHandler(flags FlagRepositoryInterface) *FlagHandler {
	return &FlagHandler{flags: flags}
}

// flagResponse はフラグ情報のAPIレスポンス。
type flagResponse struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description"`
}

// upsertFlagRequest はフラグ登録・更新リクエストのボディ。
type upsertFlagRequest struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description"`
}

// ListFlags はフラグ一覧を返す。
// GET /feature-flags
func (h *FlagHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.flags.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]flagResponse, 0, len(flags))
	for _, f := range flags {
		out = append(out, toFlagResponse(f))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"flags": out})
}

// UpsertFlag はフラグを冪等に登録・更新する。
// POST /feature-flags
func (h *FlagHandler) UpsertFlag(w http.ResponseWriter, r *http.Request) {
	var req upsertFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("JSONの解析に失敗しました"))
		return
	}

	if req.Key == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("keyは必須です"))
		return
	}
	if len(req.Value) == 0 {
		req.Value = json.RawMessage(`{}`)
	}

	saved, err := h.flags.Upsert(r.Context(), &model.FeatureFlag{
		Key:         req.Key,
		Value:       req.Value,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toFlagResponse(saved))
}

// toFlagResponse はmodel.FeatureFlagからAPIレスポンスに変換する。
func toFlagResponse(f *model.FeatureFlag) flagResponse {
	value := f.Value
	if value == nil {
		value = json.RawMessage(`{}`)
	}
	return flagResponse{
		Key:         f.Key,
		Value:       value,
		Description: f.Description,
	}
}
