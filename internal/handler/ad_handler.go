package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/emerald/devdash/internal/model"
)

// AdServiceInterface は広告ハンドラーが必要とするサービスインターフェース。
type AdServiceInterface interface {
	List(ctx context.Context, botSlug string) ([]*model.Ad, error)
	Create(ctx context.Context, ad *model.Ad) (*model.Ad, error)
}

// AdHandler は広告キャンペーン管理のHTTPハンドラー。
type AdHandler struct {
	service AdServiceInterface
}

// NewAdHandler はAdHandlerを生成する。
func NewAdHandler(service AdServiceInterface) *AdHandler {
	return &AdHandler{service: service}
}

// adResponse は広告情報のAPIレスポンス。
// start_at/end_atはUNIX秒で、未設定の場合はnull。
type adResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Placement string          `json:"placement"`
	Content   string          `json:"content"`
	IsActive  bool            `json:"is_active"`
	StartAt   *int64          `json:"start_at"`
	EndAt     *int64          `json:"end_at"`
	Targeting json.RawMessage `json:"targeting"`
	BotSlug   string          `json:"bot_slug"`
}

// createAdRequest は広告登録リクエストのボディ。
type createAdRequest struct {
	Name      string          `json:"name"`
	Placement string          `json:"placement"`
	Content   string          `json:"content"`
	IsActive  *bool           `json:"is_active"`
	StartAt   *int64          `json:"start_at"`
	EndAt     *int64          `json:"end_at"`
	Targeting json.RawMessage `json:"targeting"`
	BotSlug   string          `json:"bot_slug"`
}

// ListAds は広告一覧を返す。bot_slugクエリで絞り込める。
// GET /ads?bot_slug=xxx
func (h *AdHandler) ListAds(w http.ResponseWriter, r *http.Request) {
	ads, err := h.service.List(r.Context(), r.URL.Query().Get("bot_slug"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]adResponse, 0, len(ads))
	for _, ad := range ads {
		out = append(out, toAdResponse(ad))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"ads": out})
}

// CreateAd は広告を登録する。
// POST /ads
func (h *AdHandler) CreateAd(w http.ResponseWriter, r *http.Request) {
	var req createAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("JSONの解析に失敗しました"))
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	created, err := h.service.Create(r.Context(), &model.Ad{
		Name:      req.Name,
		Placement: req.Placement,
		Content:   req.Content,
		IsActive:  isActive,
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
		Targeting: req.Targeting,
		BotSlug:   req.BotSlug,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toAdResponse(created))
}

// toAdResponse はmodel.AdからAPIレスポンスに変換する。
func toAdResponse(ad *model.Ad) adResponse {
	targeting := ad.Targeting
	if targeting == nil {
		targeting = json.RawMessage(`{}`)
	}
	return adResponse{
		ID:        ad.ID,
		Name:      ad.Name,
		Placement: ad.Placement,
		Content:   ad.Content,
		IsActive:  ad.IsActive,
		StartAt:   ad.StartAt,
		EndAt:     ad.EndAt,
		Targeting: targeting,
		BotSlug:   ad.BotSlug,
	}
}
