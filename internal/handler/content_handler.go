package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/emerald/devdash/internal/model"
)

// ContentServiceInterface はコンテンツフィードハンドラーが必要とするサービスインターフェース。
type ContentServiceInterface interface {
	List(ctx context.Context) ([]*model.ContentFeed, error)
	Register(ctx context.Context, name, rawURL string) (*model.ContentFeed, error)
}

// ContentHandler はコンテンツフィード管理のHTTPハンドラー。
type ContentHandler struct {
	service ContentServiceInterface
}

// NewContentHandler はContentHandlerを生成する。
func NewContentHandler(service ContentServiceInterface) *ContentHandler {
	return &ContentHandler{service: service}
}

// contentFeedResponse はフィード登録情報のAPIレスポンス。
type contentFeedResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	ItemCount  int       `json:"item_count"`
	LastUpdate time.Time `json:"last_update"`
}

// registerContentFeedRequest はフィード登録リクエストのボディ。
type registerContentFeedRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListFeeds は登録済みフィード一覧を返す。
// GET /content/feeds
func (h *ContentHandler) ListFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]contentFeedResponse, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, toContentFeedResponse(f))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"feeds": out})
}

// RegisterFeed はフィードを検証・登録する。
// POST /content/feeds
func (h *ContentHandler) RegisterFeed(w http.ResponseWriter, r *http.Request) {
	var req registerContentFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("JSONの解析に失敗しました"))
		return
	}

	feed, err := h.service.Register(r.Context(), req.Name, req.URL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toContentFeedResponse(feed))
}

// toContentFeedResponse はmodel.ContentFeedからAPIレスポンスに変換する。
func toContentFeedResponse(f *model.ContentFeed) contentFeedResponse {
	return contentFeedResponse{
		ID:         f.ID,
		Name:       f.Name,
		URL:        f.URL,
		ItemCount:  f.ItemCount,
		LastUpdate: f.LastUpdate,
	}
}
