package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/emerald/devdash/internal/model"
)

// BotServiceInterface はボットハンドラーが必要とするサービスインターフェース。
type BotServiceInterface interface {
	List(ctx context.Context) ([]*model.Bot, error)
	Create(ctx context.Context, bot *model.Bot) (*model.Bot, error)
	Stats(ctx context.Context, botID int64) (*model.BotStats, error)
	ListGroups(ctx context.Context) ([]*model.BotGroup, error)
}

// BotHandler はボットメタデータ管理のHTTPハンドラー。
type BotHandler struct {
	service BotServiceInterface
}

// NewBotHandler はBotHandlerを生成する。
func NewBotHandler(service BotServiceInterface) *BotHandler {
	return &BotHandler{service: service}
}

// botResponse はボット情報のAPIレスポンス。
type botResponse struct {
	ID          int64           `json:"id"`
	Username    string          `json:"username"`
	Title       string          `json:"title"`
	EnvTokenKey string          `json:"env_token_key"`
	IsActive    bool            `json:"is_active"`
	Meta        json.RawMessage `json:"meta"`
}

// createBotRequest はボット登録リクエストのボディ。
type createBotRequest struct {
	Username    string `json:"username"`
	Title       string `json:"title"`
	EnvTokenKey string `json:"env_token_key"`
	IsActive    *bool  `json:"is_active"`
}

// ListBots はボット一覧を返す。
// GET /bots
func (h *BotHandler) ListBots(w http.ResponseWriter, r *http.Request) {
	bots, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]botResponse, 0, len(bots))
	for _, b := range bots {
		out = append(out, toBotResponse(b))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"bots": out})
}

// CreateBot はボットを登録する。
// POST /bots
func (h *BotHandler) CreateBot(w http.ResponseWriter, r *http.Request) {
	var req createBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("JSONの解析に失敗しました"))
		return
	}

	if req.Username == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("usernameは必須です"))
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	created, err := h.service.Create(r.Context(), &model.Bot{
		Username:    req.Username,
		Title:       req.Title,
		EnvTokenKey: req.EnvTokenKey,
		IsActive:    isActive,
		Meta:        json.RawMessage(`{}`),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toBotResponse(created))
}

// botStatsResponse はボット統計のAPIレスポンス。
type botStatsResponse struct {
	Bot           botResponse `json:"bot"`
	UsersTotal    int64       `json:"users_total"`
	MessagesTotal int64       `json:"messages_total"`
	CommandsTotal int64       `json:"commands_total"`
}

// BotStats は指定ボットの利用統計を返す。
// GET /bots/{id}/stats
func (h *BotHandler) BotStats(w http.ResponseWriter, r *http.Request) {
	botID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("ボットIDは整数で指定してください"))
		return
	}

	stats, err := h.service.Stats(r.Context(), botID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(botStatsResponse{
		Bot:           toBotResponse(stats.Bot),
		UsersTotal:    stats.UsersTotal,
		MessagesTotal: stats.MessagesTotal,
		CommandsTotal: stats.CommandsTotal,
	})
}

// botGroupResponse はボット参加グループ1件分のレスポンス。
type botGroupResponse struct {
	ID          int64     `json:"id"`
	ChatID      int64     `json:"chat_id"`
	ChatTitle   string    `json:"chat_title"`
	ChatType    string    `json:"chat_type"`
	MemberCount int64     `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListGroups はボットが参加しているグループ一覧をメンバー数の降順で返す。
// GET /bot-groups
func (h *BotHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]botGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, botGroupResponse{
			ID:          g.ID,
			ChatID:      g.ChatID,
			ChatTitle:   g.ChatTitle,
			ChatType:    g.ChatType,
			MemberCount: g.MemberCount,
			CreatedAt:   g.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"groups": out})
}

// toBotResponse はmodel.BotからAPIレスポンスに変換する。
func toBotResponse(b *model.Bot) botResponse {
	meta := b.Meta
	if meta == nil {
		meta = json.RawMessage(`{}`)
	}
	return botResponse{
		ID:          b.ID,
		Username:    b.Username,
		Title:       b.Title,
		EnvTokenKey: b.EnvTokenKey,
		IsActive:    b.IsActive,
		Meta:        meta,
	}
}
