package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/emerald/devdash/internal/model"
)

// defaultLogListLimit は/system/logsのデフォルト取得件数。
const defaultLogListLimit = 100

// StatsRepositoryInterface は統計ハンドラーが必要とする集計インターフェース。
type StatsRepositoryInterface interface {
	Overview(ctx context.Context) (*model.OverviewStats, error)
}

// ActivityLogListerInterface は操作ログ一覧取得のインターフェース。
type ActivityLogListerInterface interface {
	ListRecent(ctx context.Context, limit int) ([]*model.ActivityLog, error)
}

// StatsHandler はダッシュボード集計と操作ログ参照のHTTPハンドラー。
type StatsHandler struct {
	stats StatsRepositoryInterface
	logs  ActivityLogListerInterface
}

// NewStatsHandler はStatsHandlerを生成する。
func NewStatsHandler(stats StatsRepositoryInterface, logs ActivityLogListerInterface) *StatsHandler {
	return &StatsHandler{
		stats: stats,
		logs:  logs,
	}
}

// Overview はダッシュボードトップの集計値を返す。
// GET /metrics/overview
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.stats.Overview(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{
		"users_total":        overview.UsersTotal,
		"ads_active":         overview.AdsActive,
		"bots_active":        overview.BotsActive,
		"token_events_total": overview.TokenEvents,
	})
}

// activityLogResponse は操作ログ1件分のレスポンス。
type activityLogResponse struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// SystemLogs は直近の操作ログを返す。
// GET /system/logs?limit=100
func (h *StatsHandler) SystemLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseListLimit(w, r, defaultLogListLimit)
	if !ok {
		return
	}

	logs, err := h.logs.ListRecent(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]activityLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, activityLogResponse{
			Level:     l.Level,
			Message:   l.Message,
			CreatedAt: l.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"logs": out})
}
