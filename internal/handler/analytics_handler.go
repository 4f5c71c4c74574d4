package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/emerald/devdash/internal/model"
)

// AnalyticsRepositoryInterface は分析ハンドラーが必要とする集計インターフェース。
type AnalyticsRepositoryInterface interface {
	UserGrowthWeekly(ctx context.Context) ([]*model.UserGrowthPoint, error)
	BotActivity(ctx context.Context) ([]*model.BotActivityPoint, error)
	ModerationStats(ctx context.Context) (*model.ModerationStats, error)
	PaymentStats(ctx context.Context) (*model.PaymentStats, error)
}

// AnalyticsHandler は利用分析・モデレーション・決済集計のHTTPハンドラー。
type AnalyticsHandler struct {
	analytics AnalyticsRepositoryInterface
}

// NewAnalyticsHandler はAnalyticsHandlerを生成する。
func NewAnalyticsHandler(analytics AnalyticsRepositoryInterface) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// userGrowthResponse は週単位の新規利用者数1件分のレスポンス。
type userGrowthResponse struct {
	Week  string `json:"week"`
	Users int64  `json:"users"`
}

// UserGrowth は週単位の新規利用者数を新しい週から順に返す。
// GET /analytics/user-growth
func (h *AnalyticsHandler) UserGrowth(w http.ResponseWriter, r *http.Request) {
	points, err := h.analytics.UserGrowthWeekly(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]userGrowthResponse, 0, len(points))
	for _, p := range points {
		out = append(out, userGrowthResponse{
			Week:  p.Week.Format("2006-01-02"),
			Users: p.Users,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"weekly_growth": out})
}

// botActivityResponse はボット1台分のイベント集計レスポンス。
type botActivityResponse struct {
	Slug   string `json:"slug"`
	Events int64  `json:"events"`
}

// BotActivity はボットごとのイベント総数をイベント数の降順で返す。
// GET /analytics/bot-activity
func (h *AnalyticsHandler) BotActivity(w http.ResponseWriter, r *http.Request) {
	points, err := h.analytics.BotActivity(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]botActivityResponse, 0, len(points))
	for _, p := range points {
		out = append(out, botActivityResponse{
			Slug:   p.Slug,
			Events: p.Events,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"bot_activity": out})
}

// ModerationStats はモデレーション活動の集計を返す。
// GET /moderation/stats
func (h *AnalyticsHandler) ModerationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.ModerationStats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{
		"spam_detected":    stats.SpamDetected,
		"messages_deleted": stats.MessagesDeleted,
		"users_banned":     stats.UsersBanned,
	})
}

// PaymentStats は完了済み決済の集計を返す。
// GET /payment/stats
func (h *AnalyticsHandler) PaymentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.PaymentStats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	avg := 0.0
	if stats.TransactionsTotal > 0 {
		avg = stats.TotalRevenueUSD / float64(stats.TransactionsTotal)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"total_revenue_usd":  stats.TotalRevenueUSD,
		"transactions_total": stats.TransactionsTotal,
		"avg_transaction":    avg,
	})
}
