package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// DBPinger はデータベース疎通確認のインターフェース。
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	db        DBPinger
	startedAt time.Time
}

// NewHealthHandler はHealthHandlerを生成する。dbはnilを許容する。
func NewHealthHandler(db DBPinger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startedAt: time.Now(),
	}
}

// Healthz は死活確認に応答する。認証不要。
// DBが注入されている場合は疎通も確認し、失敗時は503を返す。
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			slog.Error("database ping failed", slog.String("error", err.Error()))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "degraded",
				"time":   time.Now().Unix(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// SystemHealth は稼働状況の詳細を返す。認証必須。
// 稼働時間はプロセス起動からの経過、応答時間はDB疎通の実測値。
// GET /system/health
func (h *HealthHandler) SystemHealth(w http.ResponseWriter, r *http.Request) {
	status := "operational"
	dbStatus := "connected"
	var responseMS int64

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		start := time.Now()
		err := h.db.PingContext(ctx)
		responseMS = time.Since(start).Milliseconds()

		if err != nil {
			slog.Error("database ping failed", slog.String("error", err.Error()))
			status = "degraded"
			dbStatus = "unreachable"
		}
	}

	uptime := time.Since(h.startedAt)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":           status,
		"uptime_days":      int64(uptime.Hours() / 24),
		"uptime_seconds":   int64(uptime.Seconds()),
		"response_time_ms": responseMS,
		"database":         dbStatus,
	})
}
