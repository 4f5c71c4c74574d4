package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/emerald/devdash/internal/model"
)

// PostgresStatsRepo はPostgreSQLを使用した集計リポジトリ。
type PostgresStatsRepo struct {
	db *sql.DB
}

// NewPostgresStatsRepo はPostgresStatsRepoを生成する。
func NewPostgresStatsRepo(db *sql.DB) *PostgresStatsRepo {
	return &PostgresStatsRepo{db: db}
}

// Overview は利用者数・有効広告数・有効ボット数・トークンイベント数の集計を返す。
// 個別の集計クエリが失敗しても全体を失敗させず、該当カウントを0とする。
func (r *PostgresStatsRepo) Overview(ctx context.Context) (*model.OverviewStats, error) {
	return &model.OverviewStats{
		UsersTotal:  r.count(ctx, `SELECT count(1) FROM dashboard_users`),
		AdsActive:   r.count(ctx, `SELECT count(1) FROM dashboard_ads WHERE is_active = true`),
		BotsActive:  r.count(ctx, `SELECT count(1) FROM dashboard_bots WHERE is_active = true`),
		TokenEvents: r.count(ctx, `SELECT count(1) FROM dashboard_token_events`),
	}, nil
}

// userGrowthWeeks はUserGrowthWeeklyが返す週数の上限。
const userGrowthWeeks = 12

// UserGrowthWeekly は直近の週単位新規利用者数を新しい週から順に返す。
func (r *PostgresStatsRepo) UserGrowthWeekly(ctx context.Context) ([]*model.UserGrowthPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date_trunc('week', created_at)::date AS week, count(1)
		 FROM dashboard_users
		 GROUP BY week
		 ORDER BY week DESC
		 LIMIT $1`,
		userGrowthWeeks,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query user growth: %w", err)
	}
	defer rows.Close()

	var points []*model.UserGrowthPoint
	for rows.Next() {
		p := &model.UserGrowthPoint{}
		if err := rows.Scan(&p.Week, &p.Users); err != nil {
			return nil, fmt.Errorf("failed to scan user growth point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user growth points: %w", err)
	}

	return points, nil
}

// BotActivity はボットごとのイベント総数をイベント数の降順で返す。
// イベントのないボットも0件として含める。
func (r *PostgresStatsRepo) BotActivity(ctx context.Context) ([]*model.BotActivityPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT COALESCE(b.slug, b.username), count(e.id) AS events
		 FROM dashboard_bots b
		 LEFT JOIN dashboard_bot_events e ON b.id = e.bot_id
		 GROUP BY b.id, b.slug, b.username
		 ORDER BY events DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bot activity: %w", err)
	}
	defer rows.Close()

	var points []*model.BotActivityPoint
	for rows.Next() {
		p := &model.BotActivityPoint{}
		if err := rows.Scan(&p.Slug, &p.Events); err != nil {
			return nil, fmt.Errorf("failed to scan bot activity point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bot activity points: %w", err)
	}

	return points, nil
}

// ModerationStats はモデレーション活動の集計を返す。
func (r *PostgresStatsRepo) ModerationStats(ctx context.Context) (*model.ModerationStats, error) {
	stats := &model.ModerationStats{}
	err := r.db.QueryRowContext(ctx,
		`SELECT
		     count(1) FILTER (WHERE type = 'spam'),
		     count(1) FILTER (WHERE action = 'delete'),
		     count(DISTINCT user_id) FILTER (WHERE action = 'ban')
		 FROM dashboard_moderation`,
	).Scan(&stats.SpamDetected, &stats.MessagesDeleted, &stats.UsersBanned)
	if err != nil {
		return nil, fmt.Errorf("failed to query moderation stats: %w", err)
	}
	return stats, nil
}

// PaymentStats は完了済み決済の集計を返す。
func (r *PostgresStatsRepo) PaymentStats(ctx context.Context) (*model.PaymentStats, error) {
	stats := &model.PaymentStats{}
	err := r.db.QueryRowContext(ctx,
		`SELECT
		     COALESCE(sum(amount) FILTER (WHERE status = 'completed'), 0),
		     count(1)
		 FROM dashboard_payments`,
	).Scan(&stats.TotalRevenueUSD, &stats.TransactionsTotal)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment stats: %w", err)
	}
	return stats, nil
}

// count は単一カウントクエリを実行する。失敗時は0を返しログに記録する。
func (r *PostgresStatsRepo) count(ctx context.Context, query string) int64 {
	var c int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&c); err != nil {
		slog.Warn("overview count query failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return 0
	}
	return c
}

// PostgresActivityLogRepo はPostgreSQLを使用した操作ログリポジトリ。
type PostgresActivityLogRepo struct {
	db *sql.DB
}

// NewPostgresActivityLogRepo はPostgresActivityLogRepoを生成する。
func NewPostgresActivityLogRepo(db *sql.DB) *PostgresActivityLogRepo {
	return &PostgresActivityLogRepo{db: db}
}

// ListRecent は直近のログを新しい順で返す。
func (r *PostgresActivityLogRepo) ListRecent(ctx context.Context, limit int) ([]*model.ActivityLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT level, message, created_at
		 FROM dashboard_logs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.ActivityLog
	for rows.Next() {
		l := &model.ActivityLog{}
		if err := rows.Scan(&l.Level, &l.Message, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity logs: %w", err)
	}

	return logs, nil
}

// compile-time interface checks
var (
	_ StatsRepository       = (*PostgresStatsRepo)(nil)
	_ ActivityLogRepository = (*PostgresActivityLogRepo)(nil)
)
