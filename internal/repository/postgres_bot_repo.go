package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emerald/devdash/internal/model"
)

// PostgresBotRepo はPostgreSQLを使用したボットリポジトリ。
type PostgresBotRepo struct {
	db *sql.DB
}

// NewPostgresBotRepo はPostgresBotRepoを生成する。
func NewPostgresBotRepo(db *sql.DB) *PostgresBotRepo {
	return &PostgresBotRepo{db: db}
}

// List は全ボットをID昇順で返す。
func (r *PostgresBotRepo) List(ctx context.Context) ([]*model.Bot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, COALESCE(title, ''), COALESCE(env_token_key, ''), is_active, meta
		 FROM dashboard_bots
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bots: %w", err)
	}
	defer rows.Close()

	var bots []*model.Bot
	for rows.Next() {
		b := &model.Bot{}
		if err := rows.Scan(&b.ID, &b.Username, &b.Title, &b.EnvTokenKey, &b.IsActive, &b.Meta); err != nil {
			return nil, fmt.Errorf("failed to scan bot: %w", err)
		}
		bots = append(bots, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bots: %w", err)
	}

	return bots, nil
}

// Create はボットを登録し、採番済みのレコードを返す。
func (r *PostgresBotRepo) Create(ctx context.Context, bot *model.Bot) (*model.Bot, error) {
	created := &model.Bot{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO dashboard_bots (username, title, env_token_key, is_active, meta)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, username, COALESCE(title, ''), COALESCE(env_token_key, ''), is_active, meta`,
		bot.Username, nullableString(bot.Title), nullableString(bot.EnvTokenKey), bot.IsActive, bot.Meta,
	).Scan(&created.ID, &created.Username, &created.Title, &created.EnvTokenKey, &created.IsActive, &created.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return created, nil
}

// FindByID は指定IDのボットを取得する。見つからない場合はnilを返す。
func (r *PostgresBotRepo) FindByID(ctx context.Context, id int64) (*model.Bot, error) {
	b := &model.Bot{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, COALESCE(title, ''), COALESCE(env_token_key, ''), is_active, meta
		 FROM dashboard_bots WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Username, &b.Title, &b.EnvTokenKey, &b.IsActive, &b.Meta)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find bot by ID: %w", err)
	}

	return b, nil
}

// CountUsers はボットの利用者数を返す。
func (r *PostgresBotRepo) CountUsers(ctx context.Context, botID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(1) FROM dashboard_bot_users WHERE bot_id = $1`,
		botID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bot users: %w", err)
	}
	return count, nil
}

// CountEvents はボットの指定種別イベント数を返す。
func (r *PostgresBotRepo) CountEvents(ctx context.Context, botID int64, eventType string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(1) FROM dashboard_bot_events WHERE bot_id = $1 AND type = $2`,
		botID, eventType,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bot events: %w", err)
	}
	return count, nil
}

// ListGroups はボットが参加しているグループ一覧をメンバー数の降順で返す。
func (r *PostgresBotRepo) ListGroups(ctx context.Context) ([]*model.BotGroup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, chat_id, COALESCE(chat_title, ''), COALESCE(chat_type, ''), member_count, created_at
		 FROM dashboard_bot_groups
		 ORDER BY member_count DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bot groups: %w", err)
	}
	defer rows.Close()

	var groups []*model.BotGroup
	for rows.Next() {
		g := &model.BotGroup{}
		if err := rows.Scan(&g.ID, &g.ChatID, &g.ChatTitle, &g.ChatType, &g.MemberCount, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bot group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bot groups: %w", err)
	}

	return groups, nil
}

// compile-time interface check
var _ BotRepository = (*PostgresBotRepo)(nil)
