package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emerald/devdash/internal/model"
)

// PostgresContentFeedRepo はPostgreSQLを使用したコンテンツフィードリポジトリ。
type PostgresContentFeedRepo struct {
	db *sql.DB
}

// NewPostgresContentFeedRepo はPostgresContentFeedRepoを生成する。
func NewPostgresContentFeedRepo(db *sql.DB) *PostgresContentFeedRepo {
	return &PostgresContentFeedRepo{db: db}
}

// List はフィード一覧を最終更新の降順で返す。
func (r *PostgresContentFeedRepo) List(ctx context.Context) ([]*model.ContentFeed, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, url, item_count, last_update, created_at
		 FROM dashboard_content_feeds
		 ORDER BY last_update DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list content feeds: %w", err)
	}
	defer rows.Close()

	var feeds []*model.ContentFeed
	for rows.Next() {
		f := &model.ContentFeed{}
		if err := rows.Scan(&f.ID, &f.Name, &f.URL, &f.ItemCount, &f.LastUpdate, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan content feed: %w", err)
		}
		feeds = append(feeds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content feeds: %w", err)
	}

	return feeds, nil
}

// Create はフィード登録情報を保存する。
func (r *PostgresContentFeedRepo) Create(ctx context.Context, feed *model.ContentFeed) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dashboard_content_feeds (id, name, url, item_count, last_update, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		feed.ID, feed.Name, feed.URL, feed.ItemCount, feed.LastUpdate, feed.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create content feed: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ContentFeedRepository = (*PostgresContentFeedRepo)(nil)
