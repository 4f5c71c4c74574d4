package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emerald/devdash/internal/model"
)

// PostgresWatchRepo はPostgreSQLを使用した監視アカウントリポジトリ。
type PostgresWatchRepo struct {
	db *sql.DB
}

// NewPostgresWatchRepo はPostgresWatchRepoを生成する。
func NewPostgresWatchRepo(db *sql.DB) *PostgresWatchRepo {
	return &PostgresWatchRepo{db: db}
}

// List は監視アカウント一覧をID昇順で返す。
func (r *PostgresWatchRepo) List(ctx context.Context) ([]*model.WatchAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, chain, account_id, label, meta, created_at
		 FROM dashboard_watch_accounts
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list watch accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*model.WatchAccount
	for rows.Next() {
		a := &model.WatchAccount{}
		var meta []byte
		if err := rows.Scan(&a.ID, &a.Chain, &a.AccountID, &a.Label, &meta, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watch account: %w", err)
		}
		a.Meta = meta
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watch accounts: %w", err)
	}

	return accounts, nil
}

// compile-time interface check
var _ WatchAccountRepository = (*PostgresWatchRepo)(nil)
