package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emerald/devdash/internal/model"
)

// PostgresTokenRepo はPostgreSQLを使用したEMRDトークンリポジトリ。
type PostgresTokenRepo struct {
	db *sql.DB
}

// NewPostgresTokenRepo はPostgresTokenRepoを生成する。
func NewPostgresTokenRepo(db *sql.DB) *PostgresTokenRepo {
	return &PostgresTokenRepo{db: db}
}

// TopHolders は保有残高の降順で保有者一覧を返す。
func (r *PostgresTokenRepo) TopHolders(ctx context.Context, limit int) ([]*model.TokenHolder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT COALESCE(telegram_id, 0), ton_address, balance, percentage
		 FROM dashboard_token_holders
		 ORDER BY balance DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list token holders: %w", err)
	}
	defer rows.Close()

	var holders []*model.TokenHolder
	for rows.Next() {
		h := &model.TokenHolder{}
		if err := rows.Scan(&h.TelegramID, &h.TonAddress, &h.Balance, &h.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan token holder: %w", err)
		}
		holders = append(holders, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate token holders: %w", err)
	}

	return holders, nil
}

// RecentTransactions は直近のトークンイベントを新しい順で返す。
func (r *PostgresTokenRepo) RecentTransactions(ctx context.Context, limit int) ([]*model.TokenTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, amount, COALESCE(from_address, ''), COALESCE(to_address, ''), COALESCE(hash, ''), created_at
		 FROM dashboard_token_events
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list token transactions: %w", err)
	}
	defer rows.Close()

	var txs []*model.TokenTransaction
	for rows.Next() {
		tx := &model.TokenTransaction{}
		if err := rows.Scan(&tx.ID, &tx.Type, &tx.Amount, &tx.FromAddress, &tx.ToAddress, &tx.Hash, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan token transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate token transactions: %w", err)
	}

	return txs, nil
}

// compile-time interface check
var _ TokenRepository = (*PostgresTokenRepo)(nil)
