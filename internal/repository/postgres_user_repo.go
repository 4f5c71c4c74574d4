package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emerald/devdash/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用した利用者リポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// UpsertIdentity は検証済みの識別情報でプロフィールを作成または上書きする。
func (r *PostgresUserRepo) UpsertIdentity(ctx context.Context, identity *model.TelegramIdentity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dashboard_users (telegram_id, username, first_name, last_name, photo_url)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (telegram_id) DO UPDATE SET
		     username = excluded.username,
		     first_name = excluded.first_name,
		     last_name = excluded.last_name,
		     photo_url = excluded.photo_url,
		     updated_at = now()`,
		identity.ID, nullableString(identity.Username), nullableString(identity.FirstName),
		nullableString(identity.LastName), nullableString(identity.PhotoURL),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert identity: %w", err)
	}
	return nil
}

// FindRoleTier は保存済みのロール・ティアを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindRoleTier(ctx context.Context, telegramID int64) (*model.RoleTier, error) {
	rt := &model.RoleTier{}
	err := r.db.QueryRowContext(ctx,
		`SELECT role, tier FROM dashboard_users WHERE telegram_id = $1`,
		telegramID,
	).Scan(&rt.Role, &rt.Tier)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find role and tier: %w", err)
	}

	return rt, nil
}

// List は利用者一覧を作成日時の降順で返す。
func (r *PostgresUserRepo) List(ctx context.Context, limit int) ([]*model.DashboardUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT telegram_id, COALESCE(username, ''), role, tier, created_at, updated_at
		 FROM dashboard_users
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.DashboardUser
	for rows.Next() {
		u := &model.DashboardUser{}
		if err := rows.Scan(&u.TelegramID, &u.Username, &u.Role, &u.Tier, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// SetTier は指定利用者のティアを更新する。roleがnilの場合は現状維持。
func (r *PostgresUserRepo) SetTier(ctx context.Context, telegramID int64, tier string, role *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE dashboard_users
		 SET tier = $2, role = COALESCE($3, role), updated_at = now()
		 WHERE telegram_id = $1`,
		telegramID, tier, role,
	)
	if err != nil {
		return fmt.Errorf("failed to set tier: %w", err)
	}
	return nil
}

// FindWallets は利用者自身のウォレットアドレスを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindWallets(ctx context.Context, telegramID int64) (*model.WalletAddresses, error) {
	w := &model.WalletAddresses{}
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(near_account_id, ''), COALESCE(ton_address, '')
		 FROM dashboard_users WHERE telegram_id = $1`,
		telegramID,
	).Scan(&w.NearAccountID, &w.TonAddress)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find wallets: %w", err)
	}

	return w, nil
}

// SetTonAddress は利用者のTONアドレスを更新する。
func (r *PostgresUserRepo) SetTonAddress(ctx context.Context, telegramID int64, address string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE dashboard_users SET ton_address = $1, updated_at = now() WHERE telegram_id = $2`,
		address, telegramID,
	)
	if err != nil {
		return fmt.Errorf("failed to set ton address: %w", err)
	}
	return nil
}

// nullableString は空文字列をNULLに変換する。
// 表示用属性の未指定をNULLとして保存するために使用する。
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
