package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emerald/devdash/internal/model"
)

// PostgresFlagRepo はPostgreSQLを使用したフィーチャーフラグリポジトリ。
type PostgresFlagRepo struct {
	db *sql.DB
}

// NewPostgresFlagRepo はPostgresFlagRepoを生成する。
func NewPostgresFlagRepo(db *sql.DB) *PostgresFlagRepo {
	return &PostgresFlagRepo{db: db}
}

// List は全フラグをキー昇順で返す。
func (r *PostgresFlagRepo) List(ctx context.Context) ([]*model.FeatureFlag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value, COALESCE(description, '') FROM dashboard_feature_flags ORDER BY key ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature flags: %w", err)
	}
	defer rows.Close()

	var flags []*model.FeatureFlag
	for rows.Next() {
		f := &model.FeatureFlag{}
		var value []byte
		if err := rows.Scan(&f.Key, &value, &f.Description); err != nil {
			return nil, fmt.Errorf("failed to scan feature flag: %w", err)
		}
		f.Value = value
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feature flags: %w", err)
	}

	return flags, nil
}

// Upsert はフラグを冪等にUPSERTし、保存後のレコードを返す。
func (r *PostgresFlagRepo) Upsert(ctx context.Context, flag *model.FeatureFlag) (*model.FeatureFlag, error) {
	saved := &model.FeatureFlag{}
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO dashboard_feature_flags (key, value, description)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = $2, description = $3
		 RETURNING key, value, COALESCE(description, '')`,
		flag.Key, flag.Value, nullableString(flag.Description),
	).Scan(&saved.Key, &value, &saved.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert feature flag: %w", err)
	}
	saved.Value = value
	return saved, nil
}

// compile-time interface check
var _ FlagRepository = (*PostgresFlagRepo)(nil)
