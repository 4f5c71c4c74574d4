package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emerald/devdash/internal/model"
)

// PostgresAdRepo はPostgreSQLを使用した広告リポジトリ。
type PostgresAdRepo struct {
	db *sql.DB
}

// NewPostgresAdRepo はPostgresAdRepoを生成する。
func NewPostgresAdRepo(db *sql.DB) *PostgresAdRepo {
	return &PostgresAdRepo{db: db}
}

// adColumns はSELECT句の共通部分。
// start_at/end_atはUNIX秒のエポック値としてAPIに露出するためextractする。
const adColumns = `id, name, placement, content, is_active,
	extract(epoch from start_at)::bigint AS start_at,
	extract(epoch from end_at)::bigint AS end_at,
	targeting, COALESCE(bot_slug, '')`

// List は広告一覧をID降順で返す。botSlugが空でない場合は絞り込む。
func (r *PostgresAdRepo) List(ctx context.Context, botSlug string) ([]*model.Ad, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if botSlug != "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+adColumns+` FROM dashboard_ads WHERE bot_slug = $1 ORDER BY id DESC`,
			botSlug,
		)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+adColumns+` FROM dashboard_ads ORDER BY id DESC`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	defer rows.Close()

	var ads []*model.Ad
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ads: %w", err)
	}

	return ads, nil
}

// Create は広告を登録し、採番済みのレコードを返す。
func (r *PostgresAdRepo) Create(ctx context.Context, ad *model.Ad) (*model.Ad, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO dashboard_ads (name, placement, content, is_active, start_at, end_at, targeting, bot_slug)
		 VALUES ($1, $2, $3, $4, to_timestamp($5), to_timestamp($6), $7, $8)
		 RETURNING `+adColumns,
		ad.Name, ad.Placement, ad.Content, ad.IsActive,
		ad.StartAt, ad.EndAt, ad.Targeting, nullableString(ad.BotSlug),
	)
	created, err := scanAd(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create ad: %w", err)
	}
	return created, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通スキャンインターフェース。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAd は1行を広告モデルに変換する。start_at/end_atのNULLはnilに写す。
func scanAd(row rowScanner) (*model.Ad, error) {
	ad := &model.Ad{}
	var startAt, endAt sql.NullInt64
	var targeting []byte
	if err := row.Scan(&ad.ID, &ad.Name, &ad.Placement, &ad.Content, &ad.IsActive,
		&startAt, &endAt, &targeting, &ad.BotSlug); err != nil {
		return nil, fmt.Errorf("failed to scan ad: %w", err)
	}
	if startAt.Valid {
		ad.StartAt = &startAt.Int64
	}
	if endAt.Valid {
		ad.EndAt = &endAt.Int64
	}
	ad.Targeting = targeting
	return ad, nil
}

// compile-time interface check
var _ AdRepository = (*PostgresAdRepo)(nil)
