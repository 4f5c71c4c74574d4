// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/emerald/devdash/internal/model"
)

// UserRepository はダッシュボード利用者データの永続化インターフェース。
type UserRepository interface {
	// UpsertIdentity は検証済みの識別情報でプロフィールを作成または上書きする。
	// 表示用属性は未検証の文字列としてそのまま保存する。
	UpsertIdentity(ctx context.Context, identity *model.TelegramIdentity) error

	// FindRoleTier は保存済みのロール・ティアを取得する。
	// レコードが存在しない場合はnilを返し、デフォルト適用は呼び出し側が行う。
	FindRoleTier(ctx context.Context, telegramID int64) (*model.RoleTier, error)

	// List は利用者一覧を作成日時の降順で返す。
	List(ctx context.Context, limit int) ([]*model.DashboardUser, error)

	// SetTier は指定利用者のティアを更新する。roleがnilの場合は現状維持。
	SetTier(ctx context.Context, telegramID int64, tier string, role *string) error

	// FindWallets は利用者自身のウォレットアドレスを取得する。
	// レコードが存在しない場合はnilを返す。
	FindWallets(ctx context.Context, telegramID int64) (*model.WalletAddresses, error)

	// SetTonAddress は利用者のTONアドレスを更新する。
	SetTonAddress(ctx context.Context, telegramID int64, address string) error
}

// BotRepository はボットメタデータの永続化インターフェース。
type BotRepository interface {
	// List は全ボットをID昇順で返す。
	List(ctx context.Context) ([]*model.Bot, error)

	// Create はボットを登録し、採番済みのレコードを返す。
	Create(ctx context.Context, bot *model.Bot) (*model.Bot, error)

	// FindByID は指定IDのボットを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Bot, error)

	// CountUsers はボットの利用者数を返す。
	CountUsers(ctx context.Context, botID int64) (int64, error)

	// CountEvents はボットの指定種別イベント数を返す。
	CountEvents(ctx context.Context, botID int64, eventType string) (int64, error)

	// ListGroups はボットが参加しているグループ一覧をメンバー数の降順で返す。
	ListGroups(ctx context.Context) ([]*model.BotGroup, error)
}

// AdRepository は広告キャンペーンの永続化インターフェース。
type AdRepository interface {
	// List は広告一覧をID降順で返す。botSlugが空でない場合は絞り込む。
	List(ctx context.Context, botSlug string) ([]*model.Ad, error)

	// Create は広告を登録し、採番済みのレコードを返す。
	Create(ctx context.Context, ad *model.Ad) (*model.Ad, error)
}

// FlagRepository はフィーチャーフラグの永続化インターフェース。
type FlagRepository interface {
	// List は全フラグをキー昇順で返す。
	List(ctx context.Context) ([]*model.FeatureFlag, error)

	// Upsert はフラグを冪等にUPSERTし、保存後のレコードを返す。
	Upsert(ctx context.Context, flag *model.FeatureFlag) (*model.FeatureFlag, error)
}

// WatchAccountRepository は残高監視アカウントの永続化インターフェース。
type WatchAccountRepository interface {
	// List は監視アカウント一覧をID昇順で返す。
	List(ctx context.Context) ([]*model.WatchAccount, error)
}

// ContentFeedRepository はコンテンツフィード登録情報の永続化インターフェース。
type ContentFeedRepository interface {
	// List はフィード一覧を最終更新の降順で返す。
	List(ctx context.Context) ([]*model.ContentFeed, error)

	// Create はフィード登録情報を保存する。
	Create(ctx context.Context, feed *model.ContentFeed) error
}

// StatsRepository はダッシュボード集計値の取得インターフェース。
type StatsRepository interface {
	// Overview は利用者数・有効広告数・有効ボット数・トークンイベント数の集計を返す。
	Overview(ctx context.Context) (*model.OverviewStats, error)

	// UserGrowthWeekly は直近の週単位新規利用者数を新しい週から順に返す。
	UserGrowthWeekly(ctx context.Context) ([]*model.UserGrowthPoint, error)

	// BotActivity はボットごとのイベント総数をイベント数の降順で返す。
	BotActivity(ctx context.Context) ([]*model.BotActivityPoint, error)

	// ModerationStats はモデレーション活動の集計を返す。
	ModerationStats(ctx context.Context) (*model.ModerationStats, error)

	// PaymentStats は完了済み決済の集計を返す。
	PaymentStats(ctx context.Context) (*model.PaymentStats, error)
}

// TokenRepository はEMRDトークンの保有者・イベント参照インターフェース。
// 書き込みは外部のインデクサーが行い、ここでは読み取りのみ提供する。
type TokenRepository interface {
	// TopHolders は保有残高の降順で保有者一覧を返す。
	TopHolders(ctx context.Context, limit int) ([]*model.TokenHolder, error)

	// RecentTransactions は直近のトークンイベントを新しい順で返す。
	RecentTransactions(ctx context.Context, limit int) ([]*model.TokenTransaction, error)
}

// ActivityLogRepository はダッシュボード操作ログの取得インターフェース。
// 書き込みは外部のボット群が行い、ここでは読み取りのみ提供する。
type ActivityLogRepository interface {
	// ListRecent は直近のログを新しい順で返す。
	ListRecent(ctx context.Context, limit int) ([]*model.ActivityLog, error)
}
