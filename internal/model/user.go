// Package model はドメインモデルを定義する。
package model

import "time"

// TelegramIdentity はTelegramログインウィジェットで検証済みのユーザー識別情報を表す。
// 表示用属性（Username等）は検証済み署名に含まれるが、内容自体は未検証の文字列として扱う。
type TelegramIdentity struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

// DashboardUser はダッシュボード利用者を表す。
// TelegramのユーザーIDを主キーとし、ログインのたびにプロフィールを上書きする。
type DashboardUser struct {
	TelegramID    int64
	Username      string
	FirstName     string
	LastName      string
	PhotoURL      string
	Role          string
	Tier          string
	NearAccountID string
	TonAddress    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RoleTier はユーザーの権限ロールと課金ティアの組を表す。
type RoleTier struct {
	Role string
	Tier string
}

// ロール・ティアのデフォルト値。
// 保存済みレコードが存在しない場合に呼び出し側（トークン発行者）が適用する。
const (
	DefaultRole = "dev"
	DefaultTier = "pro"
)
