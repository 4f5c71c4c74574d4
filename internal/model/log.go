package model

import "time"

// ActivityLog はダッシュボードの操作ログ1件を表す。
// workerモードのクリーンアップジョブにより保持期間超過分が削除される。
type ActivityLog struct {
	Level     string
	Message   string
	CreatedAt time.Time
}

// OverviewStats はダッシュボードトップの集計値を表す。
type OverviewStats struct {
	UsersTotal  int64
	AdsActive   int64
	BotsActive  int64
	TokenEvents int64
}
