package model

import "time"

// UserGrowthPoint は週単位の新規利用者数を表す。
type UserGrowthPoint struct {
	Week  time.Time
	Users int64
}

// BotActivityPoint はボット1台あたりのイベント総数を表す。
type BotActivityPoint struct {
	Slug   string
	Events int64
}

// ModerationStats はモデレーション活動の集計値を表す。
type ModerationStats struct {
	SpamDetected    int64
	MessagesDeleted int64
	UsersBanned     int64
}

// PaymentStats は決済の集計値を表す。
type PaymentStats struct {
	TotalRevenueUSD   float64
	TransactionsTotal int64
}
