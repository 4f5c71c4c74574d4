package model

import "time"

// TokenHolder はEMRDトークン保有者1件を表す。
// 残高スナップショットは外部のインデクサーが書き込み、ここでは読み取りのみ行う。
type TokenHolder struct {
	TelegramID int64
	TonAddress string
	Balance    float64
	Percentage float64
}

// TokenTransaction はEMRDトークンのオンチェーンイベント1件を表す。
type TokenTransaction struct {
	ID          int64
	Type        string
	Amount      float64
	FromAddress string
	ToAddress   string
	Hash        string
	CreatedAt   time.Time
}
