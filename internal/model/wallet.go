package model

import (
	"encoding/json"
	"time"
)

// ブロックチェーンの種別。
const (
	ChainNEAR = "near"
	ChainTON  = "ton"
)

// WatchAccount は残高監視対象のブロックチェーンアカウントを表す。
type WatchAccount struct {
	ID        int64
	Chain     string
	AccountID string
	Label     string
	Meta      json.RawMessage
	CreatedAt time.Time
}

// WalletAddresses はユーザー自身のウォレットアドレスを表す。
type WalletAddresses struct {
	NearAccountID string
	TonAddress    string
}

// NearAccountOverview はNEAR RPCのview_account結果を整形したもの。
type NearAccountOverview struct {
	AccountID    string
	AmountYocto  string
	AmountNear   string
	LockedYocto  string
	LockedNear   string
	StorageUsage int64
	CodeHash     string
}
