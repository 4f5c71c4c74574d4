package model

import (
	"encoding/json"
	"time"
)

// Bot は運用中のTelegramボットのメタデータを表す。
// 実際のボットトークンはDBに保存せず、環境変数キー（EnvTokenKey）のみを保持する。
type Bot struct {
	ID          int64
	Username    string
	Title       string
	EnvTokenKey string
	IsActive    bool
	Meta        json.RawMessage
}

// BotStats はボット単位の利用統計を表す。
type BotStats struct {
	Bot           *Bot
	UsersTotal    int64
	MessagesTotal int64
	CommandsTotal int64
}

// BotGroup はボットが参加しているTelegramグループチャットを表す。
type BotGroup struct {
	ID          int64
	ChatID      int64
	ChatTitle   string
	ChatType    string
	MemberCount int64
	CreatedAt   time.Time
}
