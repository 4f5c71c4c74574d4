package model

import "encoding/json"

// Ad は広告キャンペーンを表す。
// ContentはサニタイズされたHTML。StartAt/EndAtはUNIX秒で、未設定の場合はnil。
type Ad struct {
	ID        int64
	Name      string
	Placement string
	Content   string
	IsActive  bool
	StartAt   *int64
	EndAt     *int64
	Targeting json.RawMessage
	BotSlug   string
}
