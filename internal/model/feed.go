package model

import "time"

// ContentFeed はボット経由で配信するRSS/Atomフィードの登録情報を表す。
// 登録時に1回だけフェッチ・パースし、タイトルと記事数を記録する。
type ContentFeed struct {
	ID         string
	Name       string
	URL        string
	ItemCount  int
	LastUpdate time.Time
	CreatedAt  time.Time
}
