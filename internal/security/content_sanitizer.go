// Package security はアプリケーションのセキュリティ機能を提供する。
//
// AdSanitizerService は広告クリエイティブのHTMLをサニタイズし、
// ダッシュボードUIおよび配信先チャットでのXSSを防止する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// TelegramのメッセージHTMLで使用可能なタグのみを通過させる。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// AdSanitizerService は広告HTMLのサニタイズ機能のインターフェースを定義する。
// 広告の保存前に必ず適用する。
type AdSanitizerService interface {
	// Sanitize は広告HTMLをサニタイズして安全なHTMLを返す。
	// 許可タグ（b, strong, i, em, u, s, code, pre, a, br）のみを通過させ、
	// script等のタグおよびon*イベント属性を除去する。
	// aタグのhrefはhttp/httpsスキームのみ許可される。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawHTML string) string
}

// adSanitizer はAdSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type adSanitizer struct {
	policy *bluemonday.Policy
}

// NewAdSanitizer はAdSanitizerServiceの新しいインスタンスを生成する。
// ポリシーはTelegramのメッセージHTMLが受理するタグの部分集合:
//   - 許可タグ: b, strong, i, em, u, s, code, pre, a, br
//   - aタグ: href属性のみ、http/httpsスキーム限定、相対URL不許可
//   - その他のタグ・属性（script, iframe, style, on*等）は許可リスト外として除去
func NewAdSanitizer() *adSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"b", "strong", "i", "em",
		"u", "s", "code", "pre", "br",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AllowURLSchemes("http", "https")
	p.RequireNoReferrerOnLinks(true)

	return &adSanitizer{
		policy: p,
	}
}

// Sanitize は広告HTMLをサニタイズして安全なHTMLを返す。
func (s *adSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}

// compile-time interface check
var _ AdSanitizerService = (*adSanitizer)(nil)
