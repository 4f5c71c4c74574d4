package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeInvalidSchedule = "INVALID_SCHEDULE"
	ErrCodeBotNotFound     = "BOT_NOT_FOUND"
	ErrCodeFeedUnreachable = "FEED_UNREACHABLE"
	ErrCodeInvalidAccount  = "INVALID_ACCOUNT_ID"
	ErrCodeRPCFailed       = "RPC_FAILED"
)

// NewUnauthorizedError は認証失敗エラーを生成する。
// detailには検証失敗の理由（例: "Bad hash"）を渡す。
// ヘッダー欠落と不正トークンを呼び出し側で区別しないよう、detailは汎用メッセージに留めること。
func NewUnauthorizedError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  detail,
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewInvalidRequestError はリクエスト形式不正エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewInvalidScheduleError は広告の配信期間が不正な場合のエラーを生成する。
func NewInvalidScheduleError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSchedule,
		Message:  "広告の配信終了日時が開始日時より前に設定されています。",
		Category: "validation",
		Action:   "start_atとend_atの前後関係を確認してください。",
	}
}

// NewBotNotFoundError はボットが見つからない場合のエラーを生成する。
func NewBotNotFoundError(botID int64) *APIError {
	return &APIError{
		Code:     ErrCodeBotNotFound,
		Message:  fmt.Sprintf("指定されたボットが見つかりません: %d", botID),
		Category: "validation",
		Action:   "ボットIDを確認してください。",
	}
}

// NewFeedUnreachableError はフィードの取得・解析に失敗した場合のエラーを生成する。
func NewFeedUnreachableError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeFeedUnreachable,
		Message:  fmt.Sprintf("フィードの取得に失敗しました: %s", reason),
		Category: "validation",
		Action:   "URLが有効なRSS/Atomフィードを指しているか確認してください。",
	}
}

// NewInvalidAccountError はブロックチェーンアカウントIDが不正な場合のエラーを生成する。
func NewInvalidAccountError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAccount,
		Message:  fmt.Sprintf("アカウントIDが不正です: %s", reason),
		Category: "validation",
		Action:   "アカウントIDの形式を確認してください。",
	}
}

// NewRPCFailedError はブロックチェーンRPC呼び出しの失敗エラーを生成する。
// RPCエンドポイント由来の詳細はログのみに記録し、ユーザーには汎用メッセージを返す。
func NewRPCFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeRPCFailed,
		Message:  "ブロックチェーンノードへの問い合わせに失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
