// Package telegramauth はTelegramログインウィジェットの署名検証を提供する。
//
// クライアントが提出するログインペイロードは、共有シークレットから導出した
// 鍵によるHMAC-SHA256署名（hashフィールド）を持つ。検証は純粋な計算処理で、
// I/Oや共有可変状態を持たないため任意の並行実行に対して安全。
package telegramauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emerald/devdash/internal/model"
)

// ErrorKind は署名検証失敗の種別を表す。
type ErrorKind int

const (
	// KindMissingField は必須フィールドの欠落を示す。
	KindMissingField ErrorKind = iota
	// KindInvalidSignature は署名の不一致を示す。
	KindInvalidSignature
	// KindExpired はペイロードの鮮度期限切れを示す。
	KindExpired
)

// Error は署名検証の失敗を表す型付きエラー。
// APIレイヤーはKindを見ずにMessageをそのまま401レスポンスに載せる。
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	return e.Message
}

// LoginPayload はログイン試行1回分の識別情報アサーション。
// Hash以外のフィールドがHMACの入力となる。
type LoginPayload struct {
	ID        int64  `json:"id"`
	AuthDate  int64  `json:"auth_date"`
	Hash      string `json:"hash"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

// Verifier はログインペイロードの署名と鮮度を検証する。
type Verifier struct {
	key        []byte
	ttlSeconds int64
	now        func() time.Time
}

// NewVerifier はVerifierを生成する。
// 鍵は共有シークレットをSHA-256で1回ハッシュして導出する（Telegramログインの仕様）。
func NewVerifier(sharedSecret string, ttlSeconds int64) *Verifier {
	key := sha256.Sum256([]byte(sharedSecret))
	return &Verifier{
		key:        key[:],
		ttlSeconds: ttlSeconds,
		now:        time.Now,
	}
}

// Verify はペイロードを検証し、正規化済みの識別情報を返す。
// 失敗時は*telegramauth.Errorを返す。
//   - 必須フィールド（id, auth_date, hash）の欠落 → KindMissingField
//   - HMAC不一致またはhashのhexデコード失敗 → KindInvalidSignature
//   - auth_dateがTTLより古い → KindExpired
//
// auth_dateが未来を指すペイロードは拒否しない。過去方向のTTLのみ強制する。
func (v *Verifier) Verify(p *LoginPayload) (*model.TelegramIdentity, error) {
	if p.ID == 0 {
		return nil, &Error{Kind: KindMissingField, Message: "Missing id"}
	}
	if p.AuthDate == 0 {
		return nil, &Error{Kind: KindMissingField, Message: "Missing auth_date"}
	}
	if p.Hash == "" {
		return nil, &Error{Kind: KindMissingField, Message: "Missing hash"}
	}

	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(dataCheckString(p)))
	expected := mac.Sum(nil)

	// 提出値はhexデコードしてからバイト列同士を定数時間比較する。
	// デコードを挟むことで大文字・小文字の差は吸収される。
	submitted, err := hex.DecodeString(strings.ToLower(p.Hash))
	if err != nil || !hmac.Equal(expected, submitted) {
		return nil, &Error{Kind: KindInvalidSignature, Message: "Bad hash"}
	}

	if v.now().Unix()-p.AuthDate > v.ttlSeconds {
		return nil, &Error{Kind: KindExpired, Message: "Auth payload expired"}
	}

	return &model.TelegramIdentity{
		ID:        p.ID,
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		PhotoURL:  p.PhotoURL,
	}, nil
}

// dataCheckString はHMACの入力となる正規化文字列を構築する。
// hashを除く全フィールドのうち空でないものを、フィールド名の辞書順で
// "name=value" 形式に並べ、改行で連結する（末尾改行なし）。
func dataCheckString(p *LoginPayload) string {
	fields := map[string]string{
		"id":         strconv.FormatInt(p.ID, 10),
		"auth_date":  strconv.FormatInt(p.AuthDate, 10),
		"username":   p.Username,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"photo_url":  p.PhotoURL,
	}

	names := make([]string, 0, len(fields))
	for name, value := range fields {
		if value == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s=%s", name, fields[name]))
	}
	return strings.Join(lines, "\n")
}
