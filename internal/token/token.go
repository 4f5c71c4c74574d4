// Package token はセッショントークンの発行と検証を提供する。
//
// トークンは共有シークレットでHMAC-SHA256署名されたcompact JWT。
// サーバー側には一切の状態を持たないため、失効はexpの経過のみで起こる
// （取り消しリストは存在しない）。role/tierはトークン発行時点のスナップ
// ショットであり、有効期限内はDBの変更と乖離しうる（許容されたずれ）。
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/emerald/devdash/internal/model"
)

// ErrorKind はトークン処理失敗の種別を表す。
type ErrorKind int

const (
	// KindInvalidToken は署名不一致または構造不正を示す。
	KindInvalidToken ErrorKind = iota
	// KindExpired はexpの経過を示す。
	KindExpired
	// KindConfigMissing は共有シークレット未設定を示す。
	// 設定ロード時に弾かれるため通常は到達しない。
	KindConfigMissing
)

// Error はトークン発行・検証の失敗を表す型付きエラー。
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	return e.Message
}

// Claims はセッショントークンに埋め込むクレームセット。
// Subjectには利用者のTelegram IDを10進文字列で格納する。
// Identityは署名検証済みペイロードの表示用属性をそのまま保持する。
type Claims struct {
	jwt.RegisteredClaims
	Identity model.TelegramIdentity `json:"tg"`
	Role     string                 `json:"role"`
	Tier     string                 `json:"tier"`
}

// Issuer は署名済みセッショントークンを発行する。
type Issuer struct {
	secret     []byte
	ttlSeconds int64
	now        func() time.Time
}

// NewIssuer はIssuerを生成する。ttlSecondsはトークンの有効期間（秒）。
func NewIssuer(sharedSecret string, ttlSeconds int64) *Issuer {
	return &Issuer{
		secret:     []byte(sharedSecret),
		ttlSeconds: ttlSeconds,
		now:        time.Now,
	}
}

// Issue は識別情報とロール・ティアを埋め込んだトークンを発行する。
// iatは現在時刻、expはiat+TTL。発行したトークンはサーバー側に保存しない。
func (i *Issuer) Issue(identity *model.TelegramIdentity, role, tier string) (string, error) {
	if len(i.secret) == 0 {
		return "", &Error{Kind: KindConfigMissing, Message: "Shared secret is not configured"}
	}

	now := i.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(i.ttlSeconds) * time.Second)),
		},
		Identity: *identity,
		Role:     role,
		Tier:     tier,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", &Error{Kind: KindInvalidToken, Message: "Token signing failed"}
	}
	return signed, nil
}

// Verifier は提出されたセッショントークンを検証しクレームを復元する。
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier はVerifierを生成する。
func NewVerifier(sharedSecret string) *Verifier {
	return &Verifier{
		secret: []byte(sharedSecret),
		now:    time.Now,
	}
}

// Verify はトークンの署名と有効期限を検証し、埋め込まれたクレームを返す。
// algはHS256に固定する。alg none等の署名方式すり替えは受理しない。
// 検証はリクエストごとに毎回行い、結果をキャッシュしない。
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, &Error{Kind: KindConfigMissing, Message: "Shared secret is not configured"}
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &Error{Kind: KindExpired, Message: "Token expired"}
		}
		return nil, &Error{Kind: KindInvalidToken, Message: "Invalid token"}
	}
	if !parsed.Valid {
		return nil, &Error{Kind: KindInvalidToken, Message: "Invalid token"}
	}

	return claims, nil
}

// SubjectID はClaimsのSubjectをTelegram IDとして解釈する。
func (c *Claims) SubjectID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}
