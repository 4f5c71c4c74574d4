// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/emerald/devdash/internal/token"
)

// bearerPrefix はAuthorizationヘッダーのスキームプレフィックス。
// スキーム名は大文字・小文字を区別せず、スペースは1個に固定する。
const bearerPrefix = "Bearer "

// unauthorizedDetail はヘッダー欠落・形式不正時の汎用メッセージ。
// どちらの理由で失敗したかをクライアントに漏らさないため共通にする。
const unauthorizedDetail = "Missing or invalid Authorization header"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// claimsContextKey はリクエストコンテキストにクレームセットを格納するためのキー。
var claimsContextKey = contextKey("claims")

// TokenVerifier はセッショントークン検証のインターフェース。
// token.Verifierの部分集合として定義する。
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// NewBearerAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証する
// ミドルウェアを返す。全認証必須エンドポイントの単一の関門であり、
// トークンは途中で失効しうるためリクエストごとに毎回検証する（結果のキャッシュ禁止）。
// 検証済みクレームはリクエストコンテキストに注入する。
func NewBearerAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := ExtractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				WriteUnauthorized(w, unauthorizedDetail)
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				WriteUnauthorized(w, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractBearerToken はヘッダー値からBearerトークン部分を取り出す。
// スキームが一致しない場合や値が空の場合はfalseを返す。
func ExtractBearerToken(headerValue string) (string, bool) {
	if len(headerValue) <= len(bearerPrefix) {
		return "", false
	}
	if !strings.EqualFold(headerValue[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	return headerValue[len(bearerPrefix):], true
}

// ClaimsFromContext はリクエストコンテキストからクレームセットを取得する。
// Bearerミドルウェアを通過したリクエストでのみ有効。
func ClaimsFromContext(ctx context.Context) (*token.Claims, error) {
	claims, ok := ctx.Value(claimsContextKey).(*token.Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("claims not found in context")
	}
	return claims, nil
}

// ContextWithClaims はコンテキストにクレームセットを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}
