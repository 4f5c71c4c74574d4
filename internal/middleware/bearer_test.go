package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emerald/devdash/internal/token"
)

// --- モック定義 ---

type mockTokenVerifier struct {
	verifyFunc func(tokenString string) (*token.Claims, error)
}

func (m *mockTokenVerifier) Verify(tokenString string) (*token.Claims, error) {
	return m.verifyFunc(tokenString)
}

var _ TokenVerifier = (*mockTokenVerifier)(nil)

// --- テスト ---

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{"標準形式", "Bearer abc123", "abc123", true},
		{"小文字スキーム", "bearer abc123", "abc123", true},
		{"大文字スキーム", "BEARER abc123", "abc123", true},
		{"ヘッダーなし", "", "", false},
		{"スキーム違い", "Token abc123", "", false},
		{"Basicスキーム", "Basic dXNlcjpwYXNz", "", false},
		{"トークン部分なし", "Bearer ", "", false},
		{"スキームのみ", "Bearer", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractBearerToken(tt.header)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBearerAuthMiddleware_ValidTokenInjectsClaims(t *testing.T) {
	wantClaims := &token.Claims{Role: "dev", Tier: "pro"}
	verifier := &mockTokenVerifier{
		verifyFunc: func(tokenString string) (*token.Claims, error) {
			if tokenString != "valid-token" {
				t.Errorf("渡されたトークン = %q, want %q", tokenString, "valid-token")
			}
			return wantClaims, nil
		},
	}

	var gotClaims *token.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := ClaimsFromContext(r.Context())
		if err != nil {
			t.Fatalf("ClaimsFromContext がエラーを返した: %v", err)
		}
		gotClaims = claims
		w.WriteHeader(http.StatusOK)
	})

	mw := NewBearerAuthMiddleware(verifier)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotClaims != wantClaims {
		t.Error("コンテキストに検証済みクレームが注入されていない")
	}
}

func TestBearerAuthMiddleware_MissingAndMalformedAreSame401(t *testing.T) {
	verifier := &mockTokenVerifier{
		verifyFunc: func(tokenString string) (*token.Claims, error) {
			t.Fatal("ヘッダー不正時にVerifyが呼ばれてはならない")
			return nil, nil
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("認証失敗時に後続ハンドラーが呼ばれてはならない")
	})
	mw := NewBearerAuthMiddleware(verifier)

	var bodies []string
	for _, header := range []string{"", "Token abc123", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		mw(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header=%q: status = %d, want 401", header, rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}

	// ヘッダー欠落と形式不正はレスポンスから区別できないこと
	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Errorf("失敗理由によってレスポンスボディが異なる: %q vs %q", bodies[0], bodies[i])
		}
	}
}

func TestBearerAuthMiddleware_InvalidTokenReturns401(t *testing.T) {
	verifier := &mockTokenVerifier{
		verifyFunc: func(tokenString string) (*token.Claims, error) {
			return nil, &token.Error{Kind: token.KindInvalidToken, Message: "Invalid token"}
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("検証失敗時に後続ハンドラーが呼ばれてはならない")
	})

	mw := NewBearerAuthMiddleware(verifier)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()

	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	var body ErrorResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスボディの解析に失敗: %v", err)
	}
	if body.Code != "UNAUTHORIZED" {
		t.Errorf("code = %q, want UNAUTHORIZED", body.Code)
	}
}

func TestClaimsFromContext_MissingClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)

	if _, err := ClaimsFromContext(req.Context()); err == nil {
		t.Fatal("クレーム未設定のコンテキストでエラーが返されなかった")
	}
}
