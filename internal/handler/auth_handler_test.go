package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emerald/devdash/internal/telegramauth"
	"github.com/emerald/devdash/internal/token"
)

// --- モック定義 ---

type mockAuthService struct {
	loginFunc func(ctx context.Context, payload *telegramauth.LoginPayload) (string, error)
}

func (m *mockAuthService) Login(ctx context.Context, payload *telegramauth.LoginPayload) (string, error) {
	return m.loginFunc(ctx, payload)
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

type mockCheckVerifier struct {
	verifyFunc func(tokenString string) (*token.Claims, error)
}

func (m *mockCheckVerifier) Verify(tokenString string) (*token.Claims, error) {
	return m.verifyFunc(tokenString)
}

var _ TokenCheckVerifier = (*mockCheckVerifier)(nil)

// --- テスト ---

func TestAuthHandler_Login_Success(t *testing.T) {
	var gotPayload *telegramauth.LoginPayload
	h := NewAuthHandler(&mockAuthService{
		loginFunc: func(ctx context.Context, payload *telegramauth.LoginPayload) (string, error) {
			gotPayload = payload
			return "signed-token", nil
		},
	}, nil)

	body := `{"id":42,"auth_date":1700000000,"hash":"deadbeef","username":"alice"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/telegram", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200、body: %s", rec.Code, rec.Body.String())
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスボディの解析に失敗: %v", err)
	}
	if resp.AccessToken != "signed-token" {
		t.Errorf("access_token = %q, want %q", resp.AccessToken, "signed-token")
	}
	if resp.TokenType != "bearer" {
		t.Errorf("token_type = %q, want %q", resp.TokenType, "bearer")
	}

	if gotPayload == nil || gotPayload.ID != 42 || gotPayload.Username != "alice" {
		t.Errorf("サービスに渡されたペイロードが不正: %+v", gotPayload)
	}
}

func TestAuthHandler_Login_VerificationFailureIs401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		loginFunc: func(ctx context.Context, payload *telegramauth.LoginPayload) (string, error) {
			return "", &telegramauth.Error{Kind: telegramauth.KindInvalidSignature, Message: "Bad hash"}
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/telegram", strings.NewReader(`{"id":42,"auth_date":1,"hash":"x"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスボディの解析に失敗: %v", err)
	}
	if body["message"] != "Bad hash" {
		t.Errorf("message = %v, want %q", body["message"], "Bad hash")
	}
}

func TestAuthHandler_Login_InternalErrorIs500(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		loginFunc: func(ctx context.Context, payload *telegramauth.LoginPayload) (string, error) {
			return "", errors.New("db down")
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/telegram", strings.NewReader(`{"id":42,"auth_date":1,"hash":"x"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	// DBエラーの詳細がレスポンスに漏れないこと
	if strings.Contains(rec.Body.String(), "db down") {
		t.Error("内部エラーの詳細がレスポンスに含まれている")
	}
}

func TestAuthHandler_Login_MalformedBodyIs401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		loginFunc: func(ctx context.Context, payload *telegramauth.LoginPayload) (string, error) {
			t.Fatal("ボディ不正時にLoginが呼ばれてはならない")
			return "", nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/telegram", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthHandler_Check_Valid(t *testing.T) {
	h := NewAuthHandler(nil, &mockCheckVerifier{
		verifyFunc: func(tokenString string) (*token.Claims, error) {
			if tokenString != "valid-token" {
				t.Errorf("渡されたトークン = %q, want %q", tokenString, "valid-token")
			}
			return &token.Claims{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/check", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	h.Check(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスボディの解析に失敗: %v", err)
	}
	if !body["authenticated"] {
		t.Error("authenticated = false, want true")
	}
}

func TestAuthHandler_Check_MissingHeader(t *testing.T) {
	h := NewAuthHandler(nil, &mockCheckVerifier{
		verifyFunc: func(tokenString string) (*token.Claims, error) {
			t.Fatal("ヘッダー欠落時にVerifyが呼ばれてはならない")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/check", nil)
	rec := httptest.NewRecorder()

	h.Check(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthHandler_Check_InvalidToken(t *testing.T) {
	h := NewAuthHandler(nil, &mockCheckVerifier{
		verifyFunc: func(tokenString string) (*token.Claims, error) {
			return nil, &token.Error{Kind: token.KindExpired, Message: "Token expired"}
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/check", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()

	h.Check(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Token expired") {
		t.Errorf("失効理由がレスポンスに含まれていない: %s", rec.Body.String())
	}
}
