package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/emerald/devdash/internal/middleware"
	"github.com/emerald/devdash/internal/model"
	"github.com/emerald/devdash/internal/token"
)

// --- モック定義 ---

type mockUserDirectory struct {
	listFunc    func(ctx context.Context, limit int) ([]*model.DashboardUser, error)
	setTierFunc func(ctx context.Context, telegramID int64, tier string, role *string) error
}

func (m *mockUserDirectory) List(ctx context.Context, limit int) ([]*model.DashboardUser, error) {
	return m.listFunc(ctx, limit)
}

func (m *mockUserDirectory) SetTier(ctx context.Context, telegramID int64, tier string, role *string) error {
	return m.setTierFunc(ctx, telegramID, tier, role)
}

var _ UserDirectoryInterface = (*mockUserDirectory)(nil)

func testClaims() *token.Claims {
	return &token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "42"},
		Identity:         model.TelegramIdentity{ID: 42, Username: "alice"},
		Role:             "dev",
		Tier:             "pro",
	}
}

// --- テスト ---

func TestMe_ReturnsClaimsSnapshot(t *testing.T) {
	h := NewUserHandler(&mockUserDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), testClaims()))
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Profile model.TelegramIdentity `json:"profile"`
		Role    string                 `json:"role"`
		Tier    string                 `json:"tier"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスの解析に失敗した: %v", err)
	}
	if body.Profile.Username != "alice" {
		t.Errorf("profile.username = %q, want %q", body.Profile.Username, "alice")
	}
	if body.Role != "dev" || body.Tier != "pro" {
		t.Errorf("role/tier = %q/%q, want dev/pro", body.Role, body.Tier)
	}
}

func TestMe_WithoutClaimsReturns401(t *testing.T) {
	h := NewUserHandler(&mockUserDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ステータスコード = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestListTiers_DefaultLimit(t *testing.T) {
	var gotLimit int
	h := NewUserHandler(&mockUserDirectory{
		listFunc: func(ctx context.Context, limit int) ([]*model.DashboardUser, error) {
			gotLimit = limit
			return []*model.DashboardUser{
				{TelegramID: 42, Username: "alice", Role: "dev", Tier: "pro", CreatedAt: time.Unix(1700000000, 0)},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/tiers", nil)
	rec := httptest.NewRecorder()

	h.ListTiers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotLimit != 100 {
		t.Errorf("limit = %d, want 100", gotLimit)
	}

	var body struct {
		Users []struct {
			TelegramID int64  `json:"telegram_id"`
			Username   string `json:"username"`
		} `json:"users"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスの解析に失敗した: %v", err)
	}
	if len(body.Users) != 1 || body.Users[0].TelegramID != 42 {
		t.Errorf("users = %+v", body.Users)
	}
}

func TestListTiers_CustomLimit(t *testing.T) {
	var gotLimit int
	h := NewUserHandler(&mockUserDirectory{
		listFunc: func(ctx context.Context, limit int) ([]*model.DashboardUser, error) {
			gotLimit = limit
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/tiers?limit=25", nil)
	rec := httptest.NewRecorder()

	h.ListTiers(rec, req)

	if gotLimit != 25 {
		t.Errorf("limit = %d, want 25", gotLimit)
	}
}

func TestListTiers_InvalidLimitReturns400(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-5"} {
		t.Run(raw, func(t *testing.T) {
			h := NewUserHandler(&mockUserDirectory{
				listFunc: func(ctx context.Context, limit int) ([]*model.DashboardUser, error) {
					t.Error("不正なlimitでListが呼ばれた")
					return nil, nil
				},
			})

			req := httptest.NewRequest(http.MethodGet, "/tiers?limit="+raw, nil)
			rec := httptest.NewRecorder()

			h.ListTiers(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("ステータスコード = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestSetTier_Success(t *testing.T) {
	var gotID int64
	var gotTier string
	var gotRole *string
	h := NewUserHandler(&mockUserDirectory{
		setTierFunc: func(ctx context.Context, telegramID int64, tier string, role *string) error {
			gotID, gotTier, gotRole = telegramID, tier, role
			return nil
		},
	})

	body := `{"telegram_id": 42, "tier": "enterprise", "role": "admin"}`
	req := httptest.NewRequest(http.MethodPost, "/tiers", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.SetTier(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotID != 42 || gotTier != "enterprise" {
		t.Errorf("telegram_id/tier = %d/%q", gotID, gotTier)
	}
	if gotRole == nil || *gotRole != "admin" {
		t.Errorf("role = %v, want admin", gotRole)
	}

	var resp map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスの解析に失敗した: %v", err)
	}
	if !resp["ok"] {
		t.Error("okフィールドがtrueでない")
	}
}

func TestSetTier_MissingFieldsReturns400(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"telegram_id欠落", `{"tier": "pro"}`},
		{"tier欠落", `{"telegram_id": 42}`},
		{"不正なJSON", `{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewUserHandler(&mockUserDirectory{
				setTierFunc: func(ctx context.Context, telegramID int64, tier string, role *string) error {
					t.Error("検証前にSetTierが呼ばれた")
					return nil
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/tiers", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			h.SetTier(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("ステータスコード = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}
