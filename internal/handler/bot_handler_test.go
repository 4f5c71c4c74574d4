package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/emerald/devdash/internal/model"
)

// --- モック定義 ---

type mockBotService struct {
	listFunc       func(ctx context.Context) ([]*model.Bot, error)
	createFunc     func(ctx context.Context, bot *model.Bot) (*model.Bot, error)
	statsFunc      func(ctx context.Context, botID int64) (*model.BotStats, error)
	listGroupsFunc func(ctx context.Context) ([]*model.BotGroup, error)
}

func (m *mockBotService) List(ctx context.Context) ([]*model.Bot, error) {
	return m.listFunc(ctx)
}

func (m *mockBotService) Create(ctx context.Context, bot *model.Bot) (*model.Bot, error) {
	return m.createFunc(ctx, bot)
}

func (m *mockBotService) Stats(ctx context.Context, botID int64) (*model.BotStats, error) {
	return m.statsFunc(ctx, botID)
}

func (m *mockBotService) ListGroups(ctx context.Context) ([]*model.BotGroup, error) {
	return m.listGroupsFunc(ctx)
}

var _ BotServiceInterface = (*mockBotService)(nil)

// statsRequest はchiのURLパラメータを解決させるためルーター経由でリクエストを流す。
func statsRequest(t *testing.T, h *BotHandler, path string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/bots/{id}/stats", h.BotStats)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

// --- テスト ---

func TestListBots_ReturnsBots(t *testing.T) {
	h := NewBotHandler(&mockBotService{
		listFunc: func(ctx context.Context) ([]*model.Bot, error) {
			return []*model.Bot{
				{ID: 1, Username: "alpha_bot", IsActive: true},
				{ID: 2, Username: "beta_bot", Meta: json.RawMessage(`{"lang":"ja"}`)},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/bots", nil)
	rec := httptest.NewRecorder()

	h.ListBots(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Bots []struct {
			ID       int64           `json:"id"`
			Username string          `json:"username"`
			Meta     json.RawMessage `json:"meta"`
		} `json:"bots"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスの解析に失敗した: %v", err)
	}
	if len(body.Bots) != 2 {
		t.Fatalf("bots件数 = %d, want 2", len(body.Bots))
	}
	// Metaがnilのボットは空オブジェクトにフォールバックする
	if string(body.Bots[0].Meta) != `{}` {
		t.Errorf("bots[0].meta = %s, want {}", body.Bots[0].Meta)
	}
	if string(body.Bots[1].Meta) != `{"lang":"ja"}` {
		t.Errorf("bots[1].meta = %s", body.Bots[1].Meta)
	}
}

func TestCreateBot_DefaultsToActive(t *testing.T) {
	var gotBot *model.Bot
	h := NewBotHandler(&mockBotService{
		createFunc: func(ctx context.Context, bot *model.Bot) (*model.Bot, error) {
			gotBot = bot
			created := *bot
			created.ID = 10
			return &created, nil
		},
	})

	body := `{"username": "gamma_bot", "title": "Gamma"}`
	req := httptest.NewRequest(http.MethodPost, "/bots", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreateBot(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusCreated)
	}
	if gotBot == nil || !gotBot.IsActive {
		t.Error("is_active省略時はtrueになるべき")
	}

	var resp struct {
		ID       int64 `json:"id"`
		IsActive bool  `json:"is_active"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスの解析に失敗した: %v", err)
	}
	if resp.ID != 10 {
		t.Errorf("id = %d, want 10", resp.ID)
	}
}

func TestCreateBot_ExplicitInactive(t *testing.T) {
	var gotBot *model.Bot
	h := NewBotHandler(&mockBotService{
		createFunc: func(ctx context.Context, bot *model.Bot) (*model.Bot, error) {
			gotBot = bot
			return bot, nil
		},
	})

	body := `{"username": "delta_bot", "is_active": false}`
	req := httptest.NewRequest(http.MethodPost, "/bots", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreateBot(rec, req)

	if gotBot == nil || gotBot.IsActive {
		t.Error("is_active: falseが反映されていない")
	}
}

func TestCreateBot_MissingUsernameReturns400(t *testing.T) {
	h := NewBotHandler(&mockBotService{
		createFunc: func(ctx context.Context, bot *model.Bot) (*model.Bot, error) {
			t.Error("検証前にCreateが呼ばれた")
			return bot, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/bots", strings.NewReader(`{"title": "no name"}`))
	rec := httptest.NewRecorder()

	h.CreateBot(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("ステータスコード = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestBotStats_Success(t *testing.T) {
	h := NewBotHandler(&mockBotService{
		statsFunc: func(ctx context.Context, botID int64) (*model.BotStats, error) {
			if botID != 7 {
				t.Errorf("botID = %d, want 7", botID)
			}
			return &model.BotStats{
				Bot:           &model.Bot{ID: 7, Username: "stats_bot"},
				UsersTotal:    120,
				MessagesTotal: 4500,
				CommandsTotal: 300,
			}, nil
		},
	})

	rec := statsRequest(t, h, "/bots/7/stats")

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Bot struct {
			ID int64 `json:"id"`
		} `json:"bot"`
		UsersTotal    int64 `json:"users_total"`
		MessagesTotal int64 `json:"messages_total"`
		CommandsTotal int64 `json:"commands_total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスの解析に失敗した: %v", err)
	}
	if body.Bot.ID != 7 || body.UsersTotal != 120 || body.MessagesTotal != 4500 || body.CommandsTotal != 300 {
		t.Errorf("レスポンス = %+v", body)
	}
}

func TestBotStats_NonIntegerIDReturns400(t *testing.T) {
	h := NewBotHandler(&mockBotService{
		statsFunc: func(ctx context.Context, botID int64) (*model.BotStats, error) {
			t.Error("不正なIDでStatsが呼ばれた")
			return nil, nil
		},
	})

	rec := statsRequest(t, h, "/bots/abc/stats")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("ステータスコード = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestBotStats_NotFoundReturns404(t *testing.T) {
	h := NewBotHandler(&mockBotService{
		statsFunc: func(ctx context.Context, botID int64) (*model.BotStats, error) {
			return nil, model.NewBotNotFoundError(botID)
		},
	})

	rec := statsRequest(t, h, "/bots/999/stats")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusNotFound)
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスの解析に失敗した: %v", err)
	}
	if body.Code != model.ErrCodeBotNotFound {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeBotNotFound)
	}
}

func TestBotStats_UnexpectedErrorIs500(t *testing.T) {
	h := NewBotHandler(&mockBotService{
		statsFunc: func(ctx context.Context, botID int64) (*model.BotStats, error) {
			return nil, errors.New("db down")
		},
	})

	rec := statsRequest(t, h, "/bots/7/stats")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("ステータスコード = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rec.Body.String(), "db down") {
		t.Error("内部エラーの詳細がレスポンスに漏れている")
	}
}

func TestListBotGroups_ReturnsGroupsByMemberCount(t *testing.T) {
	h := NewBotHandler(&mockBotService{
		listGroupsFunc: func(ctx context.Context) ([]*model.BotGroup, error) {
			return []*model.BotGroup{
				{ID: 1, ChatID: -100123, ChatTitle: "Emerald総合", ChatType: "supergroup", MemberCount: 5400},
				{ID: 2, ChatID: -100456, ChatTitle: "開発者チャット", ChatType: "group", MemberCount: 80},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.ListGroups(rec, httptest.NewRequest(http.MethodGet, "/bot-groups", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Groups []struct {
			ChatID      int64  `json:"chat_id"`
			ChatTitle   string `json:"chat_title"`
			MemberCount int64  `json:"member_count"`
		} `json:"groups"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスの解析に失敗した: %v", err)
	}
	if len(body.Groups) != 2 {
		t.Fatalf("グループ数 = %d, want 2", len(body.Groups))
	}
	if body.Groups[0].ChatTitle != "Emerald総合" || body.Groups[0].MemberCount != 5400 {
		t.Errorf("groups[0] = %+v", body.Groups[0])
	}
}

func TestListBotGroups_EmptyResultIsEmptyArray(t *testing.T) {
	h := NewBotHandler(&mockBotService{
		listGroupsFunc: func(ctx context.Context) ([]*model.BotGroup, error) {
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	h.ListGroups(rec, httptest.NewRequest(http.MethodGet, "/bot-groups", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"groups":[]`) {
		t.Errorf("空のグループ一覧が配列になっていない: %s", rec.Body.String())
	}
}
