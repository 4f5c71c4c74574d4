package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emerald/devdash/internal/model"
)

// --- モック定義 ---

type mockContentService struct {
	listFunc     func(ctx context.Context) ([]*model.ContentFeed, error)
	registerFunc func(ctx context.Context, name, rawURL string) (*model.ContentFeed, error)
}

func (m *mockContentService) List(ctx context.Context) ([]*model.ContentFeed, error) {
	return m.listFunc(ctx)
}

func (m *mockContentService) Register(ctx context.Context, name, rawURL string) (*model.ContentFeed, error) {
	return m.registerFunc(ctx, name, rawURL)
}

var _ ContentServiceInterface = (*mockContentService)(nil)

// --- テスト ---

func TestListFeeds_ReturnsFeeds(t *testing.T) {
	h := NewContentHandler(&mockContentService{
		listFunc: func(ctx context.Context) ([]*model.ContentFeed, error) {
			return []*model.ContentFeed{
				{ID: "feed-1", Name: "技術ブログ", URL: "https://blog.example.com/rss", ItemCount: 12, LastUpdate: time.Unix(1700000000, 0)},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.ListFeeds(rec, httptest.NewRequest(http.MethodGet, "/content/feeds", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Feeds []struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			ItemCount int    `json:"item_count"`
		} `json:"feeds"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスの解析に失敗した: %v", err)
	}
	if len(body.Feeds) != 1 || body.Feeds[0].ID != "feed-1" || body.Feeds[0].ItemCount != 12 {
		t.Errorf("feeds = %+v", body.Feeds)
	}
}

func TestRegisterFeed_Success(t *testing.T) {
	var gotName, gotURL string
	h := NewContentHandler(&mockContentService{
		registerFunc: func(ctx context.Context, name, rawURL string) (*model.ContentFeed, error) {
			gotName, gotURL = name, rawURL
			return &model.ContentFeed{ID: "feed-2", Name: name, URL: rawURL, ItemCount: 5}, nil
		},
	})

	body := `{"name": "ニュース", "url": "https://news.example.com/atom.xml"}`
	rec := httptest.NewRecorder()
	h.RegisterFeed(rec, httptest.NewRequest(http.MethodPost, "/content/feeds", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusCreated)
	}
	if gotName != "ニュース" || gotURL != "https://news.example.com/atom.xml" {
		t.Errorf("name/url = %q/%q", gotName, gotURL)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスの解析に失敗した: %v", err)
	}
	if resp.ID != "feed-2" {
		t.Errorf("id = %q, want feed-2", resp.ID)
	}
}

func TestRegisterFeed_UnreachableFeedIs422(t *testing.T) {
	h := NewContentHandler(&mockContentService{
		registerFunc: func(ctx context.Context, name, rawURL string) (*model.ContentFeed, error) {
			return nil, model.NewFeedUnreachableError("フィードに接続できません")
		},
	})

	body := `{"url": "https://down.example.com/rss"}`
	rec := httptest.NewRecorder()
	h.RegisterFeed(rec, httptest.NewRequest(http.MethodPost, "/content/feeds", strings.NewReader(body)))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("ステータスコード = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("レスポンスの解析に失敗した: %v", err)
	}
	if resp.Code != model.ErrCodeFeedUnreachable {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeFeedUnreachable)
	}
}

func TestRegisterFeed_MissingURLIs400(t *testing.T) {
	h := NewContentHandler(&mockContentService{
		registerFunc: func(ctx context.Context, name, rawURL string) (*model.ContentFeed, error) {
			return nil, model.NewInvalidRequestError("URL is required")
		},
	})

	rec := httptest.NewRecorder()
	h.RegisterFeed(rec, httptest.NewRequest(http.MethodPost, "/content/feeds", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("ステータスコード = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
