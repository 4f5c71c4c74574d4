// Package content はコンテンツフィードの登録と一覧を提供する。
package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/emerald/devdash/internal/model"
	"github.com/emerald/devdash/internal/repository"
)

// maxFeedBodySize はフィードレスポンスの最大読み取りサイズ（10MB）。
const maxFeedBodySize = 10 * 1024 * 1024

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration) *http.Client
}

// Service はコンテンツフィードの登録処理を行う。
// 登録時にURLのSSRF検証とフェッチ・パースを1回実行し、
// タイトルと記事数を確認したうえで保存する。
type Service struct {
	feedRepo  repository.ContentFeedRepository
	ssrfGuard SSRFValidator
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(feedRepo repository.ContentFeedRepository, ssrfGuard SSRFValidator, logger *slog.Logger, timeout time.Duration) *Service {
	return &Service{
		feedRepo:  feedRepo,
		ssrfGuard: ssrfGuard,
		logger:    logger,
		timeout:   timeout,
		now:       time.Now,
	}
}

// List は登録済みフィードの一覧を返す。
func (s *Service) List(ctx context.Context) ([]*model.ContentFeed, error) {
	feeds, err := s.feedRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list content feeds: %w", err)
	}
	return feeds, nil
}

// Register はフィードURLを検証・フェッチして登録する。
// nameが空の場合はパース結果のタイトルを使用する。
func (s *Service) Register(ctx context.Context, name, rawURL string) (*model.ContentFeed, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, model.NewInvalidRequestError("URL is required")
	}

	if err := s.ssrfGuard.ValidateURL(rawURL); err != nil {
		s.logger.Warn("フィードURLのSSRF検証に失敗しました",
			slog.String("feed_url", rawURL),
			slog.String("error", err.Error()),
		)
		return nil, model.NewFeedUnreachableError("URLが許可されていない宛先を指しています")
	}

	parsedFeed, err := s.fetchAndParse(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(name)
	if title == "" {
		title = parsedFeed.Title
	}
	if title == "" {
		title = rawURL
	}

	feed := &model.ContentFeed{
		ID:         uuid.New().String(),
		Name:       title,
		URL:        rawURL,
		ItemCount:  len(parsedFeed.Items),
		LastUpdate: s.now().UTC(),
	}

	if err := s.feedRepo.Create(ctx, feed); err != nil {
		return nil, fmt.Errorf("failed to create content feed: %w", err)
	}

	s.logger.Info("コンテンツフィードを登録しました",
		slog.String("feed_id", feed.ID),
		slog.String("feed_url", feed.URL),
		slog.Int("item_count", feed.ItemCount),
	)

	return feed, nil
}

// fetchAndParse はフィードをフェッチしてgofeedでパースする。
// 到達不能・パース不能の場合はmodel.APIError（FEED_UNREACHABLE）を返す。
func (s *Service) fetchAndParse(ctx context.Context, rawURL string) (*gofeed.Feed, error) {
	client := s.ssrfGuard.NewSafeClient(s.timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, model.NewInvalidRequestError("Malformed feed URL")
	}
	req.Header.Set("User-Agent", "DevDash/1.0 Feed Checker")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := client.Do(req)
	if err != nil {
		s.logger.Warn("フィードのフェッチに失敗しました",
			slog.String("feed_url", rawURL),
			slog.String("error", err.Error()),
		)
		return nil, model.NewFeedUnreachableError("フィードに接続できません")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("フィードが異常なステータスを返しました",
			slog.String("feed_url", rawURL),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, model.NewFeedUnreachableError(fmt.Sprintf("HTTPステータス %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodySize))
	if err != nil {
		return nil, model.NewFeedUnreachableError("レスポンスの読み取りに失敗しました")
	}

	parser := gofeed.NewParser()
	parsedFeed, err := parser.ParseString(string(body))
	if err != nil {
		s.logger.Warn("フィードのパースに失敗しました",
			slog.String("feed_url", rawURL),
			slog.String("error", err.Error()),
		)
		return nil, model.NewFeedUnreachableError("RSS/Atomとして解析できません")
	}

	return parsedFeed, nil
}
