// Package ads は広告キャンペーンの管理を提供する。
package ads

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/emerald/devdash/internal/model"
	"github.com/emerald/devdash/internal/repository"
)

// Sanitizer は広告クリエイティブHTMLのサニタイズインターフェース。
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// Service は広告キャンペーンの登録と一覧を行う。
// 登録時にクリエイティブHTMLをサニタイズし、配信期間の前後関係を検証する。
type Service struct {
	adRepo    repository.AdRepository
	sanitizer Sanitizer
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(adRepo repository.AdRepository, sanitizer Sanitizer, logger *slog.Logger) *Service {
	return &Service{
		adRepo:    adRepo,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// List は広告一覧を返す。botSlugが空でない場合は対象ボットで絞り込む。
func (s *Service) List(ctx context.Context, botSlug string) ([]*model.Ad, error) {
	ads, err := s.adRepo.List(ctx, botSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	return ads, nil
}

// Create は広告を検証・サニタイズして登録する。
// start_atとend_atが両方指定されている場合、end_at >= start_atを要求する。
func (s *Service) Create(ctx context.Context, ad *model.Ad) (*model.Ad, error) {
	if strings.TrimSpace(ad.Name) == "" {
		return nil, model.NewInvalidRequestError("nameは必須です")
	}

	if ad.StartAt != nil && ad.EndAt != nil && *ad.EndAt < *ad.StartAt {
		return nil, model.NewInvalidScheduleError()
	}

	ad.Content = s.sanitizer.Sanitize(ad.Content)

	created, err := s.adRepo.Create(ctx, ad)
	if err != nil {
		return nil, fmt.Errorf("failed to create ad: %w", err)
	}

	s.logger.Info("広告を登録しました",
		slog.Int64("ad_id", created.ID),
		slog.String("name", created.Name),
		slog.String("bot_slug", created.BotSlug),
	)

	return created, nil
}
