// Package bots はボットメタデータと利用統計の参照を提供する。
package bots

import (
	"context"
	"fmt"

	"github.com/emerald/devdash/internal/model"
	"github.com/emerald/devdash/internal/repository"
)

// イベント種別。dashboard_bot_eventsのtype列と対応する。
const (
	eventTypeMessage = "message"
	eventTypeCommand = "command"
)

// Service はボットの登録・一覧・統計集計を行う。
type Service struct {
	botRepo repository.BotRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(botRepo repository.BotRepository) *Service {
	return &Service{botRepo: botRepo}
}

// List はボット一覧を返す。
func (s *Service) List(ctx context.Context) ([]*model.Bot, error) {
	bots, err := s.botRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bots: %w", err)
	}
	return bots, nil
}

// Create はボットを登録し、採番済みのレコードを返す。
func (s *Service) Create(ctx context.Context, bot *model.Bot) (*model.Bot, error) {
	created, err := s.botRepo.Create(ctx, bot)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return created, nil
}

// ListGroups はボットが参加しているグループ一覧をメンバー数の降順で返す。
func (s *Service) ListGroups(ctx context.Context) ([]*model.BotGroup, error) {
	groups, err := s.botRepo.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bot groups: %w", err)
	}
	return groups, nil
}

// Stats は指定ボットの利用統計を集計する。
// ボットが存在しない場合はmodel.APIError（BOT_NOT_FOUND）を返す。
func (s *Service) Stats(ctx context.Context, botID int64) (*model.BotStats, error) {
	bot, err := s.botRepo.FindByID(ctx, botID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bot: %w", err)
	}
	if bot == nil {
		return nil, model.NewBotNotFoundError(botID)
	}

	users, err := s.botRepo.CountUsers(ctx, botID)
	if err != nil {
		return nil, fmt.Errorf("failed to count bot users: %w", err)
	}

	messages, err := s.botRepo.CountEvents(ctx, botID, eventTypeMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to count message events: %w", err)
	}

	commands, err := s.botRepo.CountEvents(ctx, botID, eventTypeCommand)
	if err != nil {
		return nil, fmt.Errorf("failed to count command events: %w", err)
	}

	return &model.BotStats{
		Bot:           bot,
		UsersTotal:    users,
		MessagesTotal: messages,
		CommandsTotal: commands,
	}, nil
}
