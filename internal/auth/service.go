// Package auth はTelegramログインからセッショントークン発行までのフローを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/emerald/devdash/internal/model"
	"github.com/emerald/devdash/internal/repository"
	"github.com/emerald/devdash/internal/telegramauth"
)

// IdentityVerifier はログインペイロードの署名検証インターフェース。
type IdentityVerifier interface {
	// Verify はペイロードを検証し、正規化済みの識別情報を返す。
	Verify(p *telegramauth.LoginPayload) (*model.TelegramIdentity, error)
}

// TokenIssuer はセッショントークン発行のインターフェース。
type TokenIssuer interface {
	// Issue は識別情報とロール・ティアを埋め込んだトークンを発行する。
	Issue(identity *model.TelegramIdentity, role, tier string) (string, error)
}

// LoginMetrics はログイン結果のメトリクス記録インターフェース。
type LoginMetrics interface {
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
}

// Service はログインに関するビジネスロジックを提供する。
type Service struct {
	verifier IdentityVerifier
	issuer   TokenIssuer
	userRepo repository.UserRepository
	metrics  LoginMetrics
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(verifier IdentityVerifier, issuer TokenIssuer, userRepo repository.UserRepository, metrics LoginMetrics) *Service {
	return &Service{
		verifier: verifier,
		issuer:   issuer,
		userRepo: userRepo,
		metrics:  metrics,
	}
}

// Login はログインペイロードを検証し、セッショントークンを発行する。
//
// フロー:
//  1. 署名・鮮度の検証
//  2. プロフィールのUPSERT（結果には依存しないがエラーは伝播させる）
//  3. 保存済みロール・ティアの取得。レコードがなければデフォルト
//     （role "dev", tier "pro"）をここで適用する
//  4. トークン発行
//
// 検証失敗は*telegramauth.Errorのまま返し、APIレイヤーが401に変換する。
func (s *Service) Login(ctx context.Context, payload *telegramauth.LoginPayload) (string, error) {
	identity, err := s.verifier.Verify(payload)
	if err != nil {
		s.recordFailure(err)
		slog.Warn("telegram auth verification failed",
			slog.String("error", err.Error()),
		)
		return "", err
	}

	if err := s.userRepo.UpsertIdentity(ctx, identity); err != nil {
		s.recordFailure(err)
		return "", fmt.Errorf("failed to upsert identity: %w", err)
	}

	roleTier, err := s.userRepo.FindRoleTier(ctx, identity.ID)
	if err != nil {
		s.recordFailure(err)
		return "", fmt.Errorf("failed to find role and tier: %w", err)
	}

	role, tier := model.DefaultRole, model.DefaultTier
	if roleTier != nil {
		role, tier = roleTier.Role, roleTier.Tier
	}

	tok, err := s.issuer.Issue(identity, role, tier)
	if err != nil {
		s.recordFailure(err)
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}
	slog.Info("login successful",
		slog.Int64("telegram_id", identity.ID),
		slog.String("role", role),
		slog.String("tier", tier),
	)

	return tok, nil
}

// recordFailure は失敗理由のラベルを付けてメトリクスに記録する。
func (s *Service) recordFailure(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordLoginFailure(failureReason(err))
}

// failureReason はエラーをメトリクス用の理由ラベルに写す。
func failureReason(err error) string {
	var verr *telegramauth.Error
	if errors.As(err, &verr) {
		switch verr.Kind {
		case telegramauth.KindMissingField:
			return "missing_field"
		case telegramauth.KindInvalidSignature:
			return "invalid_signature"
		case telegramauth.KindExpired:
			return "expired"
		}
	}
	return "internal"
}
