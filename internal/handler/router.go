package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emerald/devdash/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	MetricsObserver   middleware.HTTPMetricsObserver
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface

	// ドメインサービス・リポジトリ
	Users     UserDirectoryInterface
	Wallets   WalletRepositoryInterface
	Watches   WatchAccountListerInterface
	Near      NearAccountServiceInterface
	Bots      BotServiceInterface
	Ads       AdServiceInterface
	Flags     FlagRepositoryInterface
	Content   ContentServiceInterface
	Stats     StatsRepositoryInterface
	Analytics AnalyticsRepositoryInterface
	Token     TokenRepositoryInterface
	Logs      ActivityLogListerInterface
	DB        DBPinger
	Metrics   http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → Metrics
//
// 認証必須グループはさらに BearerAuth → RateLimit(General) を重ねる。
// /auth/telegram はIPキーのログイン専用レート制限のみを適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.MetricsObserver != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsObserver))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.TokenVerifier)
	userHandler := NewUserHandler(deps.Users)
	walletHandler := NewWalletHandler(deps.Wallets, deps.Watches, deps.Near)
	botHandler := NewBotHandler(deps.Bots)
	adHandler := NewAdHandler(deps.Ads)
	flagHandler := NewFlagHandler(deps.Flags)
	contentHandler := NewContentHandler(deps.Content)
	statsHandler := NewStatsHandler(deps.Stats, deps.Logs)
	analyticsHandler := NewAnalyticsHandler(deps.Analytics)
	tokenHandler := NewTokenHandler(deps.Token)
	healthHandler := NewHealthHandler(deps.DB)

	// --- 認証不要のルート ---

	r.Get("/healthz", healthHandler.Healthz)

	r.Route("/auth", func(r chi.Router) {
		// ログインのみIPキーのレート制限を適用
		if deps.RateLimiter != nil {
			r.With(deps.RateLimiter.LoginMiddleware()).Post("/telegram", authHandler.Login)
		} else {
			r.Post("/telegram", authHandler.Login)
		}
		r.Get("/check", authHandler.Check)
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: BearerAuth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewBearerAuthMiddleware(deps.TokenVerifier))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Get("/me", userHandler.Me)

		r.Route("/tiers", func(r chi.Router) {
			r.Get("/", userHandler.ListTiers)
			r.Post("/", userHandler.SetTier)
		})

		r.Route("/bots", func(r chi.Router) {
			r.Get("/", botHandler.ListBots)
			r.Post("/", botHandler.CreateBot)
			r.Get("/{id}/stats", botHandler.BotStats)
		})

		r.Route("/ads", func(r chi.Router) {
			r.Get("/", adHandler.ListAds)
			r.Post("/", adHandler.CreateAd)
		})

		r.Route("/feature-flags", func(r chi.Router) {
			r.Get("/", flagHandler.ListFlags)
			r.Post("/", flagHandler.UpsertFlag)
		})

		r.Route("/wallets", func(r chi.Router) {
			r.Get("/", walletHandler.Wallets)
			r.Post("/ton", walletHandler.SetTonAddress)
		})

		r.Get("/near/account/overview", walletHandler.NearAccountOverview)

		r.Route("/content/feeds", func(r chi.Router) {
			r.Get("/", contentHandler.ListFeeds)
			r.Post("/", contentHandler.RegisterFeed)
		})

		r.Route("/token", func(r chi.Router) {
			r.Get("/emrd", tokenHandler.Info)
			r.Get("/holders", tokenHandler.Holders)
			r.Get("/transactions", tokenHandler.Transactions)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/user-growth", analyticsHandler.UserGrowth)
			r.Get("/bot-activity", analyticsHandler.BotActivity)
		})

		r.Get("/bot-groups", botHandler.ListGroups)
		r.Get("/moderation/stats", analyticsHandler.ModerationStats)
		r.Get("/payment/stats", analyticsHandler.PaymentStats)

		r.Get("/metrics/overview", statsHandler.Overview)
		r.Get("/system/logs", statsHandler.SystemLogs)
		r.Get("/system/health", healthHandler.SystemHealth)
	})

	return r
}
