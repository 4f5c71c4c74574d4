package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/emerald/devdash/internal/model"
)

// EMRDトークンの固定メタデータ。TONチェーン上のジェットンコントラクト。
const (
	emrdContract = "EQDkjqMPPCLYN2xUQp_mWMFt3zPxUgcLIEMCDe-RDHfx2Gsp"
	emrdDecimals = 9
)

// /token配下のデフォルト取得件数。
const (
	defaultHolderListLimit      = 50
	defaultTransactionListLimit = 100
)

// TokenRepositoryInterface はトークンハンドラーが必要とするリポジトリインターフェース。
type TokenRepositoryInterface interface {
	TopHolders(ctx context.Context, limit int) ([]*model.TokenHolder, error)
	RecentTransactions(ctx context.Context, limit int) ([]*model.TokenTransaction, error)
}

// TokenHandler はEMRDトークン情報参照のHTTPハンドラー。
type TokenHandler struct {
	tokens TokenRepositoryInterface
}

// NewTokenHandler はTokenHandlerを生成する。
func NewTokenHandler(tokens TokenRepositoryInterface) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Info はEMRDトークンの基本情報と外部リンクを返す。
// 価格・時価総額はインデクサー側の更新を待つ間の参考値。
// GET /token/emrd
func (h *TokenHandler) Info(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"name":               "Emerald Token",
		"symbol":             "EMRD",
		"contract":           emrdContract,
		"chain":              "TON",
		"decimals":           emrdDecimals,
		"price_usd":          0.025,
		"market_cap":         2500000,
		"holders":            1250,
		"total_supply":       "100000000",
		"circulating_supply": "45000000",
		"links": map[string]string{
			"dedust":    "https://dedust.io/swap/TON/" + emrdContract,
			"tonviewer": "https://tonviewer.com/" + emrdContract,
			"tonscan":   "https://tonscan.org/address/" + emrdContract,
		},
	})
}

// tokenHolderResponse はトークン保有者1件分のレスポンス。
type tokenHolderResponse struct {
	TelegramID int64   `json:"telegram_id"`
	TonAddress string  `json:"ton_address"`
	Balance    float64 `json:"balance"`
	Percentage float64 `json:"percentage"`
}

// Holders はEMRDトークンの保有者一覧を残高の降順で返す。
// GET /token/holders?limit=50
func (h *TokenHandler) Holders(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseListLimit(w, r, defaultHolderListLimit)
	if !ok {
		return
	}

	holders, err := h.tokens.TopHolders(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]tokenHolderResponse, 0, len(holders))
	for _, holder := range holders {
		out = append(out, tokenHolderResponse{
			TelegramID: holder.TelegramID,
			TonAddress: holder.TonAddress,
			Balance:    holder.Balance,
			Percentage: holder.Percentage,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"holders": out})
}

// tokenTransactionResponse はトークンイベント1件分のレスポンス。
type tokenTransactionResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	FromAddress string    `json:"from_address"`
	ToAddress   string    `json:"to_address"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// Transactions は直近のトークンイベントを新しい順で返す。
// GET /token/transactions?limit=100
func (h *TokenHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseListLimit(w, r, defaultTransactionListLimit)
	if !ok {
		return
	}

	txs, err := h.tokens.RecentTransactions(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]tokenTransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tokenTransactionResponse{
			ID:          tx.ID,
			Type:        tx.Type,
			Amount:      tx.Amount,
			FromAddress: tx.FromAddress,
			ToAddress:   tx.ToAddress,
			Hash:        tx.Hash,
			CreatedAt:   tx.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"transactions": out})
}

// parseListLimit はlimitクエリパラメータを解析する。未指定時はデフォルト値を使う。
// 不正な値の場合は400を書き込みfalseを返す。
func parseListLimit(w http.ResponseWriter, r *http.Request, defaultLimit int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, true
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("limitは正の整数で指定してください"))
		return 0, false
	}
	return parsed, true
}
