package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/emerald/devdash/internal/middleware"
	"github.com/emerald/devdash/internal/model"
)

// WalletRepositoryInterface はウォレットハンドラーが必要とする永続化インターフェース。
type WalletRepositoryInterface interface {
	FindWallets(ctx context.Context, telegramID int64) (*model.WalletAddresses, error)
	SetTonAddress(ctx context.Context, telegramID int64, address string) error
}

// WatchAccountListerInterface は監視アカウント一覧取得のインターフェース。
type WatchAccountListerInterface interface {
	List(ctx context.Context) ([]*model.WatchAccount, error)
}

// NearAccountServiceInterface はNEARアカウント参照のインターフェース。
type NearAccountServiceInterface interface {
	AccountOverview(ctx context.Context, accountID string) (*model.NearAccountOverview, error)
}

// WalletHandler はウォレットとブロックチェーン残高参照のHTTPハンドラー。
type WalletHandler struct {
	wallets WalletRepositoryInterface
	watches WatchAccountListerInterface
	near    NearAccountServiceInterface
}

// NewWalletHandler はWalletHandlerを生成する。
func NewWalletHandler(wallets WalletRepositoryInterface, watches WatchAccountListerInterface, near NearAccountServiceInterface) *WalletHandler {
	return &WalletHandler{
		wallets: wallets,
		watches: watches,
		near:    near,
	}
}

// ownWalletsResponse は利用者自身のウォレットアドレス。
type ownWalletsResponse struct {
	NearAccountID string `json:"near_account_id"`
	TonAddress    string `json:"ton_address"`
}

// watchAccountResponse は監視アカウント1件分のレスポンス。
type watchAccountResponse struct {
	ID        int64           `json:"id"`
	Chain     string          `json:"chain"`
	AccountID string          `json:"account_id"`
	Label     string          `json:"label"`
	Meta      json.RawMessage `json:"meta"`
	CreatedAt time.Time       `json:"created_at"`
}

// Wallets は自身のアドレスと監視アカウント一覧を返す。
// GET /wallets
func (h *WalletHandler) Wallets(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w, "Not authenticated")
		return
	}

	telegramID, err := claims.SubjectID()
	if err != nil {
		middleware.WriteUnauthorized(w, "Invalid token")
		return
	}

	own, err := h.wallets.FindWallets(r.Context(), telegramID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	watches, err := h.watches.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	watchOut := make([]watchAccountResponse, 0, len(watches))
	for _, wa := range watches {
		meta := wa.Meta
		if meta == nil {
			meta = json.RawMessage(`{}`)
		}
		watchOut = append(watchOut, watchAccountResponse{
			ID:        wa.ID,
			Chain:     wa.Chain,
			AccountID: wa.AccountID,
			Label:     wa.Label,
			Meta:      meta,
			CreatedAt: wa.CreatedAt,
		})
	}

	var me *ownWalletsResponse
	if own != nil {
		me = &ownWalletsResponse{
			NearAccountID: own.NearAccountID,
			TonAddress:    own.TonAddress,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"me":    me,
		"watch": watchOut,
	})
}

// setTonAddressRequest はTONアドレス更新リクエストのボディ。
type setTonAddressRequest struct {
	Address string `json:"address"`
}

// SetTonAddress は自身のTONアドレスを更新する。
// POST /wallets/ton
func (h *WalletHandler) SetTonAddress(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w, "Not authenticated")
		return
	}

	telegramID, err := claims.SubjectID()
	if err != nil {
		middleware.WriteUnauthorized(w, "Invalid token")
		return
	}

	var req setTonAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("JSONの解析に失敗しました"))
		return
	}

	address := strings.TrimSpace(req.Address)
	if err := h.wallets.SetTonAddress(r.Context(), telegramID, address); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":          true,
		"ton_address": address,
	})
}

// nearOverviewResponse はNEARアカウント残高のAPIレスポンス。
type nearOverviewResponse struct {
	AmountYocto  string `json:"amount_yocto"`
	AmountNear   string `json:"amount_near"`
	LockedYocto  string `json:"locked_yocto"`
	LockedNear   string `json:"locked_near"`
	StorageUsage int64  `json:"storage_usage"`
	CodeHash     string `json:"code_hash"`
}

// NearAccountOverview はNEARアカウントの残高情報を返す。
// GET /near/account/overview?account_id=xxx
func (h *WalletHandler) NearAccountOverview(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("account_idは必須です"))
		return
	}

	overview, err := h.near.AccountOverview(r.Context(), accountID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"account_id": overview.AccountID,
		"near": nearOverviewResponse{
			AmountYocto:  overview.AmountYocto,
			AmountNear:   overview.AmountNear,
			LockedYocto:  overview.LockedYocto,
			LockedNear:   overview.LockedNear,
			StorageUsage: overview.StorageUsage,
			CodeHash:     overview.CodeHash,
		},
	})
}
