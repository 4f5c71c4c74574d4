// Package chain はブロックチェーンRPCとの連携を提供する。
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"regexp"
	"time"

	"github.com/emerald/devdash/internal/model"
)

// NEARアカウントIDの形式制約。
// 小文字英数字と区切り文字（. _ -）で構成され、2〜64文字。
var nearAccountIDPattern = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)

const (
	nearAccountIDMinLength = 2
	nearAccountIDMaxLength = 64
)

// yoctoPerNear は1NEARあたりのyoctoNEAR数（10^24）。
var yoctoPerNear = new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil)

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration) *http.Client
}

// NearClient はNEAR JSON-RPCへの問い合わせを行う。
// view_accountクエリでアカウントの残高とストレージ使用量を取得する。
type NearClient struct {
	rpcURL    string
	ssrfGuard SSRFValidator
	logger    *slog.Logger
	timeout   time.Duration
}

// NewNearClient はNearClientの新しいインスタンスを生成する。
func NewNearClient(rpcURL string, ssrfGuard SSRFValidator, logger *slog.Logger, timeout time.Duration) *NearClient {
	return &NearClient{
		rpcURL:    rpcURL,
		ssrfGuard: ssrfGuard,
		logger:    logger,
		timeout:   timeout,
	}
}

// rpcRequest はNEAR JSON-RPCのリクエストボディ。
type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	RequestType string `json:"request_type"`
	Finality    string `json:"finality"`
	AccountID   string `json:"account_id"`
}

// rpcResponse はNEAR JSON-RPCのレスポンスボディ。
type rpcResponse struct {
	Result *viewAccountResult `json:"result"`
	Error  *rpcError          `json:"error"`
}

type viewAccountResult struct {
	Amount       string `json:"amount"`
	Locked       string `json:"locked"`
	StorageUsage int64  `json:"storage_usage"`
	CodeHash     string `json:"code_hash"`
}

type rpcError struct {
	Name    string          `json:"name"`
	Cause   json.RawMessage `json:"cause"`
	Message string          `json:"message"`
}

// ValidateAccountID はNEARアカウントIDの形式を検証する。
// 形式が不正な場合はmodel.APIError（INVALID_ACCOUNT_ID）を返す。
func ValidateAccountID(accountID string) error {
	if len(accountID) < nearAccountIDMinLength || len(accountID) > nearAccountIDMaxLength {
		return model.NewInvalidAccountError("2〜64文字で指定してください")
	}
	if !nearAccountIDPattern.MatchString(accountID) {
		return model.NewInvalidAccountError("使用できない文字が含まれています")
	}
	return nil
}

// AccountOverview はview_accountクエリを実行し、整形済みの残高情報を返す。
func (n *NearClient) AccountOverview(ctx context.Context, accountID string) (*model.NearAccountOverview, error) {
	if err := ValidateAccountID(accountID); err != nil {
		return nil, err
	}

	if err := n.ssrfGuard.ValidateURL(n.rpcURL); err != nil {
		n.logger.Error("RPC URLのSSRF検証に失敗しました",
			slog.String("rpc_url", n.rpcURL),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to validate rpc url: %w", err)
	}

	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      "view_account",
		Method:  "query",
		Params: rpcParams{
			RequestType: "view_account",
			Finality:    "final",
			AccountID:   accountID,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := n.ssrfGuard.NewSafeClient(n.timeout)
	resp, err := client.Do(req)
	if err != nil {
		n.logger.Error("NEAR RPCリクエストに失敗しました",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewRPCFailedError()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.logger.Warn("NEAR RPCが異常なステータスを返しました",
			slog.String("account_id", accountID),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, model.NewRPCFailedError()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewRPCFailedError()
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		n.logger.Error("NEAR RPCレスポンスのパースに失敗しました",
			slog.String("account_id", accountID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewRPCFailedError()
	}

	if rpcResp.Error != nil {
		n.logger.Warn("NEAR RPCがエラーを返しました",
			slog.String("account_id", accountID),
			slog.String("rpc_error", rpcResp.Error.Name),
			slog.String("rpc_message", rpcResp.Error.Message),
		)
		return nil, model.NewRPCFailedError()
	}
	if rpcResp.Result == nil {
		return nil, model.NewRPCFailedError()
	}

	result := rpcResp.Result
	overview := &model.NearAccountOverview{
		AccountID:    accountID,
		AmountYocto:  defaultZero(result.Amount),
		AmountNear:   YoctoToNear(result.Amount),
		LockedYocto:  defaultZero(result.Locked),
		LockedNear:   YoctoToNear(result.Locked),
		StorageUsage: result.StorageUsage,
		CodeHash:     result.CodeHash,
	}

	return overview, nil
}

// YoctoToNear はyoctoNEAR文字列をNEAR単位の十進文字列に変換する。
// 変換できない入力は"0"を返す。
func YoctoToNear(yocto string) string {
	amount, ok := new(big.Int).SetString(yocto, 10)
	if !ok {
		return "0"
	}

	rat := new(big.Rat).SetFrac(amount, yoctoPerNear)
	// 24桁で丸めなしの厳密表現になるため、末尾ゼロを除いた表示にする
	s := rat.FloatString(24)
	return trimDecimalZeros(s)
}

// trimDecimalZeros は小数表現の末尾ゼロと不要な小数点を取り除く。
func trimDecimalZeros(s string) string {
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	if i == 0 {
		return "0"
	}
	return s[:i]
}

func defaultZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
