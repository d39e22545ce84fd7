// Package ledger is the HTTP client for the exchange network API, the
// external subsystem that owns balances, withdrawal execution, and the
// price oracle.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
	"github.com/vaultex/vaultex_service/pkg/logger"
)

// Config represents ledger API configuration
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client represents a ledger API client
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new ledger API client
func NewClient(config Config, logger *logger.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.vaultex.network"
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// GetUserBalance retrieves a user's balance by ledger account ID
func (c *Client) GetUserBalance(ctx context.Context, networkID int64) (*entities.Balance, error) {
	var resp balanceResponse
	endpoint := fmt.Sprintf("/v2/user/balance?user_id=%d", networkID)
	if err := c.doRequestWithRetry(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("get user balance failed: %w", err)
	}
	return resp.toEntity(), nil
}

// GetUserWithdrawals retrieves one page of a user's withdrawal history
func (c *Client) GetUserWithdrawals(ctx context.Context, networkID int64, query entities.WithdrawalHistoryQuery) (*entities.WithdrawalPage, error) {
	var resp historyPage
	endpoint := "/v2/user/withdrawals?" + historyParams(networkID, query).Encode()
	if err := c.doRequestWithRetry(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("get user withdrawals failed: %w", err)
	}
	return resp.toEntity(), nil
}

// GetUserDeposits retrieves one page of a user's deposit history
func (c *Client) GetUserDeposits(ctx context.Context, networkID int64, query entities.WithdrawalHistoryQuery) (*entities.WithdrawalPage, error) {
	var resp historyPage
	endpoint := "/v2/user/deposits?" + historyParams(networkID, query).Encode()
	if err := c.doRequestWithRetry(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("get user deposits failed: %w", err)
	}
	return resp.toEntity(), nil
}

// PerformWithdrawal submits a withdrawal for execution on the ledger
func (c *Client) PerformWithdrawal(ctx context.Context, networkID int64, address, currency string, amount decimal.Decimal, network string, fee *decimal.Decimal, feeCoin string) (*entities.LedgerTransaction, error) {
	req := withdrawalRequest{
		UserID:   networkID,
		Address:  address,
		Currency: currency,
		Amount:   amount,
		Network:  network,
		Fee:      fee,
		FeeCoin:  feeCoin,
	}
	var tx entities.LedgerTransaction
	if err := c.doRequest(ctx, http.MethodPost, "/v2/user/withdrawal", req, &tx); err != nil {
		return nil, fmt.Errorf("perform withdrawal failed: %w", err)
	}
	return &tx, nil
}

// CancelWithdrawal cancels a pending withdrawal
func (c *Client) CancelWithdrawal(ctx context.Context, networkID, withdrawalID int64) (*entities.LedgerTransaction, error) {
	endpoint := fmt.Sprintf("/v2/user/withdrawal?user_id=%d&id=%d", networkID, withdrawalID)
	var tx entities.LedgerTransaction
	if err := c.doRequest(ctx, http.MethodDelete, endpoint, nil, &tx); err != nil {
		return nil, fmt.Errorf("cancel withdrawal failed: %w", err)
	}
	return &tx, nil
}

// TransferAsset moves funds between two ledger accounts off-chain
func (c *Client) TransferAsset(ctx context.Context, senderNetworkID, receiverNetworkID int64, currency string, amount decimal.Decimal, opts entities.TransferOptions) (*entities.LedgerTransaction, error) {
	req := transferRequest{
		SenderID:      senderNetworkID,
		ReceiverID:    receiverNetworkID,
		Currency:      currency,
		Amount:        amount,
		Description:   opts.Description,
		Email:         opts.Email,
		TransactionID: opts.TransactionID,
	}
	var tx entities.LedgerTransaction
	if err := c.doRequest(ctx, http.MethodPost, "/v2/transfer", req, &tx); err != nil {
		return nil, fmt.Errorf("transfer asset failed: %w", err)
	}
	return &tx, nil
}

// MintAsset credits an amount to a ledger account
func (c *Client) MintAsset(ctx context.Context, networkID int64, currency string, amount decimal.Decimal, opts entities.MintBurnOptions) (*entities.LedgerTransaction, error) {
	var tx entities.LedgerTransaction
	if err := c.doRequest(ctx, http.MethodPost, "/v2/mint", mintBurnBody(networkID, currency, amount, opts), &tx); err != nil {
		return nil, fmt.Errorf("mint asset failed: %w", err)
	}
	return &tx, nil
}

// BurnAsset debits an amount from a ledger account
func (c *Client) BurnAsset(ctx context.Context, networkID int64, currency string, amount decimal.Decimal, opts entities.MintBurnOptions) (*entities.LedgerTransaction, error) {
	var tx entities.LedgerTransaction
	if err := c.doRequest(ctx, http.MethodPost, "/v2/burn", mintBurnBody(networkID, currency, amount, opts), &tx); err != nil {
		return nil, fmt.Errorf("burn asset failed: %w", err)
	}
	return &tx, nil
}

// UpdatePendingMint updates the status of a pending mint record
func (c *Client) UpdatePendingMint(ctx context.Context, transactionID string, opts entities.PendingUpdateOptions) (*entities.LedgerTransaction, error) {
	var tx entities.LedgerTransaction
	if err := c.doRequest(ctx, http.MethodPut, "/v2/mint", pendingUpdateBody(transactionID, opts), &tx); err != nil {
		return nil, fmt.Errorf("update pending mint failed: %w", err)
	}
	return &tx, nil
}

// UpdatePendingBurn updates the status of a pending burn record
func (c *Client) UpdatePendingBurn(ctx context.Context, transactionID string, opts entities.PendingUpdateOptions) (*entities.LedgerTransaction, error) {
	var tx entities.LedgerTransaction
	if err := c.doRequest(ctx, http.MethodPut, "/v2/burn", pendingUpdateBody(transactionID, opts), &tx); err != nil {
		return nil, fmt.Errorf("update pending burn failed: %w", err)
	}
	return &tx, nil
}

// GetOraclePrices returns the price of each asset in the quote currency.
// Assets the oracle has no rate for come back as -1; callers must treat
// that as "no conversion available", not as a price.
func (c *Client) GetOraclePrices(ctx context.Context, assets []string, quote string, amount decimal.Decimal) (map[string]decimal.Decimal, error) {
	params := url.Values{}
	for _, asset := range assets {
		params.Add("assets", asset)
	}
	params.Set("quote", quote)
	params.Set("amount", amount.String())

	var resp oraclePricesResponse
	if err := c.doRequestWithRetry(ctx, http.MethodGet, "/v2/oracle/prices?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("get oracle prices failed: %w", err)
	}
	return resp.Data, nil
}

// CheckTransaction verifies a chain transaction against the ledger
func (c *Client) CheckTransaction(ctx context.Context, currency, transactionID, address, network string, isTestnet bool) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("currency", currency)
	params.Set("transaction_id", transactionID)
	params.Set("address", address)
	if network != "" {
		params.Set("network", network)
	}
	params.Set("is_testnet", strconv.FormatBool(isTestnet))

	var resp checkTransactionResponse
	if err := c.doRequestWithRetry(ctx, http.MethodGet, "/v2/check-transaction?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("check transaction failed: %w", err)
	}
	return resp.Data, nil
}

func historyParams(networkID int64, query entities.WithdrawalHistoryQuery) url.Values {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(networkID, 10))
	if query.Currency != "" {
		params.Set("currency", query.Currency)
	}
	if query.Dismissed != nil {
		params.Set("dismissed", strconv.FormatBool(*query.Dismissed))
	}
	if query.Rejected != nil {
		params.Set("rejected", strconv.FormatBool(*query.Rejected))
	}
	if !query.StartDate.IsZero() {
		params.Set("start_date", query.StartDate.UTC().Format(time.RFC3339))
	}
	if !query.EndDate.IsZero() {
		params.Set("end_date", query.EndDate.UTC().Format(time.RFC3339))
	}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	return params
}

func mintBurnBody(networkID int64, currency string, amount decimal.Decimal, opts entities.MintBurnOptions) mintBurnRequest {
	req := mintBurnRequest{
		UserID:        networkID,
		Currency:      currency,
		Amount:        amount,
		Description:   opts.Description,
		TransactionID: opts.TransactionID,
		Status:        opts.Status,
		Email:         opts.Email,
	}
	if !opts.Fee.IsZero() {
		fee := opts.Fee
		req.Fee = &fee
	}
	return req
}

func pendingUpdateBody(transactionID string, opts entities.PendingUpdateOptions) pendingUpdateRequest {
	return pendingUpdateRequest{
		TransactionID:        transactionID,
		Status:               opts.Status,
		Dismissed:            opts.Dismissed,
		Rejected:             opts.Rejected,
		Processing:           opts.Processing,
		Waiting:              opts.Waiting,
		UpdatedTransactionID: opts.UpdatedTransactionID,
		UpdatedDescription:   opts.UpdatedDescription,
		Email:                opts.Email,
	}
}

const (
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 5 * time.Second
)

// doRequestWithRetry performs a read request with exponential backoff
// retry. Mutations go through doRequest once; a replay could double
// execute even with the idempotency key if the ledger evicted it.
func (c *Client) doRequestWithRetry(ctx context.Context, method, endpoint string, body, response interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := retryBaseDelay << (attempt - 1)
			if backoff > retryMaxDelay {
				backoff = retryMaxDelay
			}

			c.logger.Info("Retrying ledger API request",
				"method", method,
				"attempt", attempt,
				"backoff", backoff.String())

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.doRequest(ctx, method, endpoint, body, response)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if apiErr, ok := err.(*ErrorResponse); ok {
		return apiErr.IsRateLimited() || apiErr.StatusCode >= 500
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "status 5")
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	fullURL := c.config.BaseURL + endpoint

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Api-Key", c.config.APIKey)
	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("Idempotency-Key", uuid.New().String())
	}

	c.logger.Debug("Sending ledger API request", "method", method, "url", fullURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("Received ledger API response", "status_code", resp.StatusCode, "body_size", len(respBody))

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			errResp.StatusCode = resp.StatusCode
			return &errResp
		}
		return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if response != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, response); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// Config returns the client configuration
func (c *Client) Config() Config {
	return c.config
}
