package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
)

// LedgerClient interface defines all exchange network operations the
// wallet service depends on
type LedgerClient interface {
	// Balances and history
	GetUserBalance(ctx context.Context, networkID int64) (*entities.Balance, error)
	GetUserWithdrawals(ctx context.Context, networkID int64, query entities.WithdrawalHistoryQuery) (*entities.WithdrawalPage, error)
	GetUserDeposits(ctx context.Context, networkID int64, query entities.WithdrawalHistoryQuery) (*entities.WithdrawalPage, error)

	// Withdrawal execution
	PerformWithdrawal(ctx context.Context, networkID int64, address, currency string, amount decimal.Decimal, network string, fee *decimal.Decimal, feeCoin string) (*entities.LedgerTransaction, error)
	CancelWithdrawal(ctx context.Context, networkID, withdrawalID int64) (*entities.LedgerTransaction, error)

	// Off-chain asset movement
	TransferAsset(ctx context.Context, senderNetworkID, receiverNetworkID int64, currency string, amount decimal.Decimal, opts entities.TransferOptions) (*entities.LedgerTransaction, error)
	MintAsset(ctx context.Context, networkID int64, currency string, amount decimal.Decimal, opts entities.MintBurnOptions) (*entities.LedgerTransaction, error)
	BurnAsset(ctx context.Context, networkID int64, currency string, amount decimal.Decimal, opts entities.MintBurnOptions) (*entities.LedgerTransaction, error)
	UpdatePendingMint(ctx context.Context, transactionID string, opts entities.PendingUpdateOptions) (*entities.LedgerTransaction, error)
	UpdatePendingBurn(ctx context.Context, transactionID string, opts entities.PendingUpdateOptions) (*entities.LedgerTransaction, error)

	// Prices and chain checks
	GetOraclePrices(ctx context.Context, assets []string, quote string, amount decimal.Decimal) (map[string]decimal.Decimal, error)
	CheckTransaction(ctx context.Context, currency, transactionID, address, network string, isTestnet bool) (map[string]interface{}, error)
}

// Ensure Client implements LedgerClient interface
var _ LedgerClient = (*Client)(nil)
