package wallet

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
	domainerrors "github.com/vaultex/vaultex_service/internal/domain/errors"
)

// resolveNetworkID translates an exchange-local user id into the
// ledger's account id
func (s *Service) resolveNetworkID(ctx context.Context, kitID int64) (int64, error) {
	user, err := s.users.GetByKitID(ctx, kitID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return 0, &domainerrors.DomainError{Err: domainerrors.ErrUserNotFound, Code: "USER_NOT_FOUND", Message: fmt.Sprintf("user %d not found", kitID)}
	}
	if !user.RegisteredOnNetwork() {
		return 0, &domainerrors.DomainError{Err: domainerrors.ErrUserNotRegisteredOnNetwork, Code: "USER_NOT_REGISTERED", Message: fmt.Sprintf("user %d is not registered on the ledger network", kitID)}
	}
	return user.NetworkID, nil
}

// GetUserBalanceByKitID fetches a user's ledger balance by exchange id
func (s *Service) GetUserBalanceByKitID(ctx context.Context, kitID int64) (*entities.Balance, error) {
	networkID, err := s.resolveNetworkID(ctx, kitID)
	if err != nil {
		return nil, err
	}
	balance, err := s.getUserBalance(ctx, networkID)
	if err != nil {
		return nil, err
	}
	balance.UserID = kitID
	return balance, nil
}

// GetUserBalanceByNetworkID fetches a user's ledger balance by ledger
// account id
func (s *Service) GetUserBalanceByNetworkID(ctx context.Context, networkID int64) (*entities.Balance, error) {
	return s.getUserBalance(ctx, networkID)
}

// CancelUserWithdrawalByKitID cancels a pending withdrawal owned by an
// exchange user
func (s *Service) CancelUserWithdrawalByKitID(ctx context.Context, kitID, withdrawalID int64) (*entities.LedgerTransaction, error) {
	networkID, err := s.resolveNetworkID(ctx, kitID)
	if err != nil {
		return nil, err
	}
	return s.ledger.CancelWithdrawal(ctx, networkID, withdrawalID)
}

// CancelUserWithdrawalByNetworkID cancels a pending withdrawal by
// ledger account id
func (s *Service) CancelUserWithdrawalByNetworkID(ctx context.Context, networkID, withdrawalID int64) (*entities.LedgerTransaction, error) {
	return s.ledger.CancelWithdrawal(ctx, networkID, withdrawalID)
}

// TransferAssetByKitIDs moves funds between two exchange users
func (s *Service) TransferAssetByKitIDs(ctx context.Context, senderKitID, receiverKitID int64, currency string, amount decimal.Decimal, opts entities.TransferOptions) (*entities.LedgerTransaction, error) {
	senderNetworkID, err := s.resolveNetworkID(ctx, senderKitID)
	if err != nil {
		return nil, err
	}
	receiverNetworkID, err := s.resolveNetworkID(ctx, receiverKitID)
	if err != nil {
		return nil, err
	}
	tx, err := s.ledger.TransferAsset(ctx, senderNetworkID, receiverNetworkID, currency, amount, opts)
	if err != nil {
		return nil, err
	}
	s.log.Info("Asset transferred",
		"sender_id", senderKitID,
		"receiver_id", receiverKitID,
		"currency", currency,
		"amount", amount.String())
	return tx, nil
}

// TransferAssetByNetworkIDs moves funds between two ledger accounts
func (s *Service) TransferAssetByNetworkIDs(ctx context.Context, senderNetworkID, receiverNetworkID int64, currency string, amount decimal.Decimal, opts entities.TransferOptions) (*entities.LedgerTransaction, error) {
	return s.ledger.TransferAsset(ctx, senderNetworkID, receiverNetworkID, currency, amount, opts)
}

// MintAssetByKitID credits an amount to an exchange user's account
func (s *Service) MintAssetByKitID(ctx context.Context, kitID int64, currency string, amount decimal.Decimal, opts entities.MintBurnOptions) (*entities.LedgerTransaction, error) {
	networkID, err := s.resolveNetworkID(ctx, kitID)
	if err != nil {
		return nil, err
	}
	return s.ledger.MintAsset(ctx, networkID, currency, amount, opts)
}

// MintAssetByNetworkID credits an amount to a ledger account
func (s *Service) MintAssetByNetworkID(ctx context.Context, networkID int64, currency string, amount decimal.Decimal, opts entities.MintBurnOptions) (*entities.LedgerTransaction, error) {
	return s.ledger.MintAsset(ctx, networkID, currency, amount, opts)
}

// BurnAssetByKitID debits an amount from an exchange user's account
func (s *Service) BurnAssetByKitID(ctx context.Context, kitID int64, currency string, amount decimal.Decimal, opts entities.MintBurnOptions) (*entities.LedgerTransaction, error) {
	networkID, err := s.resolveNetworkID(ctx, kitID)
	if err != nil {
		return nil, err
	}
	return s.ledger.BurnAsset(ctx, networkID, currency, amount, opts)
}

// BurnAssetByNetworkID debits an amount from a ledger account
func (s *Service) BurnAssetByNetworkID(ctx context.Context, networkID int64, currency string, amount decimal.Decimal, opts entities.MintBurnOptions) (*entities.LedgerTransaction, error) {
	return s.ledger.BurnAsset(ctx, networkID, currency, amount, opts)
}

// UpdatePendingMint updates the status of a pending mint record
func (s *Service) UpdatePendingMint(ctx context.Context, transactionID string, opts entities.PendingUpdateOptions) (*entities.LedgerTransaction, error) {
	return s.ledger.UpdatePendingMint(ctx, transactionID, opts)
}

// UpdatePendingBurn updates the status of a pending burn record
func (s *Service) UpdatePendingBurn(ctx context.Context, transactionID string, opts entities.PendingUpdateOptions) (*entities.LedgerTransaction, error) {
	return s.ledger.UpdatePendingBurn(ctx, transactionID, opts)
}

// CheckTransaction verifies a chain transaction for a subscribed coin
func (s *Service) CheckTransaction(ctx context.Context, currency, transactionID, address, network string, isTestnet bool) (map[string]interface{}, error) {
	snap := s.policy.Snapshot()
	if _, ok := snap.Coin(currency); !ok {
		return nil, domainerrors.InvalidCoinError(currency)
	}
	return s.ledger.CheckTransaction(ctx, currency, transactionID, address, network, isTestnet)
}
