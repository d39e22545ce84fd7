package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
	domainerrors "github.com/vaultex/vaultex_service/internal/domain/errors"
)

// DepositQuote is the resolved fee of a validated deposit
type DepositQuote struct {
	Fee     decimal.Decimal `json:"fee"`
	FeeCoin string          `json:"fee_coin"`
}

// ValidateDeposit checks a deposit against coin policy and user
// eligibility and returns the resolved deposit fee
func (s *Service) ValidateDeposit(ctx context.Context, user *entities.User, amount decimal.Decimal, currency, network string) (*DepositQuote, error) {
	snap := s.policy.Snapshot()

	coin, ok := snap.Coin(currency)
	if !ok {
		return nil, domainerrors.InvalidCoinError(currency)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domainerrors.InvalidAmountError(amount)
	}
	if !coin.AllowDeposit {
		return nil, domainerrors.DepositDisabledError(currency)
	}

	if network != "" && network != entities.NetworkFiat {
		if coin.Network == "" {
			return nil, domainerrors.InvalidNetworkError(network, "")
		}
		if !coin.SupportsNetwork(network) {
			return nil, domainerrors.InvalidNetworkError(network, coin.Network)
		}
	}

	if user == nil {
		return nil, &domainerrors.DomainError{Err: domainerrors.ErrUserNotFound, Code: "USER_NOT_FOUND", Message: "user not found"}
	}
	if !user.RegisteredOnNetwork() {
		return nil, &domainerrors.DomainError{Err: domainerrors.ErrUserNotRegisteredOnNetwork, Code: "USER_NOT_REGISTERED", Message: "user is not registered on the ledger network"}
	}
	if user.VerificationLevel < snap.MinVerificationTier {
		return nil, domainerrors.VerificationRequiredError(snap.MinVerificationTier)
	}

	fee, feeCoin := ResolveDepositFee(coin, amount, user.VerificationLevel)
	return &DepositQuote{Fee: fee, FeeCoin: feeCoin}, nil
}
