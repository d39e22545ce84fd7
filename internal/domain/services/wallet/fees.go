package wallet

import (
	"github.com/shopspring/decimal"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
)

var oneHundred = decimal.NewFromInt(100)

// ResolveWithdrawalFee resolves the fee for withdrawing an amount of a
// coin over a network at a verification tier. Resolution order: the
// coin's flat fee, then the per-network fee table, then the fiat
// re-resolution (fee table keyed by currency, tier-level overrides,
// percentage support), then the zero-fee override for internal email
// transfers. Never returns a negative fee.
func ResolveWithdrawalFee(coin entities.Coin, network string, amount decimal.Decimal, tier int) (decimal.Decimal, string) {
	fee := coin.WithdrawalFee
	feeCoin := coin.Symbol

	if network != "" {
		if entry, ok := coin.WithdrawalFees[network]; ok {
			fee = entry.Value
			if entry.Symbol != "" {
				feeCoin = entry.Symbol
			}
		}
	}

	if network == entities.NetworkFiat {
		// fiat fee tables are keyed by currency, not network
		if entry, ok := coin.WithdrawalFees[coin.Symbol]; ok {
			fee = applyFeeRule(entry, amount, tier)
			if entry.Symbol != "" {
				feeCoin = entry.Symbol
			} else {
				feeCoin = coin.Symbol
			}
		}
	}

	if network == entities.NetworkEmail {
		fee = decimal.Zero
	}

	if fee.IsNegative() {
		fee = decimal.Zero
	}
	return fee, feeCoin
}

// ResolveDepositFee resolves the fee for depositing an amount of a coin
// at a verification tier. Deposit fee tables are keyed by currency only;
// there is no per-network override and no email zero-fee rule.
func ResolveDepositFee(coin entities.Coin, amount decimal.Decimal, tier int) (decimal.Decimal, string) {
	fee := decimal.Zero
	feeCoin := coin.Symbol

	if entry, ok := coin.DepositFees[coin.Symbol]; ok {
		fee = applyFeeRule(entry, amount, tier)
		if entry.Symbol != "" {
			feeCoin = entry.Symbol
		}
	}

	if fee.IsNegative() {
		fee = decimal.Zero
	}
	return fee, feeCoin
}

// applyFeeRule applies a tier-level value override, then branches on the
// rule type: static uses the value as-is, anything else is a percentage
// of the amount.
func applyFeeRule(entry entities.FeeEntry, amount decimal.Decimal, tier int) decimal.Decimal {
	value := entry.Value
	if override, ok := entry.Levels[tier]; ok {
		value = override
	}
	if entry.Type == entities.FeeTypeStatic {
		return value
	}
	return amount.Mul(value).Div(oneHundred)
}
