package entities

import (
	"sort"
	"time"
)

// WalletPolicy is an immutable view of the wallet policy tables: the
// subscribed coins, tiered transaction limits, and withdrawal settings.
// Callers hold one policy for the duration of an operation so a config
// reload cannot change the tables mid-validation.
type WalletPolicy struct {
	Coins                map[string]Coin
	TransactionLimits    []TransactionLimit
	TokenExpiry          time.Duration
	AccumulationDelay    time.Duration
	PropagatePageFilters bool
	MinVerificationTier  int
}

// Coin returns the subscribed coin for a symbol
func (p *WalletPolicy) Coin(symbol string) (Coin, bool) {
	coin, ok := p.Coins[symbol]
	return coin, ok
}

// TierLimits returns the limit rows matching a tier, period and type,
// with currency-scoped rows ordered before the default row
func (p *WalletPolicy) TierLimits(tier int, period LimitPeriod, txType TransactionType) []TransactionLimit {
	var rows []TransactionLimit
	for _, limit := range p.TransactionLimits {
		if limit.Tier == tier && limit.Period == period && limit.Type == txType {
			rows = append(rows, limit)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].LimitCurrency != LimitScopeDefault && rows[j].LimitCurrency == LimitScopeDefault
	})
	return rows
}
