package config

import (
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
)

// Provider serves immutable policy snapshots built from wallet
// configuration and supports atomic reload.
type Provider struct {
	current atomic.Pointer[entities.WalletPolicy]
}

// NewProvider builds the initial snapshot from loaded configuration
func NewProvider(cfg *Config) *Provider {
	p := &Provider{}
	p.current.Store(buildPolicy(&cfg.Wallet))
	return p
}

// Snapshot returns the current immutable policy snapshot
func (p *Provider) Snapshot() *entities.WalletPolicy {
	return p.current.Load()
}

// Reload re-reads configuration and swaps in a fresh snapshot.
// In-flight operations keep the snapshot they started with.
func (p *Provider) Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	p.current.Store(buildPolicy(&cfg.Wallet))
	return nil
}

func buildPolicy(wc *WalletConfig) *entities.WalletPolicy {
	policy := &entities.WalletPolicy{
		Coins:                make(map[string]entities.Coin, len(wc.Coins)),
		TransactionLimits:    make([]entities.TransactionLimit, 0, len(wc.TransactionLimits)),
		TokenExpiry:          time.Duration(wc.TokenExpiryMinutes) * time.Minute,
		AccumulationDelay:    time.Duration(wc.AccumulationDelayMs) * time.Millisecond,
		PropagatePageFilters: wc.PropagatePageFilters,
		MinVerificationTier:  wc.MinVerificationTier,
	}

	for symbol, entry := range wc.Coins {
		policy.Coins[symbol] = entities.Coin{
			Symbol:          symbol,
			DisplayName:     entry.FullName,
			AllowWithdrawal: entry.AllowWithdrawal,
			AllowDeposit:    entry.AllowDeposit,
			WithdrawalFee:   decimal.NewFromFloat(entry.WithdrawalFee),
			WithdrawalFees:  buildFeeTable(entry.WithdrawalFees),
			DepositFees:     buildFeeTable(entry.DepositFees),
			Network:         entry.Network,
		}
	}

	for _, entry := range wc.TransactionLimits {
		policy.TransactionLimits = append(policy.TransactionLimits, entities.TransactionLimit{
			Tier:          entry.Tier,
			Period:        entities.LimitPeriod(entry.Period),
			Type:          entities.TransactionType(entry.Type),
			LimitCurrency: entry.LimitCurrency,
			Currency:      entry.Currency,
			Amount:        decimal.NewFromFloat(entry.Amount),
		})
	}

	return policy
}

func buildFeeTable(entries map[string]FeeEntry) map[string]entities.FeeEntry {
	if len(entries) == 0 {
		return nil
	}
	table := make(map[string]entities.FeeEntry, len(entries))
	for network, entry := range entries {
		fee := entities.FeeEntry{
			Value:  decimal.NewFromFloat(entry.Value),
			Symbol: entry.Symbol,
			Type:   entities.FeeType(entry.Type),
		}
		if len(entry.Levels) > 0 {
			fee.Levels = make(map[int]decimal.Decimal, len(entry.Levels))
			for tier, value := range entry.Levels {
				fee.Levels[tier] = decimal.NewFromFloat(value)
			}
		}
		table[network] = fee
	}
	return table
}
