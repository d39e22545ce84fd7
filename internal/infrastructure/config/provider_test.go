package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
)

func testWalletConfig() *Config {
	return &Config{
		Wallet: WalletConfig{
			TokenExpiryMinutes:  5,
			AccumulationDelayMs: 500,
			MinVerificationTier: 1,
			Coins: map[string]CoinEntry{
				"btc": {
					FullName:        "Bitcoin",
					AllowWithdrawal: true,
					AllowDeposit:    true,
					WithdrawalFee:   0.0005,
				},
				"usd": {
					FullName:     "US Dollar",
					AllowDeposit: true,
					WithdrawalFees: map[string]FeeEntry{
						"usd": {Value: 10, Levels: map[int]float64{3: 5}},
					},
					DepositFees: map[string]FeeEntry{
						"usd": {Value: 1.5, Type: "percentage"},
					},
				},
			},
			TransactionLimits: []LimitEntry{
				{Tier: 1, Period: "24h", Type: "withdrawal", LimitCurrency: "default", Currency: "usdt", Amount: 10000},
				{Tier: 1, Period: "24h", Type: "withdrawal", LimitCurrency: "btc", Currency: "btc", Amount: 1},
				{Tier: 2, Period: "1mo", Type: "withdrawal", LimitCurrency: "default", Currency: "usdt", Amount: 0},
			},
		},
	}
}

func TestNewProvider(t *testing.T) {
	p := NewProvider(testWalletConfig())
	snap := p.Snapshot()
	require.NotNil(t, snap)

	t.Run("Settings", func(t *testing.T) {
		assert.Equal(t, 5*time.Minute, snap.TokenExpiry)
		assert.Equal(t, 500*time.Millisecond, snap.AccumulationDelay)
		assert.False(t, snap.PropagatePageFilters)
		assert.Equal(t, 1, snap.MinVerificationTier)
	})

	t.Run("Coins", func(t *testing.T) {
		btc, ok := snap.Coin("btc")
		require.True(t, ok)
		assert.Equal(t, "Bitcoin", btc.DisplayName)
		assert.True(t, btc.WithdrawalFee.Equal(decimal.RequireFromString("0.0005")))
		assert.Nil(t, btc.WithdrawalFees)

		usd, ok := snap.Coin("usd")
		require.True(t, ok)
		entry := usd.WithdrawalFees["usd"]
		assert.NotEqual(t, entities.FeeTypeStatic, entry.Type, "untyped fee rules stay non-static and charge as a percentage")
		assert.True(t, entry.Levels[3].Equal(decimal.NewFromInt(5)))

		deposit := usd.DepositFees["usd"]
		assert.Equal(t, entities.FeeTypePercentage, deposit.Type)

		_, ok = snap.Coin("doge")
		assert.False(t, ok)
	})

	t.Run("Limits", func(t *testing.T) {
		rows := snap.TierLimits(1, entities.PeriodLast24Hours, entities.TransactionWithdrawal)
		require.Len(t, rows, 2)
		assert.Equal(t, "btc", rows[0].LimitCurrency, "scoped rows sort before the default row")
		assert.Equal(t, entities.LimitScopeDefault, rows[1].LimitCurrency)

		monthly := snap.TierLimits(2, entities.PeriodLastMonth, entities.TransactionWithdrawal)
		require.Len(t, monthly, 1)
		assert.True(t, monthly[0].Unlimited())
	})

	t.Run("SnapshotIsStable", func(t *testing.T) {
		first := p.Snapshot()
		second := p.Snapshot()
		assert.Same(t, first, second, "no rebuild between reloads")
	})
}
