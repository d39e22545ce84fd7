package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCoinNetworkList(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		coin := Coin{Symbol: "btc"}
		assert.Nil(t, coin.NetworkList())
		assert.False(t, coin.SupportsNetwork("btc"))
	})

	t.Run("CommaSeparated", func(t *testing.T) {
		coin := Coin{Symbol: "usdt", Network: "eth, trx ,bsc"}
		assert.Equal(t, []string{"eth", "trx", "bsc"}, coin.NetworkList(), "entries are trimmed")
		assert.True(t, coin.SupportsNetwork("trx"))
		assert.False(t, coin.SupportsNetwork("sol"))
	})
}

func TestCoinName(t *testing.T) {
	assert.Equal(t, "Bitcoin", (&Coin{Symbol: "btc", DisplayName: "Bitcoin"}).Name())
	assert.Equal(t, "BTC", (&Coin{Symbol: "btc"}).Name())
}

func TestTransactionLimitSentinels(t *testing.T) {
	blocked := TransactionLimit{Amount: decimal.NewFromInt(-1)}
	assert.True(t, blocked.Blocked())
	assert.False(t, blocked.Unlimited())

	unlimited := TransactionLimit{Amount: decimal.Zero}
	assert.True(t, unlimited.Unlimited())
	assert.False(t, unlimited.Blocked())

	capped := TransactionLimit{Amount: decimal.NewFromInt(100)}
	assert.False(t, capped.Blocked())
	assert.False(t, capped.Unlimited())

	negative := TransactionLimit{Amount: decimal.NewFromInt(-5)}
	assert.True(t, negative.Unlimited(), "only positive amounts are enforced")
	assert.False(t, negative.Blocked())
}

func TestTransactionLimitWindowStart(t *testing.T) {
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.UTC)

	daily := TransactionLimit{Period: PeriodLast24Hours}
	assert.Equal(t, now.Add(-24*time.Hour), daily.WindowStart(now))

	monthly := TransactionLimit{Period: PeriodLastMonth}
	assert.Equal(t, now.AddDate(0, -1, 0), monthly.WindowStart(now), "calendar month, not 30 days")
}

func TestWithdrawalRequestAge(t *testing.T) {
	minted := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	request := WithdrawalRequest{Timestamp: minted.UnixMilli()}

	assert.Equal(t, time.Duration(0), request.Age(minted))
	assert.Equal(t, 5*time.Minute, request.Age(minted.Add(5*time.Minute)))
}

func TestBalanceAvailableFor(t *testing.T) {
	var nilBalance *Balance
	assert.True(t, nilBalance.AvailableFor("btc").IsZero())

	balance := &Balance{Available: map[string]decimal.Decimal{"btc": decimal.NewFromInt(2)}}
	assert.True(t, balance.AvailableFor("btc").Equal(decimal.NewFromInt(2)))
	assert.True(t, balance.AvailableFor("eth").IsZero())
}

func TestWalletPolicyTierLimits(t *testing.T) {
	policy := &WalletPolicy{
		TransactionLimits: []TransactionLimit{
			{Tier: 1, Period: PeriodLast24Hours, Type: TransactionWithdrawal, LimitCurrency: LimitScopeDefault, Currency: "usdt"},
			{Tier: 1, Period: PeriodLast24Hours, Type: TransactionWithdrawal, LimitCurrency: "btc", Currency: "btc"},
			{Tier: 1, Period: PeriodLastMonth, Type: TransactionWithdrawal, LimitCurrency: LimitScopeDefault, Currency: "usdt"},
			{Tier: 2, Period: PeriodLast24Hours, Type: TransactionWithdrawal, LimitCurrency: LimitScopeDefault, Currency: "usdt"},
			{Tier: 1, Period: PeriodLast24Hours, Type: TransactionDeposit, LimitCurrency: LimitScopeDefault, Currency: "usdt"},
		},
	}

	rows := policy.TierLimits(1, PeriodLast24Hours, TransactionWithdrawal)
	assert.Len(t, rows, 2)
	assert.Equal(t, "btc", rows[0].LimitCurrency, "scoped rows come first")

	assert.Len(t, policy.TierLimits(2, PeriodLast24Hours, TransactionWithdrawal), 1)
	assert.Empty(t, policy.TierLimits(3, PeriodLast24Hours, TransactionWithdrawal))
}

func TestUserRegisteredOnNetwork(t *testing.T) {
	assert.False(t, (&User{ID: 1}).RegisteredOnNetwork())
	assert.True(t, (&User{ID: 1, NetworkID: 9}).RegisteredOnNetwork())
}
