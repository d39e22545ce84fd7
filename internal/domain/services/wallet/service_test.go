package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
	domainerrors "github.com/vaultex/vaultex_service/internal/domain/errors"
)

func tradingPolicy(limits ...entities.TransactionLimit) *entities.WalletPolicy {
	snap := testPolicy(limits...)
	snap.Coins = map[string]entities.Coin{
		"btc": {
			Symbol:          "btc",
			DisplayName:     "Bitcoin",
			AllowWithdrawal: true,
			AllowDeposit:    true,
			WithdrawalFee:   decimal.RequireFromString("0.0005"),
		},
		"usdt": {
			Symbol:          "usdt",
			DisplayName:     "Tether",
			AllowWithdrawal: true,
			AllowDeposit:    true,
			Network:         "eth,trx",
			WithdrawalFees: map[string]entities.FeeEntry{
				"eth": {Value: decimal.NewFromInt(20), Type: entities.FeeTypeStatic},
				"trx": {Value: decimal.NewFromInt(1), Symbol: "trx", Type: entities.FeeTypeStatic},
			},
		},
		"xht": {
			Symbol:      "xht",
			DisplayName: "Vaultex Token",
		},
	}
	return snap
}

func fundUser(f *serviceFixture, balances map[string]decimal.Decimal) *entities.User {
	user := testUser()
	f.users.users[user.ID] = user
	f.ledger.balance = &entities.Balance{UserID: user.NetworkID, Available: balances}
	return user
}

func TestValidateWithdrawal(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownCoin", func(t *testing.T) {
		f := newServiceFixture(tradingPolicy())
		_, err := f.service.ValidateWithdrawal(ctx, testUser(), btcLegacy, decimal.NewFromInt(1), "doge", "")
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidCoin))
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		f := newServiceFixture(tradingPolicy())
		_, err := f.service.ValidateWithdrawal(ctx, testUser(), btcLegacy, decimal.Zero, "btc", "")
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidAmount))

		_, err = f.service.ValidateWithdrawal(ctx, testUser(), btcLegacy, decimal.NewFromInt(-1), "btc", "")
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidAmount))
	})

	t.Run("WithdrawalDisabled", func(t *testing.T) {
		f := newServiceFixture(tradingPolicy())
		_, err := f.service.ValidateWithdrawal(ctx, testUser(), "any", decimal.NewFromInt(1), "xht", "")
		assert.True(t, errors.Is(err, domainerrors.ErrWithdrawalDisabled))
	})

	t.Run("NetworkRequired", func(t *testing.T) {
		f := newServiceFixture(tradingPolicy())
		_, err := f.service.ValidateWithdrawal(ctx, testUser(), ethAddress, decimal.NewFromInt(100), "usdt", "")
		assert.True(t, errors.Is(err, domainerrors.ErrNetworkRequired))
	})

	t.Run("UnsupportedNetwork", func(t *testing.T) {
		f := newServiceFixture(tradingPolicy())
		_, err := f.service.ValidateWithdrawal(ctx, testUser(), ethAddress, decimal.NewFromInt(100), "usdt", "bsc")
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidNetwork))
	})

	t.Run("NetworkOnSingleChainCoin", func(t *testing.T) {
		f := newServiceFixture(tradingPolicy())
		_, err := f.service.ValidateWithdrawal(ctx, testUser(), btcLegacy, decimal.NewFromInt(1), "btc", "btc")
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidNetwork))
	})

	t.Run("InvalidAddress", func(t *testing.T) {
		f := newServiceFixture(tradingPolicy())
		_, err := f.service.ValidateWithdrawal(ctx, testUser(), "not-an-address", decimal.NewFromInt(1), "btc", "")
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidAddress))

		_, err = f.service.ValidateWithdrawal(ctx, testUser(), trxAddress, decimal.NewFromInt(100), "usdt", "eth")
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidAddress))
	})

	t.Run("EmailTransfer", func(t *testing.T) {
		f := newServiceFixture(tradingPolicy())
		user := fundUser(f, map[string]decimal.Decimal{"btc": decimal.NewFromInt(2)})

		_, err := f.service.ValidateWithdrawal(ctx, user, "not an email", decimal.NewFromInt(1), "btc", entities.NetworkEmail)
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidAddress))

		quote, err := f.service.ValidateWithdrawal(ctx, user, "friend@example.com", decimal.NewFromInt(1), "btc", entities.NetworkEmail)
		require.NoError(t, err)
		assert.True(t, quote.Fee.IsZero(), "internal transfers are free")
	})

	t.Run("UserEligibility", func(t *testing.T) {
		f := newServiceFixture(tradingPolicy())
		fundUser(f, map[string]decimal.Decimal{"btc": decimal.NewFromInt(2)})

		_, err := f.service.ValidateWithdrawal(ctx, nil, btcLegacy, decimal.NewFromInt(1), "btc", "")
		assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))

		unregistered := &entities.User{ID: 8, Email: "new@example.com", VerificationLevel: 2}
		_, err = f.service.ValidateWithdrawal(ctx, unregistered, btcLegacy, decimal.NewFromInt(1), "btc", "")
		assert.True(t, errors.Is(err, domainerrors.ErrUserNotRegisteredOnNetwork))

		unverified := &entities.User{ID: 9, Email: "low@example.com", NetworkID: 43, VerificationLevel: 0}
		_, err = f.service.ValidateWithdrawal(ctx, unverified, btcLegacy, decimal.NewFromInt(1), "btc", "")
		assert.True(t, errors.Is(err, domainerrors.ErrVerificationRequired))
	})

	t.Run("BalanceCoversAmountPlusFee", func(t *testing.T) {
		f := newServiceFixture(tradingPolicy())
		user := fundUser(f, map[string]decimal.Decimal{"btc": decimal.NewFromInt(1)})

		quote, err := f.service.ValidateWithdrawal(ctx, user, btcLegacy, decimal.RequireFromString("0.9995"), "btc", "")
		require.NoError(t, err)
		assert.True(t, quote.Fee.Equal(decimal.RequireFromString("0.0005")))
		assert.Equal(t, "btc", quote.FeeCoin)

		_, err = f.service.ValidateWithdrawal(ctx, user, btcLegacy, decimal.NewFromInt(1), "btc", "")
		assert.True(t, errors.Is(err, domainerrors.ErrInsufficientBalance), "fee pushes total over available")
	})

	t.Run("FeeInDifferentCurrencyCheckedSeparately", func(t *testing.T) {
		f := newServiceFixture(tradingPolicy())
		user := fundUser(f, map[string]decimal.Decimal{
			"usdt": decimal.NewFromInt(100),
			"trx":  decimal.RequireFromString("0.5"),
		})

		_, err := f.service.ValidateWithdrawal(ctx, user, trxAddress, decimal.NewFromInt(100), "usdt", "trx")
		assert.True(t, errors.Is(err, domainerrors.ErrInsufficientBalance), "trx balance cannot cover the fee")

		f.ledger.balance.Available["trx"] = decimal.NewFromInt(2)
		quote, err := f.service.ValidateWithdrawal(ctx, user, trxAddress, decimal.NewFromInt(100), "usdt", "trx")
		require.NoError(t, err)
		assert.Equal(t, "trx", quote.FeeCoin)
		assert.True(t, quote.Fee.Equal(decimal.NewFromInt(1)))
	})

	t.Run("RollingWindowLimitEnforced", func(t *testing.T) {
		snap := tradingPolicy(limitRow("btc", "btc", 1))
		f := newServiceFixture(snap, WithClock(func() time.Time { return testNow }))
		user := fundUser(f, map[string]decimal.Decimal{"btc": decimal.NewFromInt(10)})
		f.ledger.withdrawalsFn = func(query entities.WithdrawalHistoryQuery) (*entities.WithdrawalPage, error) {
			return &entities.WithdrawalPage{
				Count: 1,
				Data:  []entities.Withdrawal{{Currency: "btc", Amount: decimal.RequireFromString("0.6")}},
			}, nil
		}

		_, err := f.service.ValidateWithdrawal(ctx, user, btcLegacy, decimal.RequireFromString("0.5"), "btc", "")
		assert.True(t, errors.Is(err, domainerrors.ErrLimitExceeded))
	})

	t.Run("RollingWindowLimitWithRoom", func(t *testing.T) {
		snap := tradingPolicy(limitRow("btc", "btc", 1))
		f := newServiceFixture(snap, WithClock(func() time.Time { return testNow }))
		user := fundUser(f, map[string]decimal.Decimal{"btc": decimal.NewFromInt(10)})
		f.ledger.withdrawalsFn = func(query entities.WithdrawalHistoryQuery) (*entities.WithdrawalPage, error) {
			return &entities.WithdrawalPage{
				Count: 1,
				Data:  []entities.Withdrawal{{Currency: "btc", Amount: decimal.RequireFromString("0.3")}},
			}, nil
		}

		quote, err := f.service.ValidateWithdrawal(ctx, user, btcLegacy, decimal.RequireFromString("0.5"), "btc", "")
		require.NoError(t, err)
		assert.True(t, quote.Fee.Equal(decimal.RequireFromString("0.0005")))
	})
}

func TestPerformDirectWithdrawal(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newServiceFixture(tradingPolicy())
		user := fundUser(f, map[string]decimal.Decimal{"btc": decimal.NewFromInt(2)})

		tx, err := f.service.PerformDirectWithdrawal(ctx, user.ID, btcLegacy, decimal.NewFromInt(1), "btc", "")
		require.NoError(t, err)
		assert.Equal(t, "btc", tx.Currency)
		require.Len(t, f.ledger.performedRequests, 1)
		assert.True(t, f.ledger.performedRequests[0].Equal(decimal.NewFromInt(1)))
	})

	t.Run("ValidationFailureStopsExecution", func(t *testing.T) {
		f := newServiceFixture(tradingPolicy())
		user := fundUser(f, map[string]decimal.Decimal{"btc": decimal.RequireFromString("0.1")})

		_, err := f.service.PerformDirectWithdrawal(ctx, user.ID, btcLegacy, decimal.NewFromInt(1), "btc", "")
		require.Error(t, err)
		assert.Empty(t, f.ledger.performedRequests)
	})
}
