package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
	domainerrors "github.com/vaultex/vaultex_service/internal/domain/errors"
)

func TestGetUserBalanceByKitID(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(tradingPolicy())
	user := fundUser(f, map[string]decimal.Decimal{"btc": decimal.NewFromInt(3)})

	balance, err := f.service.GetUserBalanceByKitID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, balance.UserID, "ledger account id replaced by exchange id")
	assert.True(t, balance.AvailableFor("btc").Equal(decimal.NewFromInt(3)))

	_, err = f.service.GetUserBalanceByKitID(ctx, 999)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestTransferAssetByKitIDs(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(tradingPolicy())

	sender := testUser()
	receiver := &entities.User{ID: 8, Email: "other@example.com", NetworkID: 55, VerificationLevel: 1}
	f.users.users[sender.ID] = sender
	f.users.users[receiver.ID] = receiver

	t.Run("Success", func(t *testing.T) {
		tx, err := f.service.TransferAssetByKitIDs(ctx, sender.ID, receiver.ID, "btc", decimal.NewFromInt(1), entities.TransferOptions{Description: "gift"})
		require.NoError(t, err)
		assert.Equal(t, "btc", tx.Currency)
	})

	t.Run("UnregisteredReceiver", func(t *testing.T) {
		unregistered := &entities.User{ID: 9, Email: "pending@example.com"}
		f.users.users[unregistered.ID] = unregistered

		_, err := f.service.TransferAssetByKitIDs(ctx, sender.ID, unregistered.ID, "btc", decimal.NewFromInt(1), entities.TransferOptions{})
		assert.True(t, errors.Is(err, domainerrors.ErrUserNotRegisteredOnNetwork))
	})

	t.Run("UnknownSender", func(t *testing.T) {
		_, err := f.service.TransferAssetByKitIDs(ctx, 999, receiver.ID, "btc", decimal.NewFromInt(1), entities.TransferOptions{})
		assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
	})
}

func TestCheckTransaction(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(tradingPolicy())

	result, err := f.service.CheckTransaction(ctx, "btc", "txid", btcLegacy, "btc", false)
	require.NoError(t, err)
	assert.Equal(t, "success", result["status"])

	_, err = f.service.CheckTransaction(ctx, "doge", "txid", "addr", "doge", false)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCoin))
}

func TestValidateDeposit(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(tradingPolicy())
	user := testUser()

	t.Run("Success", func(t *testing.T) {
		quote, err := f.service.ValidateDeposit(ctx, user, decimal.NewFromInt(1), "btc", "")
		require.NoError(t, err)
		assert.True(t, quote.Fee.IsZero())
		assert.Equal(t, "btc", quote.FeeCoin)
	})

	t.Run("DepositDisabled", func(t *testing.T) {
		_, err := f.service.ValidateDeposit(ctx, user, decimal.NewFromInt(1), "xht", "")
		assert.True(t, errors.Is(err, domainerrors.ErrDepositDisabled))
	})

	t.Run("NetworkMembership", func(t *testing.T) {
		_, err := f.service.ValidateDeposit(ctx, user, decimal.NewFromInt(100), "usdt", "bsc")
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidNetwork))

		quote, err := f.service.ValidateDeposit(ctx, user, decimal.NewFromInt(100), "usdt", "trx")
		require.NoError(t, err)
		assert.Equal(t, "usdt", quote.FeeCoin)
	})

	t.Run("UnverifiedUser", func(t *testing.T) {
		low := &entities.User{ID: 3, NetworkID: 12, VerificationLevel: 0}
		_, err := f.service.ValidateDeposit(ctx, low, decimal.NewFromInt(1), "btc", "")
		assert.True(t, errors.Is(err, domainerrors.ErrVerificationRequired))
	})
}
