package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	ethAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	btcLegacy  = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	btcP2SH    = "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy"
	btcBech32  = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"
	trxAddress = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	xlmAddress = "GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7"
	xrpAddress = "rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH"
	xmrAddress = "44AFFq5kSiGBoZ4NMDwYtN18obc8AemS33DBLWs3H7otXft3XjrpDtQGv7SqSsaBYBb98uNbr2VBBEt7f2wfn3RVGQBEP3A"
	bchCashAdr = "bitcoincash:qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6a"
)

func TestIsValidAddress(t *testing.T) {
	t.Run("NetworkRulesWinOverCurrency", func(t *testing.T) {
		// a token withdrawn over an ETH-style chain validates against
		// ETH rules regardless of the token's own format
		assert.True(t, IsValidAddress("usdt", ethAddress, "eth"))
		assert.True(t, IsValidAddress("usdt", ethAddress, "ethereum"))
		assert.False(t, IsValidAddress("usdt", trxAddress, "eth"))

		assert.True(t, IsValidAddress("usdt", trxAddress, "trx"))
		assert.True(t, IsValidAddress("usdt", trxAddress, "tron"))
		assert.False(t, IsValidAddress("usdt", ethAddress, "trx"))

		assert.True(t, IsValidAddress("usdt", ethAddress, "bsc"))
		assert.True(t, IsValidAddress("bnb", ethAddress, ""))
	})

	t.Run("Bitcoin", func(t *testing.T) {
		assert.True(t, IsValidAddress("btc", btcLegacy, ""))
		assert.True(t, IsValidAddress("btc", btcP2SH, ""))
		assert.True(t, IsValidAddress("btc", btcBech32, ""))

		// checksum broken by flipping the last character
		assert.False(t, IsValidAddress("btc", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNb", ""))
		assert.False(t, IsValidAddress("btc", ethAddress, ""))
	})

	t.Run("BitcoinCash", func(t *testing.T) {
		assert.True(t, IsValidAddress("bch", btcLegacy, ""), "legacy format accepted")
		assert.True(t, IsValidAddress("bch", bchCashAdr, ""))
		assert.True(t, IsValidAddress("bch", "qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6a", ""), "cashaddr without prefix")
		assert.False(t, IsValidAddress("bch", "not-an-address", ""))
	})

	t.Run("StellarWithMemo", func(t *testing.T) {
		assert.True(t, IsValidAddress("xlm", xlmAddress, "xlm"))
		assert.True(t, IsValidAddress("xlm", xlmAddress+":12345", "stellar"), "memo suffix is stripped")
		assert.False(t, IsValidAddress("xlm", "G123", "xlm"))
	})

	t.Run("RippleWithTag", func(t *testing.T) {
		assert.True(t, IsValidAddress("xrp", xrpAddress, ""))
		assert.True(t, IsValidAddress("xrp", xrpAddress+":987", ""))
		assert.False(t, IsValidAddress("xrp", "x"+xrpAddress, ""))
	})

	t.Run("Monero", func(t *testing.T) {
		assert.True(t, IsValidAddress("xmr", xmrAddress, ""))
		assert.False(t, IsValidAddress("xmr", xmrAddress[:90], ""))
	})

	t.Run("UnknownCurrencyIsPermissive", func(t *testing.T) {
		assert.True(t, IsValidAddress("etn", "anything", ""))
		assert.True(t, IsValidAddress("doge", "DH5yaieqoZN36fDVciNyRueRGvGLR3mr7L", ""))
		assert.True(t, IsValidAddress("newcoin", "whatever", ""))
	})

	t.Run("Idempotent", func(t *testing.T) {
		for _, tc := range []struct {
			currency, address, network string
		}{
			{"btc", btcLegacy, ""},
			{"eth", ethAddress, "eth"},
			{"xlm", xlmAddress + ":42", "stellar"},
			{"btc", "garbage", ""},
		} {
			first := IsValidAddress(tc.currency, tc.address, tc.network)
			second := IsValidAddress(tc.currency, tc.address, tc.network)
			assert.Equal(t, first, second)
		}
	})
}
