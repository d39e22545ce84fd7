package wallet

import (
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
)

// Chain-specific address formats
var (
	xlmPattern = regexp.MustCompile(`^G[A-Z2-7]{55}$`)
	xrpPattern = regexp.MustCompile(`^r[1-9A-HJ-NP-Za-km-z]{24,34}$`)
	xmrPattern = regexp.MustCompile(`^[48][0-9AB][1-9A-HJ-NP-Za-km-z]{93}$`)
	bchPattern = regexp.MustCompile(`^(bitcoincash:)?[qp][a-z0-9]{41}$`)
)

// tron addresses are base58check with a one-byte 0x41 prefix
const trxAddressVersion = 0x41

// nativeValidators backs the fallback dispatch for currencies addressed
// on their own chain. Currencies absent from this table are treated as
// valid; this layer does not block unknown assets.
var nativeValidators = map[string]func(string) bool{
	"eth": isValidETHAddress,
	"btc": isValidBTCAddress,
	"bch": isValidBCHAddress,
	"xmr": isValidXMRAddress,
	"xlm": isValidXLMAddress,
	"xrp": isValidXRPAddress,
	"trx": isValidTRXAddress,
}

// IsValidAddress reports whether an address is well formed for the
// given currency and network. Network rules are checked before currency
// fallbacks, so a token requested over an ETH-style chain validates
// against ETH rules regardless of its own native format. Pure function.
func IsValidAddress(currency, address, network string) bool {
	switch {
	case network == "eth" || network == "ethereum":
		return isValidETHAddress(address)
	case network == "stellar" || network == "xlm":
		return isValidXLMAddress(memoBase(address))
	case network == "tron" || network == "trx":
		return isValidTRXAddress(address)
	case network == "bsc" || network == "bnb" || currency == "bnb":
		// BSC uses ETH-style addresses
		return isValidETHAddress(address)
	case currency == "btc":
		return isValidBTCAddress(address)
	case currency == "bch":
		return isValidBCHAddress(address)
	case currency == "xmr":
		return isValidXMRAddress(address)
	case currency == "xrp":
		return isValidXRPAddress(memoBase(address))
	case currency == "etn":
		// no validator available, explicit bypass
		return true
	default:
		if validate, ok := nativeValidators[currency]; ok {
			return validate(address)
		}
		return true
	}
}

// memoBase strips a memo/tag suffix from addresses written as
// "address:memo"
func memoBase(address string) string {
	if idx := strings.Index(address, ":"); idx >= 0 {
		return address[:idx]
	}
	return address
}

func isValidETHAddress(address string) bool {
	return common.IsHexAddress(address)
}

func isValidBTCAddress(address string) bool {
	if payload, version, err := base58.CheckDecode(address); err == nil {
		return (version == 0x00 || version == 0x05) && len(payload) == 20
	}
	hrp, _, err := bech32.Decode(address)
	if err != nil {
		return false
	}
	return hrp == "bc" || hrp == "tb"
}

func isValidBCHAddress(address string) bool {
	if payload, version, err := base58.CheckDecode(address); err == nil {
		return (version == 0x00 || version == 0x05) && len(payload) == 20
	}
	return bchPattern.MatchString(address)
}

func isValidTRXAddress(address string) bool {
	payload, version, err := base58.CheckDecode(address)
	if err != nil {
		return false
	}
	return version == trxAddressVersion && len(payload) == 20
}

func isValidXLMAddress(address string) bool {
	return xlmPattern.MatchString(address)
}

func isValidXRPAddress(address string) bool {
	return xrpPattern.MatchString(address)
}

func isValidXMRAddress(address string) bool {
	return xmrPattern.MatchString(address)
}
