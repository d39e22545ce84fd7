package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FeeType selects how a fee rule's value is applied
type FeeType string

const (
	// FeeTypeStatic uses the configured value as the fee verbatim
	FeeTypeStatic FeeType = "static"
	// FeeTypePercentage computes amount * value / 100
	FeeTypePercentage FeeType = "percentage"
)

// Pseudo-networks recognized by withdrawal validation
const (
	// NetworkEmail marks an internal transfer addressed by email
	NetworkEmail = "email"
	// NetworkFiat marks a fiat withdrawal, which skips chain validation
	NetworkFiat = "fiat"
)

// FeeEntry is one fee rule from a coin's per-network (or, for fiat,
// per-currency) fee table. Levels holds tier-specific value overrides.
type FeeEntry struct {
	Value  decimal.Decimal         `json:"value"`
	Symbol string                  `json:"symbol,omitempty"`
	Type   FeeType                 `json:"type,omitempty"`
	Levels map[int]decimal.Decimal `json:"levels,omitempty"`
}

// Coin is a subscribed exchange asset and its withdrawal/deposit policy.
// Network is the comma-separated list of chains the coin moves on; empty
// for single-chain coins addressed by their own symbol.
type Coin struct {
	Symbol          string              `json:"symbol"`
	DisplayName     string              `json:"fullname"`
	AllowWithdrawal bool                `json:"allow_withdrawal"`
	AllowDeposit    bool                `json:"allow_deposit"`
	WithdrawalFee   decimal.Decimal     `json:"withdrawal_fee"`
	WithdrawalFees  map[string]FeeEntry `json:"withdrawal_fees,omitempty"`
	DepositFees     map[string]FeeEntry `json:"deposit_fees,omitempty"`
	Network         string              `json:"network,omitempty"`
}

// NetworkList returns the coin's allowed networks, nil when the coin
// declares none
func (c *Coin) NetworkList() []string {
	if c.Network == "" {
		return nil
	}
	parts := strings.Split(c.Network, ",")
	networks := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			networks = append(networks, trimmed)
		}
	}
	return networks
}

// SupportsNetwork reports whether a network is in the coin's allowed list
func (c *Coin) SupportsNetwork(network string) bool {
	for _, allowed := range c.NetworkList() {
		if allowed == network {
			return true
		}
	}
	return false
}

// Name returns the human-readable coin name, falling back to the symbol
func (c *Coin) Name() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return strings.ToUpper(c.Symbol)
}
