package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// LimitPeriod is the rolling window a transaction limit covers
type LimitPeriod string

const (
	// PeriodLast24Hours covers the trailing 24 hours
	PeriodLast24Hours LimitPeriod = "24h"
	// PeriodLastMonth covers the trailing month
	PeriodLastMonth LimitPeriod = "1mo"
)

// TransactionType selects which flow a limit row applies to
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

// LimitScopeDefault is the limit row scope covering every currency that
// has no independent row of its own
const LimitScopeDefault = "default"

var limitBlocked = decimal.NewFromInt(-1)

// TransactionLimit is one tiered limit row. LimitCurrency is the scope
// ("default" or one symbol); Currency is the reference currency the
// amount is denominated in. Amount -1 blocks the flow outright; any
// other non-positive amount enforces no cap.
type TransactionLimit struct {
	Tier          int             `json:"tier"`
	Period        LimitPeriod     `json:"period"`
	Type          TransactionType `json:"type"`
	LimitCurrency string          `json:"limit_currency"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
}

// Blocked reports whether the row blocks the flow entirely
func (l *TransactionLimit) Blocked() bool {
	return l.Amount.Equal(limitBlocked)
}

// Unlimited reports whether the row enforces no cap. Only positive
// amounts are enforced; -1 is reserved for Blocked.
func (l *TransactionLimit) Unlimited() bool {
	return !l.Amount.IsPositive() && !l.Blocked()
}

// WindowStart returns the start of the rolling window ending at now
func (l *TransactionLimit) WindowStart(now time.Time) time.Time {
	if l.Period == PeriodLastMonth {
		return now.AddDate(0, -1, 0)
	}
	return now.Add(-24 * time.Hour)
}
