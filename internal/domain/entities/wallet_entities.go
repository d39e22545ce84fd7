package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the subset of the exchange user relevant to wallet operations.
// ID is the kit-side identifier; NetworkID is the user's identifier inside
// the external ledger subsystem, zero when the user has not been registered
// there yet.
type User struct {
	ID                int64  `json:"id" db:"id"`
	Email             string `json:"email" db:"email"`
	NetworkID         int64  `json:"network_id" db:"network_id"`
	VerificationLevel int    `json:"verification_level" db:"verification_level"`
	TOTPSecret        string `json:"-" db:"totp_secret"`
}

// RegisteredOnNetwork reports whether the user has a ledger-side account
func (u *User) RegisteredOnNetwork() bool {
	return u.NetworkID != 0
}

// Balance is a user's ledger balance snapshot, available amount per currency
type Balance struct {
	UserID    int64                      `json:"user_id"`
	Available map[string]decimal.Decimal `json:"available"`
}

// AvailableFor returns the available balance for a currency, zero if absent
func (b *Balance) AvailableFor(currency string) decimal.Decimal {
	if b == nil || b.Available == nil {
		return decimal.Zero
	}
	return b.Available[currency]
}

// Withdrawal is a historical withdrawal record owned and paginated by the
// ledger subsystem; this service only reads and aggregates it.
type Withdrawal struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"` // ledger network id
	Currency   string          `json:"currency"`
	Amount     decimal.Decimal `json:"amount"`
	Dismissed  bool            `json:"dismissed"`
	Rejected   bool            `json:"rejected"`
	Processing bool            `json:"processing"`
	Waiting    bool            `json:"waiting"`
	CreatedAt  time.Time       `json:"created_at"`
}

// WithdrawalPage is one page of ledger withdrawal history
type WithdrawalPage struct {
	Count int          `json:"count"`
	Data  []Withdrawal `json:"data"`
}

// WithdrawalHistoryQuery filters a ledger withdrawal-history fetch.
// Nil boolean filters leave the flag unconstrained.
type WithdrawalHistoryQuery struct {
	Currency  string
	Dismissed *bool
	Rejected  *bool
	StartDate time.Time
	EndDate   time.Time
	Page      int
	Limit     int
}

// WithdrawalRequest is the payload persisted under a withdrawal
// confirmation token and round-tripped through the email handshake.
// Timestamp is unix milliseconds at mint time; expiry is enforced at read
// time against the configured window.
type WithdrawalRequest struct {
	UserID        int64           `json:"user_id"`
	Email         string          `json:"email"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	FeeCoin       string          `json:"fee_coin"`
	TransactionID string          `json:"transaction_id"`
	Address       string          `json:"address"`
	Currency      string          `json:"currency"`
	Network       string          `json:"network,omitempty"`
	Timestamp     int64           `json:"timestamp"`
}

// Age returns how long ago the request token was minted
func (r *WithdrawalRequest) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-r.Timestamp) * time.Millisecond
}

// LedgerTransaction is the ledger's acknowledgement of an executed or
// updated operation (withdrawal, transfer, mint, burn).
type LedgerTransaction struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id"`
	UserID        int64           `json:"user_id"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	Status        string          `json:"status"`
	Dismissed     bool            `json:"dismissed"`
	Rejected      bool            `json:"rejected"`
	Processing    bool            `json:"processing"`
	Waiting       bool            `json:"waiting"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransferOptions carries the optional parameters of a ledger asset transfer
type TransferOptions struct {
	Description   string
	Email         bool
	TransactionID string
}

// MintBurnOptions carries the optional parameters of mint/burn operations
type MintBurnOptions struct {
	Description   string
	TransactionID string
	Status        string
	Email         bool
	Fee           decimal.Decimal
}

// PendingUpdateOptions updates a pending mint/burn record
type PendingUpdateOptions struct {
	Status               string
	Dismissed            bool
	Rejected             bool
	Processing           bool
	Waiting              bool
	UpdatedTransactionID string
	UpdatedDescription   string
	Email                bool
}
