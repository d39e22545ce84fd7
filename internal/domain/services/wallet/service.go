// Package wallet implements withdrawal and transfer validation: fee
// resolution, address checks, tiered rolling-window limits, the
// email-confirmation token handshake, and identifier translation in
// front of the exchange ledger.
package wallet

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
	domainerrors "github.com/vaultex/vaultex_service/internal/domain/errors"
	"github.com/vaultex/vaultex_service/pkg/logger"
)

// PolicySource serves the current wallet policy snapshot
type PolicySource interface {
	Snapshot() *entities.WalletPolicy
}

// Ledger is the subset of exchange network operations the wallet
// service depends on
type Ledger interface {
	GetUserBalance(ctx context.Context, networkID int64) (*entities.Balance, error)
	GetUserWithdrawals(ctx context.Context, networkID int64, query entities.WithdrawalHistoryQuery) (*entities.WithdrawalPage, error)
	GetUserDeposits(ctx context.Context, networkID int64, query entities.WithdrawalHistoryQuery) (*entities.WithdrawalPage, error)
	PerformWithdrawal(ctx context.Context, networkID int64, address, currency string, amount decimal.Decimal, network string, fee *decimal.Decimal, feeCoin string) (*entities.LedgerTransaction, error)
	CancelWithdrawal(ctx context.Context, networkID, withdrawalID int64) (*entities.LedgerTransaction, error)
	TransferAsset(ctx context.Context, senderNetworkID, receiverNetworkID int64, currency string, amount decimal.Decimal, opts entities.TransferOptions) (*entities.LedgerTransaction, error)
	MintAsset(ctx context.Context, networkID int64, currency string, amount decimal.Decimal, opts entities.MintBurnOptions) (*entities.LedgerTransaction, error)
	BurnAsset(ctx context.Context, networkID int64, currency string, amount decimal.Decimal, opts entities.MintBurnOptions) (*entities.LedgerTransaction, error)
	UpdatePendingMint(ctx context.Context, transactionID string, opts entities.PendingUpdateOptions) (*entities.LedgerTransaction, error)
	UpdatePendingBurn(ctx context.Context, transactionID string, opts entities.PendingUpdateOptions) (*entities.LedgerTransaction, error)
	GetOraclePrices(ctx context.Context, assets []string, quote string, amount decimal.Decimal) (map[string]decimal.Decimal, error)
	CheckTransaction(ctx context.Context, currency, transactionID, address, network string, isTestnet bool) (map[string]interface{}, error)
}

// UserStore resolves exchange users and identifier mappings
type UserStore interface {
	GetByKitID(ctx context.Context, id int64) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	MapKitIDsToNetworkIDs(ctx context.Context, kitIDs []int64) (map[int64]int64, error)
	MapNetworkIDsToKitIDs(ctx context.Context, networkIDs []int64) (map[int64]int64, error)
}

// TokenStore persists single-use withdrawal confirmation tokens
type TokenStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Take(ctx context.Context, key string, dest interface{}) (bool, error)
}

// EmailSender dispatches withdrawal confirmation email
type EmailSender interface {
	SendWithdrawalRequestEmail(ctx context.Context, details WithdrawalEmail) error
}

// OTPVerifier checks a user's one-time code
type OTPVerifier interface {
	VerifyCode(ctx context.Context, userID int64, code string) error
}

// WithdrawalEmail is the data rendered into a confirmation email
type WithdrawalEmail struct {
	Email         string
	Currency      string
	Amount        decimal.Decimal
	Fee           decimal.Decimal
	FeeCoin       string
	Address       string
	Network       string
	TransactionID string
	IP            string
	Domain        string
}

// WithdrawalQuote is the resolved fee of a validated withdrawal
type WithdrawalQuote struct {
	Fee     decimal.Decimal `json:"fee"`
	FeeCoin string          `json:"fee_coin"`
}

// Service orchestrates wallet operations against the ledger
type Service struct {
	policy  PolicySource
	ledger  Ledger
	users   UserStore
	tokens  TokenStore
	email   EmailSender
	otp     OTPVerifier
	log     *logger.Logger
	breaker *gobreaker.CircuitBreaker

	clock func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes service construction
type Option func(*Service)

// WithClock overrides the time source
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithSleep overrides the inter-request throttle used during
// accumulation pagination
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) { s.sleep = sleep }
}

// NewService creates a wallet service
func NewService(policy PolicySource, ledger Ledger, users UserStore, tokens TokenStore, email EmailSender, otp OTPVerifier, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		policy: policy,
		ledger: ledger,
		users:  users,
		tokens: tokens,
		email:  email,
		otp:    otp,
		log:    log,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "ledger",
			MaxRequests: 3,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
		}),
		clock: time.Now,
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateWithdrawal runs the full pre-flight check for a withdrawal:
// coin policy, network and address rules, user eligibility, fee
// resolution, balance sufficiency, and both rolling-window limits.
// Returns the resolved fee on success.
func (s *Service) ValidateWithdrawal(ctx context.Context, user *entities.User, address string, amount decimal.Decimal, currency, network string) (*WithdrawalQuote, error) {
	snap := s.policy.Snapshot()

	coin, ok := snap.Coin(currency)
	if !ok {
		return nil, domainerrors.InvalidCoinError(currency)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domainerrors.InvalidAmountError(amount)
	}
	if !coin.AllowWithdrawal {
		return nil, domainerrors.WithdrawalDisabledError(currency)
	}

	switch network {
	case entities.NetworkEmail:
		if !emailPattern.MatchString(address) {
			return nil, domainerrors.InvalidAddressError(currency, address)
		}
	case entities.NetworkFiat:
		// fiat withdrawals carry no chain address
	default:
		if coin.Network != "" {
			if network == "" {
				return nil, domainerrors.NetworkRequiredError(currency, coin.Network)
			}
			if !coin.SupportsNetwork(network) {
				return nil, domainerrors.InvalidNetworkError(network, coin.Network)
			}
		} else if network != "" {
			return nil, domainerrors.InvalidNetworkError(network, "")
		}
		if !IsValidAddress(currency, address, network) {
			return nil, domainerrors.InvalidAddressError(currency, address)
		}
	}

	if user == nil {
		return nil, &domainerrors.DomainError{Err: domainerrors.ErrUserNotFound, Code: "USER_NOT_FOUND", Message: "user not found"}
	}
	if !user.RegisteredOnNetwork() {
		return nil, &domainerrors.DomainError{Err: domainerrors.ErrUserNotRegisteredOnNetwork, Code: "USER_NOT_REGISTERED", Message: "user is not registered on the ledger network"}
	}
	if user.VerificationLevel < snap.MinVerificationTier {
		return nil, domainerrors.VerificationRequiredError(snap.MinVerificationTier)
	}

	fee, feeCoin := ResolveWithdrawalFee(coin, network, amount, user.VerificationLevel)

	balance, err := s.getUserBalance(ctx, user.NetworkID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}
	if feeCoin == currency {
		if amount.Add(fee).GreaterThan(balance.AvailableFor(currency)) {
			return nil, domainerrors.InsufficientBalanceError(currency, amount, fee)
		}
	} else {
		if amount.GreaterThan(balance.AvailableFor(currency)) {
			return nil, domainerrors.InsufficientBalanceError(currency, amount, decimal.Zero)
		}
		if fee.GreaterThan(balance.AvailableFor(feeCoin)) {
			return nil, domainerrors.InsufficientFeeBalanceError(feeCoin, fee)
		}
	}

	if err := s.checkWithdrawalLimits(ctx, snap, user, currency, amount); err != nil {
		return nil, err
	}

	return &WithdrawalQuote{Fee: fee, FeeCoin: feeCoin}, nil
}

// PerformWithdrawal consumes a confirmation token, re-checks the coin
// against the current policy, re-runs the rolling-window limit checks
// against current usage, and delegates execution to the ledger.
func (s *Service) PerformWithdrawal(ctx context.Context, userID int64, token string) (*entities.LedgerTransaction, error) {
	request, err := s.ValidateWithdrawalToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if request.UserID != userID {
		return nil, &domainerrors.DomainError{Err: domainerrors.ErrInvalidWithdrawalToken, Code: "INVALID_WITHDRAWAL_TOKEN", Message: "withdrawal token does not belong to user"}
	}

	user, err := s.users.GetByKitID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, &domainerrors.DomainError{Err: domainerrors.ErrUserNotFound, Code: "USER_NOT_FOUND", Message: "user not found"}
	}
	if !user.RegisteredOnNetwork() {
		return nil, &domainerrors.DomainError{Err: domainerrors.ErrUserNotRegisteredOnNetwork, Code: "USER_NOT_REGISTERED", Message: "user is not registered on the ledger network"}
	}

	snap := s.policy.Snapshot()
	coin, ok := snap.Coin(request.Currency)
	if !ok {
		return nil, domainerrors.InvalidCoinError(request.Currency)
	}
	if !coin.AllowWithdrawal {
		return nil, domainerrors.WithdrawalDisabledError(request.Currency)
	}
	if err := s.checkWithdrawalLimits(ctx, snap, user, request.Currency, request.Amount); err != nil {
		return nil, err
	}

	fee := request.Fee
	tx, err := s.performLedgerWithdrawal(ctx, user.NetworkID, request.Address, request.Currency, request.Amount, request.Network, &fee, request.FeeCoin)
	if err != nil {
		return nil, err
	}

	s.log.Info("Withdrawal executed",
		"user_id", userID,
		"currency", request.Currency,
		"amount", request.Amount.String(),
		"transaction_id", request.TransactionID)
	return tx, nil
}

// PerformDirectWithdrawal re-runs full validation and executes a
// withdrawal without the email handshake, for trusted callers.
func (s *Service) PerformDirectWithdrawal(ctx context.Context, userID int64, address string, amount decimal.Decimal, currency, network string) (*entities.LedgerTransaction, error) {
	user, err := s.users.GetByKitID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	quote, err := s.ValidateWithdrawal(ctx, user, address, amount, currency, network)
	if err != nil {
		return nil, err
	}

	fee := quote.Fee
	tx, err := s.performLedgerWithdrawal(ctx, user.NetworkID, address, currency, amount, network, &fee, quote.FeeCoin)
	if err != nil {
		return nil, err
	}

	s.log.Info("Direct withdrawal executed",
		"user_id", userID,
		"currency", currency,
		"amount", amount.String())
	return tx, nil
}

// checkWithdrawalLimits enforces the 24h and monthly rolling-window
// caps for the user's tier
func (s *Service) checkWithdrawalLimits(ctx context.Context, snap *entities.WalletPolicy, user *entities.User, currency string, amount decimal.Decimal) error {
	for _, period := range []entities.LimitPeriod{entities.PeriodLast24Hours, entities.PeriodLastMonth} {
		if err := s.withdrawalBelowLimit(ctx, snap, user, currency, amount, period); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) getUserBalance(ctx context.Context, networkID int64) (*entities.Balance, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.ledger.GetUserBalance(ctx, networkID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*entities.Balance), nil
}

func (s *Service) performLedgerWithdrawal(ctx context.Context, networkID int64, address, currency string, amount decimal.Decimal, network string, fee *decimal.Decimal, feeCoin string) (*entities.LedgerTransaction, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.ledger.PerformWithdrawal(ctx, networkID, address, currency, amount, network, fee, feeCoin)
	})
	if err != nil {
		return nil, err
	}
	return result.(*entities.LedgerTransaction), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
