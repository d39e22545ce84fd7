// Package errors provides standardized error types for the wallet domain.
// Sentinels categorize failures; DomainError carries request context
// (amounts, caps, currencies) for the HTTP layer.
package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Request-shape errors
var (
	// ErrInvalidCoin indicates the currency is not subscribed/supported
	ErrInvalidCoin = errors.New("invalid coin")

	// ErrInvalidAmount indicates a non-positive transaction amount
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidNetwork indicates the network is not allowed for the coin
	ErrInvalidNetwork = errors.New("invalid network")

	// ErrNetworkRequired indicates a multi-chain coin was given no network
	ErrNetworkRequired = errors.New("network required")

	// ErrInvalidAddress indicates the address failed chain validation
	ErrInvalidAddress = errors.New("invalid address")
)

// Policy errors
var (
	// ErrWithdrawalDisabled indicates the coin or tier blocks withdrawals
	ErrWithdrawalDisabled = errors.New("withdrawal disabled for coin")

	// ErrDepositDisabled indicates the coin config blocks deposits
	ErrDepositDisabled = errors.New("deposit disabled for coin")
)

// Identity/eligibility errors
var (
	// ErrUserNotFound indicates no user exists for the given identifier
	ErrUserNotFound = errors.New("user not found")

	// ErrUserNotRegisteredOnNetwork indicates the user has no ledger account
	ErrUserNotRegisteredOnNetwork = errors.New("user not registered on network")

	// ErrVerificationRequired indicates the user's tier is too low
	ErrVerificationRequired = errors.New("verification level too low")
)

// Funds and limit errors
var (
	// ErrInsufficientBalance indicates the available balance cannot cover
	// amount and/or fee
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrLimitExceeded indicates a rolling-window cap would be breached
	ErrLimitExceeded = errors.New("withdrawal limit exceeded")
)

// Confirmation-flow errors
var (
	// ErrInvalidOTPCode indicates the one-time code did not verify
	ErrInvalidOTPCode = errors.New("invalid otp code")

	// ErrInvalidWithdrawalToken indicates the token was not found (or was
	// already consumed)
	ErrInvalidWithdrawalToken = errors.New("invalid withdrawal token")

	// ErrExpiredWithdrawalToken indicates the token outlived the expiry window
	ErrExpiredWithdrawalToken = errors.New("expired withdrawal token")
)

// DomainError represents a domain-specific error with additional context
type DomainError struct {
	Err     error
	Code    string
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

// Unwrap returns the underlying sentinel
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target
func (e *DomainError) Is(target error) bool {
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// WithDetails adds details to the error
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	e.Details = details
	return e
}

// InvalidCoinError creates an invalid coin error
func InvalidCoinError(currency string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidCoin,
		Code:    "INVALID_COIN",
		Message: fmt.Sprintf("invalid coin: %s", currency),
	}
}

// InvalidAmountError creates an invalid amount error
func InvalidAmountError(amount decimal.Decimal) *DomainError {
	return &DomainError{
		Err:     ErrInvalidAmount,
		Code:    "INVALID_AMOUNT",
		Message: fmt.Sprintf("invalid amount: %s", amount.String()),
	}
}

// InvalidNetworkError creates an invalid network error
func InvalidNetworkError(network, allowed string) *DomainError {
	msg := fmt.Sprintf("invalid network given: %s", network)
	if allowed != "" {
		msg = fmt.Sprintf("invalid network %s, expected one of: %s", network, allowed)
	}
	return &DomainError{
		Err:     ErrInvalidNetwork,
		Code:    "INVALID_NETWORK",
		Message: msg,
	}
}

// NetworkRequiredError creates a network required error
func NetworkRequiredError(currency, allowed string) *DomainError {
	return &DomainError{
		Err:     ErrNetworkRequired,
		Code:    "NETWORK_REQUIRED",
		Message: fmt.Sprintf("network is required for %s, one of: %s", currency, allowed),
	}
}

// InvalidAddressError creates an invalid address error
func InvalidAddressError(currency, address string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidAddress,
		Code:    "INVALID_ADDRESS",
		Message: fmt.Sprintf("invalid %s address: %s", currency, address),
	}
}

// WithdrawalDisabledError creates a withdrawal disabled error
func WithdrawalDisabledError(currency string) *DomainError {
	return &DomainError{
		Err:     ErrWithdrawalDisabled,
		Code:    "WITHDRAWAL_DISABLED",
		Message: fmt.Sprintf("withdrawals are disabled for %s", currency),
	}
}

// DepositDisabledError creates a deposit disabled error
func DepositDisabledError(currency string) *DomainError {
	return &DomainError{
		Err:     ErrDepositDisabled,
		Code:    "DEPOSIT_DISABLED",
		Message: fmt.Sprintf("deposits are disabled for %s", currency),
	}
}

// VerificationRequiredError creates a verification required error
func VerificationRequiredError(minLevel int) *DomainError {
	return &DomainError{
		Err:     ErrVerificationRequired,
		Code:    "VERIFICATION_REQUIRED",
		Message: fmt.Sprintf("verification level %d or above is required", minLevel),
		Details: map[string]interface{}{"min_level": minLevel},
	}
}

// InsufficientBalanceError creates a funds error covering amount plus fee
// in a single currency
func InsufficientBalanceError(currency string, amount, fee decimal.Decimal) *DomainError {
	return &DomainError{
		Err:     ErrInsufficientBalance,
		Code:    "INSUFFICIENT_BALANCE",
		Message: fmt.Sprintf("%s balance is lower than amount %q + fee %q", currency, amount.String(), fee.String()),
		Details: map[string]interface{}{
			"currency": currency,
			"amount":   amount.String(),
			"fee":      fee.String(),
		},
	}
}

// InsufficientFeeBalanceError creates a funds error for the fee currency
// when it differs from the withdrawal currency
func InsufficientFeeBalanceError(feeCoin string, fee decimal.Decimal) *DomainError {
	return &DomainError{
		Err:     ErrInsufficientBalance,
		Code:    "INSUFFICIENT_BALANCE",
		Message: fmt.Sprintf("%s balance is lower than fee amount %q", feeCoin, fee.String()),
		Details: map[string]interface{}{
			"currency": feeCoin,
			"fee":      fee.String(),
		},
	}
}

// LimitExceededError creates a rolling-window limit error
func LimitExceededError(cap, accumulated, requested decimal.Decimal, limitCurrency, requestCurrency string) *DomainError {
	return &DomainError{
		Err:  ErrLimitExceeded,
		Code: "LIMIT_EXCEEDED",
		Message: fmt.Sprintf(
			"total withdrawn amount would exceed limit of %s %s; withdrawn: %s %s, request: %s %s",
			cap.String(), limitCurrency,
			accumulated.String(), limitCurrency,
			requested.String(), requestCurrency,
		),
		Details: map[string]interface{}{
			"limit":          cap.String(),
			"accumulated":    accumulated.String(),
			"requested":      requested.String(),
			"limit_currency": limitCurrency,
			"currency":       requestCurrency,
		},
	}
}

// GetErrorCode extracts the error code from a domain error
func GetErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "UNKNOWN_ERROR"
}

// GetErrorDetails extracts details from a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
