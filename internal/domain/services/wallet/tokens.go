package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
	domainerrors "github.com/vaultex/vaultex_service/internal/domain/errors"
)

const withdrawalTokenKeyPrefix = "withdrawals:request:"

// RequestOptions carries the optional parameters of a withdrawal
// confirmation request. Fee and FeeCoin override fee resolution only
// when SkipValidate is set by a trusted caller.
type RequestOptions struct {
	Network      string
	OTPCode      string
	Fee          *decimal.Decimal
	FeeCoin      string
	SkipValidate bool
	IP           string
	Domain       string
}

// SendRequestWithdrawalEmail starts the email confirmation handshake:
// it verifies the user's one-time code, validates the withdrawal,
// persists the request under a generated transaction id, and dispatches
// the confirmation email carrying that token. The email send is
// best-effort and not awaited; the token write is what matters.
func (s *Service) SendRequestWithdrawalEmail(ctx context.Context, userID int64, address string, amount decimal.Decimal, currency string, opts RequestOptions) (*entities.WithdrawalRequest, error) {
	if err := s.otp.VerifyCode(ctx, userID, opts.OTPCode); err != nil {
		return nil, err
	}

	user, err := s.users.GetByKitID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, &domainerrors.DomainError{Err: domainerrors.ErrUserNotFound, Code: "USER_NOT_FOUND", Message: "user not found"}
	}

	var fee decimal.Decimal
	feeCoin := currency
	if opts.SkipValidate {
		snap := s.policy.Snapshot()
		coin, ok := snap.Coin(currency)
		if !ok {
			return nil, domainerrors.InvalidCoinError(currency)
		}
		if opts.Fee != nil {
			fee = *opts.Fee
			if opts.FeeCoin != "" {
				feeCoin = opts.FeeCoin
			}
		} else {
			fee, feeCoin = ResolveWithdrawalFee(coin, opts.Network, amount, user.VerificationLevel)
		}
	} else {
		quote, err := s.ValidateWithdrawal(ctx, user, address, amount, currency, opts.Network)
		if err != nil {
			return nil, err
		}
		fee = quote.Fee
		feeCoin = quote.FeeCoin
	}

	transactionID := uuid.New().String()
	request := &entities.WithdrawalRequest{
		UserID:        user.ID,
		Email:         user.Email,
		Amount:        amount,
		Fee:           fee,
		FeeCoin:       feeCoin,
		TransactionID: transactionID,
		Address:       address,
		Currency:      currency,
		Network:       opts.Network,
		Timestamp:     s.clock().UnixMilli(),
	}

	// the store TTL outlives the logical expiry so a late read reports
	// the token as expired rather than missing
	snap := s.policy.Snapshot()
	if err := s.tokens.Set(ctx, withdrawalTokenKey(transactionID), request, 2*snap.TokenExpiry); err != nil {
		return nil, fmt.Errorf("failed to persist withdrawal token: %w", err)
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := s.email.SendWithdrawalRequestEmail(sendCtx, WithdrawalEmail{
			Email:         user.Email,
			Currency:      currency,
			Amount:        amount,
			Fee:           fee,
			FeeCoin:       feeCoin,
			Address:       address,
			Network:       opts.Network,
			TransactionID: transactionID,
			IP:            opts.IP,
			Domain:        opts.Domain,
		})
		if err != nil {
			s.log.Error("Failed to send withdrawal confirmation email",
				"user_id", user.ID,
				"currency", currency,
				"error", err)
		}
	}()

	s.log.Info("Withdrawal confirmation requested",
		"user_id", user.ID,
		"currency", currency,
		"amount", amount.String(),
		"transaction_id", transactionID)
	return request, nil
}

// ValidateWithdrawalToken consumes a confirmation token. The read is a
// single atomic take, so a token is usable at most once; expiry is
// checked only after the token has been removed, and a token read at
// exactly the expiry boundary is treated as expired.
func (s *Service) ValidateWithdrawalToken(ctx context.Context, token string) (*entities.WithdrawalRequest, error) {
	var request entities.WithdrawalRequest
	found, err := s.tokens.Take(ctx, withdrawalTokenKey(token), &request)
	if err != nil {
		return nil, fmt.Errorf("failed to read withdrawal token: %w", err)
	}
	if !found {
		return nil, &domainerrors.DomainError{Err: domainerrors.ErrInvalidWithdrawalToken, Code: "INVALID_WITHDRAWAL_TOKEN", Message: "invalid withdrawal token"}
	}

	snap := s.policy.Snapshot()
	if request.Age(s.clock()) >= snap.TokenExpiry {
		return nil, &domainerrors.DomainError{Err: domainerrors.ErrExpiredWithdrawalToken, Code: "EXPIRED_WITHDRAWAL_TOKEN", Message: "expired withdrawal token"}
	}
	return &request, nil
}

func withdrawalTokenKey(transactionID string) string {
	return withdrawalTokenKeyPrefix + transactionID
}
