package wallet

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
	domainerrors "github.com/vaultex/vaultex_service/internal/domain/errors"
)

const historyPageSize = 50

// FindIndependentLimit returns the limit row governing a currency: the
// row scoped to that currency when one exists, otherwise the "default"
// row, otherwise nil (no limit enforced).
func FindIndependentLimit(limits []entities.TransactionLimit, currency string) *entities.TransactionLimit {
	var fallback *entities.TransactionLimit
	for i := range limits {
		switch limits[i].LimitCurrency {
		case currency:
			return &limits[i]
		case entities.LimitScopeDefault:
			if fallback == nil {
				fallback = &limits[i]
			}
		}
	}
	return fallback
}

// withdrawalBelowLimit enforces one rolling-window cap: it resolves the
// limit row for the currency, converts the requested amount into the
// limit's reference currency, accumulates the window's prior
// withdrawals, and fails when the cap would be breached. A cap of -1
// blocks the withdrawal before any accumulation.
func (s *Service) withdrawalBelowLimit(ctx context.Context, snap *entities.WalletPolicy, user *entities.User, currency string, amount decimal.Decimal, period entities.LimitPeriod) error {
	rows := snap.TierLimits(user.VerificationLevel, period, entities.TransactionWithdrawal)
	limit := FindIndependentLimit(rows, currency)
	if limit == nil {
		return nil
	}
	if limit.Blocked() {
		return domainerrors.WithdrawalDisabledError(currency)
	}
	if limit.Unlimited() {
		return nil
	}

	requested := amount
	if currency != limit.Currency {
		prices, err := s.ledger.GetOraclePrices(ctx, []string{currency}, limit.Currency, amount)
		if err != nil {
			return fmt.Errorf("failed to convert withdrawal amount: %w", err)
		}
		converted, ok := prices[currency]
		if !ok || converted.IsNegative() {
			// no oracle rate for the request currency; the whole
			// check degrades to a no-op rather than failing the
			// withdrawal
			s.log.Warn("No conversion rate for withdrawal amount, skipping limit check",
				"currency", currency,
				"quote", limit.Currency,
				"period", string(period))
			return nil
		}
		requested = converted
	}

	scope := ""
	if limit.LimitCurrency != entities.LimitScopeDefault {
		scope = limit.LimitCurrency
	}

	accumulated, err := s.accumulatedWithdrawals(ctx, snap, user.NetworkID, scope, limit, rows)
	if err != nil {
		return err
	}

	if accumulated.Add(requested).GreaterThan(limit.Amount) {
		return domainerrors.LimitExceededError(limit.Amount, accumulated, amount, limit.Currency, currency)
	}
	return nil
}

// accumulatedWithdrawals sums the user's prior withdrawals over the
// limit's window, expressed in the limit's reference currency. Scoped
// accumulation returns the scope currency's sum directly; default-bucket
// accumulation converts each currency through the oracle, excluding
// currencies that carry their own independent limit row and skipping
// currencies the oracle has no rate for.
func (s *Service) accumulatedWithdrawals(ctx context.Context, snap *entities.WalletPolicy, networkID int64, scopeCurrency string, limit *entities.TransactionLimit, rows []entities.TransactionLimit) (decimal.Decimal, error) {
	now := s.clock()
	dismissed := false
	rejected := false

	query := entities.WithdrawalHistoryQuery{
		Currency:  scopeCurrency,
		Dismissed: &dismissed,
		Rejected:  &rejected,
		StartDate: limit.WindowStart(now),
		EndDate:   now,
		Page:      1,
		Limit:     historyPageSize,
	}

	page, err := s.ledger.GetUserWithdrawals(ctx, networkID, query)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch withdrawal history: %w", err)
	}

	withdrawals := page.Data
	totalPages := (page.Count + historyPageSize - 1) / historyPageSize
	for pageNum := 2; pageNum <= totalPages; pageNum++ {
		if err := s.sleep(ctx, snap.AccumulationDelay); err != nil {
			return decimal.Zero, err
		}

		next := query
		next.Page = pageNum
		if !snap.PropagatePageFilters {
			// historical behavior: pages after the first drop the
			// currency filter and reset the window to 24 hours
			next.Currency = ""
			next.StartDate = now.Add(-24 * time.Hour)
		}

		page, err = s.ledger.GetUserWithdrawals(ctx, networkID, next)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to fetch withdrawal history page %d: %w", pageNum, err)
		}
		withdrawals = append(withdrawals, page.Data...)
	}

	sums := make(map[string]decimal.Decimal)
	for _, w := range withdrawals {
		sums[w.Currency] = sums[w.Currency].Add(w.Amount)
	}

	if scopeCurrency != "" {
		return sums[scopeCurrency], nil
	}

	currencies := make([]string, 0, len(sums))
	for currency := range sums {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	total := decimal.Zero
	for _, currency := range currencies {
		if hasIndependentLimit(rows, currency) {
			// tracked by its own limit row, must not double-count
			// against the default bucket
			continue
		}

		if err := s.sleep(ctx, snap.AccumulationDelay); err != nil {
			return decimal.Zero, err
		}
		prices, err := s.ledger.GetOraclePrices(ctx, []string{currency}, limit.Currency, sums[currency])
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to convert accumulated %s: %w", currency, err)
		}
		converted, ok := prices[currency]
		if !ok || converted.IsNegative() {
			s.log.Warn("No conversion rate for accumulated withdrawals, excluding from sum",
				"currency", currency,
				"quote", limit.Currency,
				"amount", sums[currency].String())
			continue
		}
		total = total.Add(converted)
	}
	return total, nil
}

// hasIndependentLimit reports whether a currency has its own
// (non-default) limit row in the tier's row set
func hasIndependentLimit(rows []entities.TransactionLimit, currency string) bool {
	for i := range rows {
		if rows[i].LimitCurrency == currency {
			return true
		}
	}
	return false
}
