package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
	"github.com/vaultex/vaultex_service/pkg/logger"
)

type stubPolicy struct {
	snap *entities.WalletPolicy
}

func (s *stubPolicy) Snapshot() *entities.WalletPolicy { return s.snap }

// fakeLedger implements Ledger with overridable function fields and
// records the history queries it receives
type fakeLedger struct {
	mu sync.Mutex

	balance           *entities.Balance
	withdrawalsFn     func(query entities.WithdrawalHistoryQuery) (*entities.WithdrawalPage, error)
	oracleFn          func(assets []string, quote string, amount decimal.Decimal) (map[string]decimal.Decimal, error)
	performedFn       func(networkID int64, address, currency string, amount decimal.Decimal) (*entities.LedgerTransaction, error)
	historyQueries    []entities.WithdrawalHistoryQuery
	oracleCalls       [][]string
	performedRequests []decimal.Decimal
}

func (f *fakeLedger) GetUserBalance(ctx context.Context, networkID int64) (*entities.Balance, error) {
	if f.balance != nil {
		return f.balance, nil
	}
	return &entities.Balance{UserID: networkID, Available: map[string]decimal.Decimal{}}, nil
}

func (f *fakeLedger) GetUserWithdrawals(ctx context.Context, networkID int64, query entities.WithdrawalHistoryQuery) (*entities.WithdrawalPage, error) {
	f.mu.Lock()
	f.historyQueries = append(f.historyQueries, query)
	f.mu.Unlock()
	if f.withdrawalsFn != nil {
		return f.withdrawalsFn(query)
	}
	return &entities.WithdrawalPage{}, nil
}

func (f *fakeLedger) GetUserDeposits(ctx context.Context, networkID int64, query entities.WithdrawalHistoryQuery) (*entities.WithdrawalPage, error) {
	return &entities.WithdrawalPage{}, nil
}

func (f *fakeLedger) PerformWithdrawal(ctx context.Context, networkID int64, address, currency string, amount decimal.Decimal, network string, fee *decimal.Decimal, feeCoin string) (*entities.LedgerTransaction, error) {
	f.mu.Lock()
	f.performedRequests = append(f.performedRequests, amount)
	f.mu.Unlock()
	if f.performedFn != nil {
		return f.performedFn(networkID, address, currency, amount)
	}
	return &entities.LedgerTransaction{UserID: networkID, Currency: currency, Amount: amount, Status: "pending"}, nil
}

func (f *fakeLedger) CancelWithdrawal(ctx context.Context, networkID, withdrawalID int64) (*entities.LedgerTransaction, error) {
	return &entities.LedgerTransaction{ID: withdrawalID, Dismissed: true}, nil
}

func (f *fakeLedger) TransferAsset(ctx context.Context, senderNetworkID, receiverNetworkID int64, currency string, amount decimal.Decimal, opts entities.TransferOptions) (*entities.LedgerTransaction, error) {
	return &entities.LedgerTransaction{Currency: currency, Amount: amount}, nil
}

func (f *fakeLedger) MintAsset(ctx context.Context, networkID int64, currency string, amount decimal.Decimal, opts entities.MintBurnOptions) (*entities.LedgerTransaction, error) {
	return &entities.LedgerTransaction{UserID: networkID, Currency: currency, Amount: amount}, nil
}

func (f *fakeLedger) BurnAsset(ctx context.Context, networkID int64, currency string, amount decimal.Decimal, opts entities.MintBurnOptions) (*entities.LedgerTransaction, error) {
	return &entities.LedgerTransaction{UserID: networkID, Currency: currency, Amount: amount}, nil
}

func (f *fakeLedger) UpdatePendingMint(ctx context.Context, transactionID string, opts entities.PendingUpdateOptions) (*entities.LedgerTransaction, error) {
	return &entities.LedgerTransaction{TransactionID: transactionID}, nil
}

func (f *fakeLedger) UpdatePendingBurn(ctx context.Context, transactionID string, opts entities.PendingUpdateOptions) (*entities.LedgerTransaction, error) {
	return &entities.LedgerTransaction{TransactionID: transactionID}, nil
}

func (f *fakeLedger) GetOraclePrices(ctx context.Context, assets []string, quote string, amount decimal.Decimal) (map[string]decimal.Decimal, error) {
	f.mu.Lock()
	f.oracleCalls = append(f.oracleCalls, assets)
	f.mu.Unlock()
	if f.oracleFn != nil {
		return f.oracleFn(assets, quote, amount)
	}
	return map[string]decimal.Decimal{}, nil
}

func (f *fakeLedger) CheckTransaction(ctx context.Context, currency, transactionID, address, network string, isTestnet bool) (map[string]interface{}, error) {
	return map[string]interface{}{"status": "success"}, nil
}

type fakeUserStore struct {
	users map[int64]*entities.User
}

func (f *fakeUserStore) GetByKitID(ctx context.Context, id int64) (*entities.User, error) {
	return f.users[id], nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) MapKitIDsToNetworkIDs(ctx context.Context, kitIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64)
	for _, id := range kitIDs {
		if u, ok := f.users[id]; ok && u.NetworkID != 0 {
			out[id] = u.NetworkID
		}
	}
	return out, nil
}

func (f *fakeUserStore) MapNetworkIDsToKitIDs(ctx context.Context, networkIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64)
	for _, nid := range networkIDs {
		for _, u := range f.users {
			if u.NetworkID == nid {
				out[nid] = u.ID
			}
		}
	}
	return out, nil
}

// memoryTokenStore is an in-process TokenStore with single-use take
// semantics matching the redis-backed implementation
type memoryTokenStore struct {
	mu     sync.Mutex
	values map[string]entities.WithdrawalRequest
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{values: make(map[string]entities.WithdrawalRequest)}
}

func (m *memoryTokenStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = *(value.(*entities.WithdrawalRequest))
	return nil
}

func (m *memoryTokenStore) Take(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return false, nil
	}
	delete(m.values, key)
	*(dest.(*entities.WithdrawalRequest)) = value
	return true, nil
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []WithdrawalEmail
	done chan struct{}
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{done: make(chan struct{}, 8)}
}

func (f *fakeEmailSender) SendWithdrawalRequestEmail(ctx context.Context, details WithdrawalEmail) error {
	f.mu.Lock()
	f.sent = append(f.sent, details)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeEmailSender) lastSent() (WithdrawalEmail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return WithdrawalEmail{}, false
	}
	return f.sent[len(f.sent)-1], true
}

type fakeOTP struct {
	err error
}

func (f *fakeOTP) VerifyCode(ctx context.Context, userID int64, code string) error {
	return f.err
}

type serviceFixture struct {
	service *Service
	ledger  *fakeLedger
	users   *fakeUserStore
	tokens  *memoryTokenStore
	email   *fakeEmailSender
	otp     *fakeOTP
	sleeps  *int
}

func newServiceFixture(snap *entities.WalletPolicy, opts ...Option) *serviceFixture {
	f := &serviceFixture{
		ledger: &fakeLedger{},
		users:  &fakeUserStore{users: make(map[int64]*entities.User)},
		tokens: newMemoryTokenStore(),
		email:  newFakeEmailSender(),
		otp:    &fakeOTP{},
		sleeps: new(int),
	}
	countingSleep := func(ctx context.Context, d time.Duration) error {
		(*f.sleeps)++
		return nil
	}
	allOpts := append([]Option{WithSleep(countingSleep)}, opts...)
	f.service = NewService(
		&stubPolicy{snap: snap},
		f.ledger,
		f.users,
		f.tokens,
		f.email,
		f.otp,
		logger.New("error", "test"),
		allOpts...,
	)
	return f
}
