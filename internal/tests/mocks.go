package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/redis"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *payment
	m.payments[payment.ID] = &stored
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetCurrentByLineID(ctx context.Context, lineID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var current *domain.Payment
	for _, p := range m.payments {
		if p.LineID != lineID || p.Superseded {
			continue
		}
		if current == nil || p.CreatedAt.After(current.CreatedAt) {
			current = p
		}
	}
	if current == nil {
		return nil, nil
	}
	copy := *current
	return &copy, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.Status = status
	return nil
}

func (m *MockPaymentRepository) MarkSuperseded(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.Superseded = true
	return nil
}

// GetPayment returns the stored payment for test assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

// CountPayments returns the number of stored payments.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of the payment creation latch.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquirePaymentLock(ctx context.Context, lineID string, ttl time.Duration) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[lineID] {
		return false, nil
	}
	m.locks[lineID] = true
	return true, nil
}

func (m *MockLockStore) ReleasePaymentLock(ctx context.Context, lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, lineID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK CHECKOUT PROVIDER
// ──────────────────────────────────────────────

// MockCheckoutProvider is a mock implementation of CheckoutProvider.
type MockCheckoutProvider struct {
	CheckoutURL   string
	CheckoutError error

	CallCount int32
}

// NewMockCheckoutProvider creates a new mock checkout provider.
func NewMockCheckoutProvider() *MockCheckoutProvider {
	return &MockCheckoutProvider{CheckoutURL: "https://pay.example.com/checkout/abc"}
}

func (m *MockCheckoutProvider) CreateCheckout(ctx context.Context, payment *domain.Payment) (string, error) {
	atomic.AddInt32(&m.CallCount, 1)
	if m.CheckoutError != nil {
		return "", m.CheckoutError
	}
	return m.CheckoutURL, nil
}

// ──────────────────────────────────────────────
// FAKE GEO COLLABORATORS
// ──────────────────────────────────────────────

// FakeResolver is a canned implementation of AddressResolver.
type FakeResolver struct {
	Coords domain.Coordinates
	Err    error
}

func (f *FakeResolver) Resolve(ctx context.Context, address string) (domain.Coordinates, error) {
	if f.Err != nil {
		return domain.Coordinates{}, f.Err
	}
	return f.Coords, nil
}

// FakeEstimator is a canned implementation of DistanceEstimator.
type FakeEstimator struct {
	Km float64
}

func (f *FakeEstimator) Estimate(ctx context.Context, origin, destination domain.Coordinates) float64 {
	return f.Km
}

// FakeBranchStore is a canned implementation of BranchStoreInterface.
type FakeBranchStore struct {
	Branch *redis.Branch
	Err    error
}

func (f *FakeBranchStore) AddBranch(ctx context.Context, label string, coords domain.Coordinates) error {
	return nil
}

func (f *FakeBranchStore) NearestBranch(ctx context.Context, point domain.Coordinates) (*redis.Branch, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Branch, nil
}

func (f *FakeBranchStore) RemoveBranch(ctx context.Context, label string) error {
	return nil
}
