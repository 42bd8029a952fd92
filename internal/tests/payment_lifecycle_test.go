package tests

import (
	"context"
	"errors"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/service"
)

func newPaymentService(repo *MockPaymentRepository, locks *MockLockStore, checkout *MockCheckoutProvider) *service.PaymentService {
	if repo == nil {
		repo = NewMockPaymentRepository()
	}
	if locks == nil {
		locks = NewMockLockStore()
	}
	if checkout == nil {
		checkout = NewMockCheckoutProvider()
	}
	return service.NewPaymentService(repo, locks, checkout, service.NewNotificationService())
}

func cashCreateRequest(lineID string) service.CreatePaymentRequest {
	return service.CreatePaymentRequest{
		LineID:     lineID,
		CustomerID: "cust-1",
		Amount:     450000,
		Method:     domain.PaymentMethodCash,
	}
}

// ──────────────────────────────────────────────
// CREATE
// ──────────────────────────────────────────────

func TestCreatePayment_OpensPendingRecord(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	svc := newPaymentService(repo, nil, nil)

	payment, err := svc.Create(context.Background(), cashCreateRequest("line-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.ID == "" {
		t.Error("expected a generated payment ID")
	}
	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("expected PENDING, got %s", payment.Status)
	}
	if payment.CheckoutURL != "" {
		t.Errorf("cash payment must not carry a checkout URL, got %q", payment.CheckoutURL)
	}
	if repo.GetPayment(payment.ID) == nil {
		t.Error("payment was not persisted")
	}
}

func TestCreatePayment_BankTransferGetsCheckoutURL(t *testing.T) {
	t.Parallel()

	checkout := NewMockCheckoutProvider()
	svc := newPaymentService(nil, nil, checkout)

	req := cashCreateRequest("line-1")
	req.Method = domain.PaymentMethodBankTransfer

	payment, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.CheckoutURL != checkout.CheckoutURL {
		t.Errorf("expected checkout URL %q, got %q", checkout.CheckoutURL, payment.CheckoutURL)
	}
	if atomic.LoadInt32(&checkout.CallCount) != 1 {
		t.Errorf("expected 1 checkout call, got %d", checkout.CallCount)
	}
}

func TestCreatePayment_LatchRejectsConcurrentCreate(t *testing.T) {
	t.Parallel()

	locks := NewMockLockStore()
	svc := newPaymentService(nil, locks, nil)

	// Another request holds the latch for this line item.
	if _, err := locks.AcquirePaymentLock(context.Background(), "line-1", time.Minute); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Create(context.Background(), cashCreateRequest("line-1"))
	if !errors.Is(err, service.ErrPaymentInFlight) {
		t.Errorf("expected ErrPaymentInFlight, got %v", err)
	}
}

func TestCreatePayment_LatchReleasedAfterCreate(t *testing.T) {
	t.Parallel()

	locks := NewMockLockStore()
	repo := NewMockPaymentRepository()
	svc := newPaymentService(repo, locks, nil)

	first, err := svc.Create(context.Background(), cashCreateRequest("line-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The latch must be gone; the second attempt fails on the pending
	// record, not the latch.
	if _, err := svc.Create(context.Background(), cashCreateRequest("line-1")); !errors.Is(err, service.ErrPaymentAlreadyPending) {
		t.Errorf("expected ErrPaymentAlreadyPending, got %v", err)
	}
	if repo.GetPayment(first.ID).Status != domain.PaymentStatusPending {
		t.Error("first payment must stay pending")
	}
}

func TestCreatePayment_BlockedByPaidLine(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(&domain.Payment{
		ID:        "pay-1",
		LineID:    "line-1",
		Status:    domain.PaymentStatusPaid,
		CreatedAt: time.Now(),
	})
	svc := newPaymentService(repo, nil, nil)

	_, err := svc.Create(context.Background(), cashCreateRequest("line-1"))
	if !errors.Is(err, service.ErrLineAlreadyPaid) {
		t.Errorf("expected ErrLineAlreadyPaid, got %v", err)
	}
}

func TestCreatePayment_CancelledLineAllowsFreshCreate(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(&domain.Payment{
		ID:        "pay-1",
		LineID:    "line-1",
		Status:    domain.PaymentStatusCancelled,
		CreatedAt: time.Now(),
	})
	svc := newPaymentService(repo, nil, nil)

	// A cancelled current record does not block Create; it simply opens a
	// fresh one. Callers wanting supersession semantics use Retry.
	payment, err := svc.Create(context.Background(), cashCreateRequest("line-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.ID == "pay-1" {
		t.Error("expected a new record")
	}
}

func TestCreatePayment_Validation(t *testing.T) {
	t.Parallel()

	svc := newPaymentService(nil, nil, nil)

	cases := []struct {
		name string
		req  service.CreatePaymentRequest
		want error
	}{
		{"missing line", service.CreatePaymentRequest{CustomerID: "c", Amount: 1, Method: domain.PaymentMethodCash}, service.ErrInvalidLineID},
		{"missing customer", service.CreatePaymentRequest{LineID: "l", Amount: 1, Method: domain.PaymentMethodCash}, service.ErrInvalidCustomerID},
		{"negative amount", service.CreatePaymentRequest{LineID: "l", CustomerID: "c", Amount: -1, Method: domain.PaymentMethodCash}, service.ErrInvalidPaymentAmount},
		{"bad method", service.CreatePaymentRequest{LineID: "l", CustomerID: "c", Amount: 1, Method: domain.PaymentMethod("CARD")}, service.ErrInvalidPaymentMethod},
	}

	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), tc.req); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestCreatePayment_ZeroAmountAllowed(t *testing.T) {
	t.Parallel()

	svc := newPaymentService(nil, nil, nil)

	req := cashCreateRequest("line-1")
	req.Amount = 0

	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Errorf("fully discounted line must still open a payment: %v", err)
	}
}

// ──────────────────────────────────────────────
// CONFIRM / CANCEL
// ──────────────────────────────────────────────

func TestConfirm_CashPendingToPaid(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	svc := newPaymentService(repo, nil, nil)

	payment, err := svc.Create(context.Background(), cashCreateRequest("line-1"))
	if err != nil {
		t.Fatal(err)
	}

	confirmed, err := svc.Confirm(context.Background(), payment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.Status != domain.PaymentStatusPaid {
		t.Errorf("expected PAID, got %s", confirmed.Status)
	}
	if repo.GetPayment(payment.ID).Status != domain.PaymentStatusPaid {
		t.Error("status not persisted")
	}
}

func TestConfirm_AlreadyPaidIsNoop(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(&domain.Payment{
		ID:     "pay-1",
		LineID: "line-1",
		Method: domain.PaymentMethodCash,
		Status: domain.PaymentStatusPaid,
	})
	svc := newPaymentService(repo, nil, nil)

	confirmed, err := svc.Confirm(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("confirm on paid must be idempotent: %v", err)
	}
	if confirmed.Status != domain.PaymentStatusPaid {
		t.Errorf("expected PAID, got %s", confirmed.Status)
	}
	if atomic.LoadInt32(&repo.UpdateStatusCallCount) != 0 {
		t.Error("no-op confirm must not write")
	}
}

func TestConfirm_CancelledIsRejected(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(&domain.Payment{
		ID:     "pay-1",
		Method: domain.PaymentMethodCash,
		Status: domain.PaymentStatusCancelled,
	})
	svc := newPaymentService(repo, nil, nil)

	if _, err := svc.Confirm(context.Background(), "pay-1"); !errors.Is(err, service.ErrPaymentCancelled) {
		t.Errorf("expected ErrPaymentCancelled, got %v", err)
	}
}

func TestConfirm_BankTransferIsRejected(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(&domain.Payment{
		ID:     "pay-1",
		Method: domain.PaymentMethodBankTransfer,
		Status: domain.PaymentStatusPending,
	})
	svc := newPaymentService(repo, nil, nil)

	if _, err := svc.Confirm(context.Background(), "pay-1"); !errors.Is(err, service.ErrConfirmRequiresCash) {
		t.Errorf("expected ErrConfirmRequiresCash, got %v", err)
	}
}

func TestMarkCancelled_PendingToCancelled(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(&domain.Payment{
		ID:     "pay-1",
		Method: domain.PaymentMethodBankTransfer,
		Status: domain.PaymentStatusPending,
	})
	svc := newPaymentService(repo, nil, nil)

	cancelled, err := svc.MarkCancelled(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != domain.PaymentStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
}

func TestMarkCancelled_AlreadyCancelledIsNoop(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(&domain.Payment{
		ID:     "pay-1",
		Status: domain.PaymentStatusCancelled,
	})
	svc := newPaymentService(repo, nil, nil)

	if _, err := svc.MarkCancelled(context.Background(), "pay-1"); err != nil {
		t.Errorf("cancel on cancelled must be idempotent: %v", err)
	}
	if atomic.LoadInt32(&repo.UpdateStatusCallCount) != 0 {
		t.Error("no-op cancel must not write")
	}
}

func TestMarkCancelled_PaidIsRejected(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(&domain.Payment{
		ID:     "pay-1",
		Status: domain.PaymentStatusPaid,
	})
	svc := newPaymentService(repo, nil, nil)

	if _, err := svc.MarkCancelled(context.Background(), "pay-1"); !errors.Is(err, service.ErrPaymentAlreadyPaid) {
		t.Errorf("expected ErrPaymentAlreadyPaid, got %v", err)
	}
}

// ──────────────────────────────────────────────
// RETRY
// ──────────────────────────────────────────────

func TestRetry_SupersedesCancelledRecord(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(&domain.Payment{
		ID:        "pay-1",
		LineID:    "line-1",
		Status:    domain.PaymentStatusCancelled,
		CreatedAt: time.Now().Add(-time.Minute),
	})
	svc := newPaymentService(repo, nil, nil)

	retried, err := svc.Retry(context.Background(), service.RetryPaymentRequest{
		LineID:     "line-1",
		CustomerID: "cust-1",
		Amount:     450000,
		Method:     domain.PaymentMethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if retried.ID == "pay-1" {
		t.Error("retry must open a brand-new record")
	}
	if retried.Status != domain.PaymentStatusPending {
		t.Errorf("expected PENDING, got %s", retried.Status)
	}

	original := repo.GetPayment("pay-1")
	if original.Status != domain.PaymentStatusCancelled {
		t.Errorf("original must keep CANCELLED, got %s", original.Status)
	}
	if !original.Superseded {
		t.Error("original must be marked superseded")
	}

	// The fresh record is now the current one for the line item.
	current, err := svc.GetCurrentPayment(context.Background(), "line-1")
	if err != nil {
		t.Fatal(err)
	}
	if current == nil || current.ID != retried.ID {
		t.Error("current payment must be the retried record")
	}
}

func TestRetry_ForceCashOverridesMethod(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(&domain.Payment{
		ID:        "pay-1",
		LineID:    "line-1",
		Status:    domain.PaymentStatusCancelled,
		CreatedAt: time.Now().Add(-time.Minute),
	})
	checkout := NewMockCheckoutProvider()
	svc := newPaymentService(repo, nil, checkout)

	retried, err := svc.Retry(context.Background(), service.RetryPaymentRequest{
		LineID:     "line-1",
		CustomerID: "cust-1",
		Amount:     450000,
		Method:     domain.PaymentMethodBankTransfer,
		ForceCash:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if retried.Method != domain.PaymentMethodCash {
		t.Errorf("expected CASH, got %s", retried.Method)
	}
	if atomic.LoadInt32(&checkout.CallCount) != 0 {
		t.Error("forced cash must not open a checkout")
	}
}

func TestRetry_RequiresCancelledCurrent(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(&domain.Payment{
		ID:        "pay-1",
		LineID:    "line-1",
		Status:    domain.PaymentStatusPending,
		CreatedAt: time.Now(),
	})
	svc := newPaymentService(repo, nil, nil)

	_, err := svc.Retry(context.Background(), service.RetryPaymentRequest{
		LineID:     "line-1",
		CustomerID: "cust-1",
		Amount:     450000,
		Method:     domain.PaymentMethodCash,
	})
	if !errors.Is(err, service.ErrRetryRequiresCancelled) {
		t.Errorf("expected ErrRetryRequiresCancelled, got %v", err)
	}
}

// ──────────────────────────────────────────────
// CANCELLATION DETECTION
// ──────────────────────────────────────────────

func TestDetectCancellation_Outcomes(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(&domain.Payment{
		ID:        "pay-pending",
		LineID:    "line-1",
		Status:    domain.PaymentStatusPending,
		CreatedAt: time.Now(),
	})
	repo.AddPayment(&domain.Payment{
		ID:        "pay-paid",
		LineID:    "line-2",
		Status:    domain.PaymentStatusPaid,
		CreatedAt: time.Now(),
	})
	repo.AddPayment(&domain.Payment{
		ID:        "pay-cancelled",
		LineID:    "line-3",
		Status:    domain.PaymentStatusCancelled,
		CreatedAt: time.Now(),
	})
	svc := newPaymentService(repo, nil, nil)

	cases := []struct {
		name   string
		params url.Values
		want   service.CancellationOutcome
	}{
		{"no flag", url.Values{"payment_id": {"pay-pending"}}, service.CancellationNone},
		{"flag with pending payment", url.Values{"cancel": {"true"}, "payment_id": {"pay-pending"}}, service.CancellationConfirmed},
		{"status variant spelling", url.Values{"status": {"CANCELED"}, "payment_id": {"pay-pending"}}, service.CancellationConfirmed},
		{"duplicate callback on cancelled", url.Values{"cancel": {"1"}, "payment_id": {"pay-cancelled"}}, service.CancellationConfirmed},
		{"flag with unknown payment", url.Values{"cancel": {"true"}, "payment_id": {"nope"}}, service.CancellationUnresolvable},
		{"flag without correlation id", url.Values{"cancel": {"true"}}, service.CancellationUnresolvable},
		{"flag against paid payment", url.Values{"cancel": {"yes"}, "payment_id": {"pay-paid"}}, service.CancellationUnresolvable},
		{"correlate by line item", url.Values{"cancel": {"true"}, "line_id": {"line-1"}}, service.CancellationConfirmed},
	}

	for _, tc := range cases {
		outcome, _, err := svc.DetectCancellation(context.Background(), tc.params)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}
		if outcome != tc.want {
			t.Errorf("%s: expected outcome %v, got %v", tc.name, tc.want, outcome)
		}
	}
}

func TestDetectCancellation_HasNoSideEffects(t *testing.T) {
	t.Parallel()

	repo := NewMockPaymentRepository()
	repo.AddPayment(&domain.Payment{
		ID:        "pay-1",
		LineID:    "line-1",
		Status:    domain.PaymentStatusPending,
		CreatedAt: time.Now(),
	})
	svc := newPaymentService(repo, nil, nil)

	params := url.Values{"cancel": {"true"}, "payment_id": {"pay-1"}}
	outcome, payment, err := svc.DetectCancellation(context.Background(), params)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != service.CancellationConfirmed {
		t.Fatalf("expected confirmed outcome, got %v", outcome)
	}
	if payment == nil || payment.ID != "pay-1" {
		t.Fatal("expected the correlated payment")
	}

	// Detection only classifies; the record stays pending until the caller
	// applies MarkCancelled.
	if repo.GetPayment("pay-1").Status != domain.PaymentStatusPending {
		t.Error("detection must not mutate the record")
	}
	if atomic.LoadInt32(&repo.UpdateStatusCallCount) != 0 {
		t.Error("detection must not write")
	}
}

// ──────────────────────────────────────────────
// VALIDATION HELPERS
// ──────────────────────────────────────────────

func TestValidatePaymentMethod(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw     string
		want    domain.PaymentMethod
		wantErr bool
	}{
		{"", domain.PaymentMethodCash, false}, // default
		{"cash", domain.PaymentMethodCash, false},
		{"BANK_TRANSFER", domain.PaymentMethodBankTransfer, false},
		{"bank_transfer", domain.PaymentMethodBankTransfer, false},
		{"card", "", true},
	}

	for _, tc := range cases {
		got, err := service.ValidatePaymentMethod(tc.raw)
		if tc.wantErr {
			if !errors.Is(err, service.ErrInvalidPaymentMethod) {
				t.Errorf("%q: expected ErrInvalidPaymentMethod, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %s, got %s", tc.raw, tc.want, got)
		}
	}
}

func TestValidateMembershipTier(t *testing.T) {
	t.Parallel()

	if tier, err := service.ValidateMembershipTier(""); err != nil || tier != domain.TierNone {
		t.Errorf("empty tier: expected NONE, got %s (%v)", tier, err)
	}
	if tier, err := service.ValidateMembershipTier("gold"); err != nil || tier != domain.TierGold {
		t.Errorf("gold: expected GOLD, got %s (%v)", tier, err)
	}
	if _, err := service.ValidateMembershipTier("DIAMOND"); !errors.Is(err, service.ErrInvalidMembershipTier) {
		t.Errorf("expected ErrInvalidMembershipTier, got %v", err)
	}
}
