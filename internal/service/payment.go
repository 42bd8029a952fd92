package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/redis"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/repository"
)

// createLatchTTL bounds how long the per-line-item create latch is held if a
// caller dies before releasing it.
const createLatchTTL = 30 * time.Second

// CheckoutProvider opens a redirect checkout for bank-transfer payments.
type CheckoutProvider interface {
	CreateCheckout(ctx context.Context, payment *domain.Payment) (string, error)
}

// PaymentService drives the payment lifecycle for appointment line items.
type PaymentService struct {
	paymentRepo         repository.PaymentRepository
	lockStore           redis.LockStoreInterface
	checkout            CheckoutProvider
	notificationService *NotificationService
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	lockStore redis.LockStoreInterface,
	checkout CheckoutProvider,
	notificationService *NotificationService,
) *PaymentService {
	return &PaymentService{
		paymentRepo:         paymentRepo,
		lockStore:           lockStore,
		checkout:            checkout,
		notificationService: notificationService,
	}
}

// CreatePaymentRequest contains the parameters for creating a payment.
type CreatePaymentRequest struct {
	LineID      string
	CustomerID  string
	Amount      int64
	Method      domain.PaymentMethod
	VoucherCode string
}

// Create opens a new pending payment for a line item. A per-line-item latch
// guards against a double-click producing two pending records. For bank
// transfer the checkout URL is attached; the caller's responsibility ends at
// redirecting the customer there.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*domain.Payment, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	locked, err := s.lockStore.AcquirePaymentLock(ctx, req.LineID, createLatchTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrPaymentInFlight
	}
	defer func() {
		_ = s.lockStore.ReleasePaymentLock(ctx, req.LineID)
	}()

	current, err := s.paymentRepo.GetCurrentByLineID(ctx, req.LineID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		switch current.Status {
		case domain.PaymentStatusPending:
			return nil, ErrPaymentAlreadyPending
		case domain.PaymentStatusPaid:
			return nil, ErrLineAlreadyPaid
		}
	}

	return s.openPayment(ctx, req)
}

// openPayment creates and persists a pending record. Callers hold the latch
// and have verified there is no live current record.
func (s *PaymentService) openPayment(ctx context.Context, req CreatePaymentRequest) (*domain.Payment, error) {
	payment := &domain.Payment{
		ID:          uuid.New().String(),
		LineID:      req.LineID,
		CustomerID:  req.CustomerID,
		Method:      req.Method,
		Status:      domain.PaymentStatusPending,
		Amount:      req.Amount,
		VoucherCode: req.VoucherCode,
		CreatedAt:   time.Now(),
	}

	if req.Method == domain.PaymentMethodBankTransfer {
		checkoutURL, err := s.checkout.CreateCheckout(ctx, payment)
		if err != nil {
			return nil, err
		}
		payment.CheckoutURL = checkoutURL
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// Confirm transitions a pending cash payment to paid. Confirming an
// already-paid record is a no-op that returns the record, because redirect
// callbacks and double-taps can fire more than once.
func (s *PaymentService) Confirm(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	switch payment.Status {
	case domain.PaymentStatusPaid:
		return payment, nil // Idempotent
	case domain.PaymentStatusCancelled:
		return nil, ErrPaymentCancelled
	}

	if payment.Method != domain.PaymentMethodCash {
		return nil, ErrConfirmRequiresCash
	}

	if err := s.paymentRepo.UpdateStatus(ctx, paymentID, domain.PaymentStatusPaid); err != nil {
		return nil, err
	}
	payment.Status = domain.PaymentStatusPaid

	if s.notificationService != nil {
		_ = s.notificationService.NotifyPaymentConfirmed(ctx, payment)
	}

	return payment, nil
}

// MarkCancelled transitions a pending payment to cancelled. Cancelling an
// already-cancelled record is a no-op that returns the record.
func (s *PaymentService) MarkCancelled(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	switch payment.Status {
	case domain.PaymentStatusCancelled:
		return payment, nil // Idempotent
	case domain.PaymentStatusPaid:
		return nil, ErrPaymentAlreadyPaid
	}

	if err := s.paymentRepo.UpdateStatus(ctx, paymentID, domain.PaymentStatusCancelled); err != nil {
		return nil, err
	}
	payment.Status = domain.PaymentStatusCancelled

	if s.notificationService != nil {
		_ = s.notificationService.NotifyPaymentCancelled(ctx, payment)
	}

	return payment, nil
}

// CancellationOutcome classifies a redirect return.
type CancellationOutcome int

const (
	// CancellationNone means the return parameters do not signal cancellation.
	CancellationNone CancellationOutcome = iota

	// CancellationConfirmed means the customer cancelled and the payment was resolved.
	CancellationConfirmed

	// CancellationUnresolvable means a cancellation was signalled but could
	// not be correlated to a live payment. Callers must surface this
	// distinctly; it is neither a success nor a confirmed cancellation.
	CancellationUnresolvable
)

// DetectCancellation inspects the query parameters of a bank-transfer
// redirect return. Cancellation requires both a cancel/status flag and a
// correlation id resolving to a known payment. It has no side effects; the
// caller applies MarkCancelled on a confirmed outcome.
func (s *PaymentService) DetectCancellation(ctx context.Context, params url.Values) (CancellationOutcome, *domain.Payment, error) {
	if !cancellationFlagged(params) {
		return CancellationNone, nil, nil
	}

	payment, err := s.correlatePayment(ctx, params)
	if err != nil {
		return CancellationUnresolvable, nil, err
	}
	if payment == nil {
		return CancellationUnresolvable, nil, nil
	}

	switch payment.Status {
	case domain.PaymentStatusPending, domain.PaymentStatusCancelled:
		// CANCELLED covers duplicate callback delivery.
		return CancellationConfirmed, payment, nil
	default:
		// A paid record cannot be cancelled by a return URL.
		return CancellationUnresolvable, payment, nil
	}
}

// cancellationFlagged reports whether the return parameters carry a
// user-initiated cancellation signal.
func cancellationFlagged(params url.Values) bool {
	switch strings.ToLower(params.Get("cancel")) {
	case "true", "1", "yes":
		return true
	}
	switch strings.ToUpper(params.Get("status")) {
	case "CANCELLED", "CANCELED":
		return true
	}
	return false
}

// correlatePayment resolves the payment referenced by the return parameters,
// by payment id first, then by line item. Returns nil when nothing matches.
func (s *PaymentService) correlatePayment(ctx context.Context, params url.Values) (*domain.Payment, error) {
	if paymentID := params.Get("payment_id"); paymentID != "" {
		payment, err := s.paymentRepo.GetByID(ctx, paymentID)
		if err == repository.ErrNotFound {
			return nil, nil
		}
		return payment, err
	}

	if lineID := params.Get("line_id"); lineID != "" {
		return s.paymentRepo.GetCurrentByLineID(ctx, lineID)
	}

	return nil, nil
}

// RetryPaymentRequest contains the parameters for retrying after cancellation.
type RetryPaymentRequest struct {
	LineID      string
	CustomerID  string
	Amount      int64
	Method      domain.PaymentMethod
	VoucherCode string

	// ForceCash overrides the method with cash. Home-visit cancellation
	// recovery uses it to avoid sending the customer back into a redirect loop.
	ForceCash bool
}

// Retry supersedes a cancelled payment with a brand-new record. The cancelled
// record keeps its status and identity for audit.
func (s *PaymentService) Retry(ctx context.Context, req RetryPaymentRequest) (*domain.Payment, error) {
	method := req.Method
	if req.ForceCash {
		method = domain.PaymentMethodCash
	}

	createReq := CreatePaymentRequest{
		LineID:      req.LineID,
		CustomerID:  req.CustomerID,
		Amount:      req.Amount,
		Method:      method,
		VoucherCode: req.VoucherCode,
	}
	if err := validateCreateRequest(createReq); err != nil {
		return nil, err
	}

	locked, err := s.lockStore.AcquirePaymentLock(ctx, req.LineID, createLatchTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrPaymentInFlight
	}
	defer func() {
		_ = s.lockStore.ReleasePaymentLock(ctx, req.LineID)
	}()

	current, err := s.paymentRepo.GetCurrentByLineID(ctx, req.LineID)
	if err != nil {
		return nil, err
	}
	if current == nil || current.Status != domain.PaymentStatusCancelled {
		return nil, ErrRetryRequiresCancelled
	}

	if err := s.paymentRepo.MarkSuperseded(ctx, current.ID); err != nil {
		return nil, err
	}

	return s.openPayment(ctx, createReq)
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	return s.paymentRepo.GetByID(ctx, paymentID)
}

// GetCurrentPayment retrieves the current payment for a line item, or nil.
func (s *PaymentService) GetCurrentPayment(ctx context.Context, lineID string) (*domain.Payment, error) {
	if lineID == "" {
		return nil, ErrInvalidLineID
	}

	return s.paymentRepo.GetCurrentByLineID(ctx, lineID)
}

func validateCreateRequest(req CreatePaymentRequest) error {
	if req.LineID == "" {
		return ErrInvalidLineID
	}
	if req.CustomerID == "" {
		return ErrInvalidCustomerID
	}
	// Zero is allowed: discounts can fully cover a line item.
	if req.Amount < 0 {
		return ErrInvalidPaymentAmount
	}
	if req.Method != domain.PaymentMethodCash && req.Method != domain.PaymentMethodBankTransfer {
		return ErrInvalidPaymentMethod
	}
	return nil
}
