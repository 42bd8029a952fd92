package service

import (
	"errors"
	"strings"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
)

var (
	// ErrInvalidLineID is returned when the appointment line id is empty.
	ErrInvalidLineID = errors.New("invalid line id")

	// ErrInvalidCustomerID is returned when the customer id is empty.
	ErrInvalidCustomerID = errors.New("invalid customer id")

	// ErrInvalidPaymentID is returned when the payment id is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidPaymentAmount is returned when the payment amount is not positive.
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	// ErrInvalidPaymentMethod is returned when the payment method is unknown.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidMembershipTier is returned when the membership tier is unknown.
	ErrInvalidMembershipTier = errors.New("invalid membership tier")

	// ErrInvalidUnitPrice is returned when the unit price is negative.
	ErrInvalidUnitPrice = errors.New("invalid unit price")

	// ErrInvalidQuantity is returned when the quantity is not positive.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidVoucherPercent is returned when the voucher percentage is outside 0..100.
	ErrInvalidVoucherPercent = errors.New("invalid voucher percent")

	// ErrPaymentInFlight is returned when a create is already in flight for the line item.
	ErrPaymentInFlight = errors.New("payment creation already in flight for this line item")

	// ErrPaymentAlreadyPending is returned when the line item already has a pending payment.
	ErrPaymentAlreadyPending = errors.New("line item already has a pending payment")

	// ErrLineAlreadyPaid is returned when the line item's current payment is paid.
	ErrLineAlreadyPaid = errors.New("line item is already paid")

	// ErrConfirmRequiresCash is returned when confirming a non-cash payment.
	ErrConfirmRequiresCash = errors.New("only cash payments can be confirmed directly")

	// ErrPaymentCancelled is returned when confirming a cancelled payment.
	ErrPaymentCancelled = errors.New("payment has been cancelled")

	// ErrPaymentAlreadyPaid is returned when cancelling a paid payment.
	ErrPaymentAlreadyPaid = errors.New("payment is already paid")

	// ErrRetryRequiresCancelled is returned when retrying a line item whose
	// current payment is not cancelled.
	ErrRetryRequiresCancelled = errors.New("retry is only allowed after cancellation")
)

// ValidatePaymentMethod parses a payment method string, defaulting to cash.
func ValidatePaymentMethod(method string) (domain.PaymentMethod, error) {
	switch strings.ToUpper(method) {
	case "", string(domain.PaymentMethodCash):
		return domain.PaymentMethodCash, nil
	case string(domain.PaymentMethodBankTransfer):
		return domain.PaymentMethodBankTransfer, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// ValidateMembershipTier parses a membership tier string, defaulting to none.
func ValidateMembershipTier(tier string) (domain.MembershipTier, error) {
	switch strings.ToUpper(tier) {
	case "", string(domain.TierNone):
		return domain.TierNone, nil
	case string(domain.TierBronze):
		return domain.TierBronze, nil
	case string(domain.TierSilver):
		return domain.TierSilver, nil
	case string(domain.TierGold):
		return domain.TierGold, nil
	default:
		return "", ErrInvalidMembershipTier
	}
}
