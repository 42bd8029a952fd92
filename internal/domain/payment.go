package domain

import "time"

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// PaymentMethod represents how a payment is settled.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// Payment represents a single payment attempt for one appointment line item.
//
// PAID and CANCELLED are terminal. A retry never resurrects a cancelled
// payment; it supersedes it with a new record so the old one stays for audit.
type Payment struct {
	ID          string
	LineID      string // appointment line item owning this payment
	CustomerID  string
	Method      PaymentMethod
	Status      PaymentStatus
	Amount      int64
	VoucherCode string
	CheckoutURL string // set only for BANK_TRANSFER while pending
	Superseded  bool
	CreatedAt   time.Time
}
