package repository

import (
	"context"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetCurrentByLineID retrieves the current (most recent, not superseded)
	// payment for an appointment line item. Returns nil if none exists.
	GetCurrentByLineID(ctx context.Context, lineID string) (*domain.Payment, error)

	// UpdateStatus updates the status of a payment.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error

	// MarkSuperseded flags a payment as superseded by a retry. The record is
	// kept for audit; it just stops being the line item's current payment.
	MarkSuperseded(ctx context.Context, id string) error
}
