package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, line_id, customer_id, method, status, amount, voucher_code, checkout_url, superseded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.LineID,
		payment.CustomerID,
		payment.Method,
		payment.Status,
		payment.Amount,
		payment.VoucherCode,
		payment.CheckoutURL,
		payment.Superseded,
		payment.CreatedAt,
	)

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `
		SELECT id, line_id, customer_id, method, status, amount, voucher_code, checkout_url, superseded, created_at
		FROM payments WHERE id = $1
	`

	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetCurrentByLineID retrieves the most recent non-superseded payment for a
// line item. Returns nil if none exists.
func (r *PaymentRepository) GetCurrentByLineID(ctx context.Context, lineID string) (*domain.Payment, error) {
	query := `
		SELECT id, line_id, customer_id, method, status, amount, voucher_code, checkout_url, superseded, created_at
		FROM payments
		WHERE line_id = $1 AND superseded = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`

	payment, err := r.scanOne(r.q.QueryRowContext(ctx, query, lineID))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return payment, err
}

// UpdateStatus updates the status of a payment.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	query := `UPDATE payments SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// MarkSuperseded flags a payment as superseded by a retry.
func (r *PaymentRepository) MarkSuperseded(ctx context.Context, id string) error {
	query := `UPDATE payments SET superseded = TRUE WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *PaymentRepository) scanOne(row *sql.Row) (*domain.Payment, error) {
	var payment domain.Payment
	err := row.Scan(
		&payment.ID,
		&payment.LineID,
		&payment.CustomerID,
		&payment.Method,
		&payment.Status,
		&payment.Amount,
		&payment.VoucherCode,
		&payment.CheckoutURL,
		&payment.Superseded,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &payment, nil
}
