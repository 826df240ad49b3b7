package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/prasdika/fieldbooking/internal/core/domain"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, user_id, amount, method, status, external_transaction_id, expires_at, created_at`

func (r *PaymentRepository) GetByExternalID(ctx context.Context, externalTransactionID string) (*domain.Payment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE external_transaction_id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, externalTransactionID), "transaction "+externalTransactionID)
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*domain.Payment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, bookingID), "payment for booking "+bookingID.String())
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, paymentID uuid.UUID, status domain.PaymentStatus) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, paymentID)
	if err != nil {
		return mapStoreError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return mapStoreError(err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: payment %s", domain.ErrResourceNotFound, paymentID)
	}

	return nil
}

func (r *PaymentRepository) scanOne(row *sql.Row, what string) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.UserID,
		&p.Amount,
		&p.Method,
		&p.Status,
		&p.ExternalTransactionID,
		&p.ExpiresAt,
		&p.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", domain.ErrResourceNotFound, what)
		}
		return nil, mapStoreError(err)
	}

	return &p, nil
}
