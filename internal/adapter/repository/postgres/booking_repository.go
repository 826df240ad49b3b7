package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prasdika/fieldbooking/internal/core/domain"
)

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateIfSlotFree re-validates availability and inserts the booking and
// its payment in one transaction. The field row is locked first so two
// concurrent requests for the same field serialize before the probe and
// the second one always sees the first one's committed insert; the
// schema's exclusion constraint backstops anything the probe misses.
func (r *BookingRepository) CreateIfSlotFree(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapStoreError(err)
	}

	defer tx.Rollback()

	var lockedField uuid.UUID
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM fields WHERE id = $1 FOR UPDATE`, booking.FieldID).Scan(&lockedField)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: field %s", domain.ErrResourceNotFound, booking.FieldID)
		}
		return mapStoreError(err)
	}

	probe := `
	SELECT start_time, end_time FROM bookings
	WHERE field_id = $1
	  AND booking_date = $2
	  AND (status = 'confirmed' OR (status = 'pending' AND payment_deadline > $3))
	  AND start_time < $4
	  AND end_time > $5
	ORDER BY start_time
	FOR UPDATE
	`

	rows, err := tx.QueryContext(ctx, probe,
		booking.FieldID, booking.Date, booking.CreatedAt, booking.Slot.End, booking.Slot.Start)
	if err != nil {
		return mapStoreError(err)
	}

	var conflicts []domain.Interval
	for rows.Next() {
		var iv domain.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			rows.Close()
			return mapStoreError(err)
		}
		conflicts = append(conflicts, iv)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return mapStoreError(err)
	}
	rows.Close()

	if len(conflicts) > 0 {
		return &domain.SlotConflictError{FieldID: booking.FieldID, Conflicts: conflicts}
	}

	insertBooking := `
	INSERT INTO bookings (id, user_id, field_id, booking_date, start_time, end_time, status, payment_id, created_at, payment_deadline)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.ExecContext(ctx, insertBooking,
		booking.ID, booking.UserID, booking.FieldID, booking.Date,
		booking.Slot.Start, booking.Slot.End, booking.Status,
		booking.PaymentID, booking.CreatedAt, booking.PaymentDeadline)
	if err != nil {
		if isOverlapViolation(err) {
			return &domain.SlotConflictError{FieldID: booking.FieldID}
		}
		return mapStoreError(fmt.Errorf("failed to insert booking: %w", err))
	}

	insertPayment := `
	INSERT INTO payments (id, booking_id, user_id, amount, method, status, external_transaction_id, expires_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = tx.ExecContext(ctx, insertPayment,
		payment.ID, payment.BookingID, payment.UserID, payment.Amount,
		payment.Method, payment.Status, payment.ExternalTransactionID,
		payment.ExpiresAt, payment.CreatedAt)
	if err != nil {
		return mapStoreError(fmt.Errorf("failed to insert payment: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return mapStoreError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
	SELECT id, user_id, field_id, booking_date, start_time, end_time, status, payment_id, cancel_reason, created_at, payment_deadline
	FROM bookings
	WHERE id = $1
	`

	var b domain.Booking
	var paymentID sql.NullString
	var cancelReason sql.NullString

	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&b.ID,
		&b.UserID,
		&b.FieldID,
		&b.Date,
		&b.Slot.Start,
		&b.Slot.End,
		&b.Status,
		&paymentID,
		&cancelReason,
		&b.CreatedAt,
		&b.PaymentDeadline,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: booking %s", domain.ErrResourceNotFound, bookingID)
		}
		return nil, mapStoreError(err)
	}

	if paymentID.Valid && paymentID.String != "" {
		pid, err := uuid.Parse(paymentID.String)
		if err == nil {
			b.PaymentID = &pid
		}
	}
	if cancelReason.Valid {
		b.CancelReason = cancelReason.String
	}

	return &b, nil
}

func (r *BookingRepository) UpdateStatusFrom(ctx context.Context, bookingID uuid.UUID, from, to domain.BookingStatus) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
	UPDATE bookings
	SET status = $1, updated_at = NOW()
	WHERE id = $2 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, to, bookingID, from)
	if err != nil {
		// Confirming over a slot that was taken in the meantime trips
		// the schema's exclusion constraint.
		if isOverlapViolation(err) {
			return false, fmt.Errorf("%w: booking %s overlaps an active booking", domain.ErrSlotConflict, bookingID)
		}
		return false, mapStoreError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, mapStoreError(err)
	}

	return affected > 0, nil
}

func (r *BookingRepository) CancelFrom(ctx context.Context, bookingID uuid.UUID, from domain.BookingStatus, reason string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
	UPDATE bookings
	SET status = $1, cancel_reason = $2, updated_at = NOW()
	WHERE id = $3 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query, domain.BookingCancelled, reason, bookingID, from)
	if err != nil {
		return false, mapStoreError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, mapStoreError(err)
	}

	return affected > 0, nil
}

func (r *BookingRepository) ListActiveByFieldDate(ctx context.Context, fieldID uuid.UUID, date time.Time, now time.Time) ([]domain.Booking, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
	SELECT id, user_id, field_id, booking_date, start_time, end_time, status, created_at, payment_deadline
	FROM bookings
	WHERE field_id = $1
	  AND booking_date = $2
	  AND (status = 'confirmed' OR (status = 'pending' AND payment_deadline > $3))
	ORDER BY start_time
	`

	rows, err := r.db.QueryContext(ctx, query, fieldID, date, now)
	if err != nil {
		return nil, mapStoreError(err)
	}

	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.FieldID,
			&b.Date,
			&b.Slot.Start,
			&b.Slot.End,
			&b.Status,
			&b.CreatedAt,
			&b.PaymentDeadline,
		); err != nil {
			return nil, mapStoreError(err)
		}

		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, mapStoreError(err)
	}

	return bookings, nil
}

func (r *BookingRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]domain.Booking, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
	SELECT id, user_id, field_id, booking_date, start_time, end_time, status, created_at, payment_deadline
	FROM bookings
	WHERE status = 'pending' AND payment_deadline <= $1
	ORDER BY payment_deadline
	LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, mapStoreError(err)
	}

	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.FieldID,
			&b.Date,
			&b.Slot.Start,
			&b.Slot.End,
			&b.Status,
			&b.CreatedAt,
			&b.PaymentDeadline,
		); err != nil {
			return nil, mapStoreError(err)
		}

		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, mapStoreError(err)
	}

	return bookings, nil
}
