package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prasdika/fieldbooking/internal/core/domain"
)

type FieldRepository interface {
	GetByID(ctx context.Context, fieldID uuid.UUID) (*domain.Field, error)
}

type BookingRepository interface {
	// CreateIfSlotFree atomically re-checks availability and inserts the
	// booking together with its payment record. Returns
	// *domain.SlotConflictError when an active booking overlaps.
	CreateIfSlotFree(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error

	GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)

	// UpdateStatusFrom is a compare-and-set transition: it succeeds only
	// if the booking is still in the expected from status. Returns false
	// with a nil error when the guard did not match.
	UpdateStatusFrom(ctx context.Context, bookingID uuid.UUID, from, to domain.BookingStatus) (bool, error)

	// CancelFrom is UpdateStatusFrom specialised to cancellation so the
	// reason is persisted in the same statement.
	CancelFrom(ctx context.Context, bookingID uuid.UUID, from domain.BookingStatus, reason string) (bool, error)

	// ListActiveByFieldDate returns bookings that still hold a slot on
	// the given field and day: confirmed, or pending with a payment
	// deadline after now.
	ListActiveByFieldDate(ctx context.Context, fieldID uuid.UUID, date time.Time, now time.Time) ([]domain.Booking, error)

	// ListExpired returns pending bookings whose payment deadline has
	// elapsed, oldest first, capped at limit.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]domain.Booking, error)
}

type PaymentRepository interface {
	GetByExternalID(ctx context.Context, externalTransactionID string) (*domain.Payment, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, paymentID uuid.UUID, status domain.PaymentStatus) error
}
