package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/prasdika/fieldbooking/internal/core/domain"
	"github.com/prasdika/fieldbooking/internal/core/ports/mocks"
	"github.com/prasdika/fieldbooking/internal/core/services"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type reservationMocks struct {
	fields   *mocks.FieldRepository
	bookings *mocks.BookingRepository
	payments *mocks.PaymentRepository
	cache    *mocks.AvailabilityCache
	events   *mocks.EventPublisher
}

func newReservationService(t *testing.T, now time.Time, grace time.Duration) (*services.ReservationService, reservationMocks) {
	m := reservationMocks{
		fields:   mocks.NewFieldRepository(t),
		bookings: mocks.NewBookingRepository(t),
		payments: mocks.NewPaymentRepository(t),
		cache:    mocks.NewAvailabilityCache(t),
		events:   mocks.NewEventPublisher(t),
	}

	svc := services.NewReservationService(
		m.fields, m.bookings, m.payments, m.cache, m.events, testLogger, grace,
		services.WithReservationClock(func() time.Time { return now }),
	)

	return svc, m
}

func availableField(id uuid.UUID) *domain.Field {
	return &domain.Field{
		ID:       id,
		BranchID: uuid.New(),
		Name:     "Field A",
		Status:   domain.FieldAvailable,
	}
}

func TestCreateReservation_Success(t *testing.T) {
	now := time.Date(2025, 4, 30, 10, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	ctx := context.Background()
	fieldID := uuid.New()
	bookingDate := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	m.fields.On("GetByID", mock.Anything, fieldID).Return(availableField(fieldID), nil)
	m.bookings.On("CreateIfSlotFree", mock.Anything,
		mock.AnythingOfType("*domain.Booking"), mock.AnythingOfType("*domain.Payment")).Return(nil)
	m.cache.On("Invalidate", mock.Anything, fieldID, bookingDate).Return(nil)
	m.events.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventSlotReserved && e.Status == domain.BookingPending
	}), mock.Anything).Return(nil).Twice()

	resp, err := svc.CreateReservation(ctx, services.CreateReservationRequest{
		UserID:    uuid.New().String(),
		FieldID:   fieldID.String(),
		Date:      "2025-05-01",
		StartTime: "14:00",
		EndTime:   "16:00",
		Amount:    250000,
		Method:    "bank_transfer",
	})

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, string(domain.BookingPending), resp.Status)
		assert.Equal(t, now.Add(30*time.Minute).Format(time.RFC3339), resp.PaymentDeadline)
		assert.Equal(t, resp.BookingID, resp.TransactionID)
	}
}

func TestCreateReservation_SlotConflict(t *testing.T) {
	now := time.Date(2025, 4, 30, 10, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	fieldID := uuid.New()
	conflict := &domain.SlotConflictError{
		FieldID: fieldID,
		Conflicts: []domain.Interval{{
			Start: time.Date(2025, 5, 1, 14, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 5, 1, 16, 0, 0, 0, time.UTC),
		}},
	}

	m.fields.On("GetByID", mock.Anything, fieldID).Return(availableField(fieldID), nil)
	m.bookings.On("CreateIfSlotFree", mock.Anything, mock.Anything, mock.Anything).Return(conflict)

	resp, err := svc.CreateReservation(context.Background(), services.CreateReservationRequest{
		UserID:    uuid.New().String(),
		FieldID:   fieldID.String(),
		Date:      "2025-05-01",
		StartTime: "15:00",
		EndTime:   "15:30",
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrSlotConflict)

	var sce *domain.SlotConflictError
	if assert.ErrorAs(t, err, &sce) {
		assert.Len(t, sce.Conflicts, 1)
	}
}

func TestCreateReservation_InvalidInterval(t *testing.T) {
	now := time.Date(2025, 4, 30, 10, 0, 0, 0, time.UTC)
	svc, _ := newReservationService(t, now, 30*time.Minute)

	_, err := svc.CreateReservation(context.Background(), services.CreateReservationRequest{
		UserID:    uuid.New().String(),
		FieldID:   uuid.New().String(),
		Date:      "2025-05-01",
		StartTime: "16:00",
		EndTime:   "14:00",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func TestCreateReservation_FieldUnderMaintenance(t *testing.T) {
	now := time.Date(2025, 4, 30, 10, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	fieldID := uuid.New()
	field := availableField(fieldID)
	field.Status = domain.FieldMaintenance

	m.fields.On("GetByID", mock.Anything, fieldID).Return(field, nil)

	_, err := svc.CreateReservation(context.Background(), services.CreateReservationRequest{
		UserID:    uuid.New().String(),
		FieldID:   fieldID.String(),
		Date:      "2025-05-01",
		StartTime: "14:00",
		EndTime:   "16:00",
	})

	assert.ErrorIs(t, err, domain.ErrFieldUnavailable)
}

func TestCreateReservation_RetriesTransientStoreFailure(t *testing.T) {
	now := time.Date(2025, 4, 30, 10, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	fieldID := uuid.New()

	m.fields.On("GetByID", mock.Anything, fieldID).Return(availableField(fieldID), nil)
	m.bookings.On("CreateIfSlotFree", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ErrStoreTimeout).Once()
	m.bookings.On("CreateIfSlotFree", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()
	m.cache.On("Invalidate", mock.Anything, fieldID, mock.Anything).Return(nil)
	m.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

	resp, err := svc.CreateReservation(context.Background(), services.CreateReservationRequest{
		UserID:    uuid.New().String(),
		FieldID:   fieldID.String(),
		Date:      "2025-05-01",
		StartTime: "14:00",
		EndTime:   "16:00",
	})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestConfirmPayment_TransitionsAndPublishesOnce(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	bookingID := uuid.New()
	fieldID := uuid.New()
	userID := uuid.New()
	date := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	pending := &domain.Booking{
		ID: bookingID, UserID: userID, FieldID: fieldID, Date: date,
		Status: domain.BookingPending, PaymentDeadline: now.Add(10 * time.Minute),
	}
	confirmed := &domain.Booking{
		ID: bookingID, UserID: userID, FieldID: fieldID, Date: date,
		Status: domain.BookingConfirmed, PaymentDeadline: pending.PaymentDeadline,
	}

	m.bookings.On("GetByID", mock.Anything, bookingID).Return(pending, nil).Once()
	m.bookings.On("UpdateStatusFrom", mock.Anything, bookingID,
		domain.BookingPending, domain.BookingConfirmed).Return(true, nil).Once()
	m.cache.On("Invalidate", mock.Anything, fieldID, date).Return(nil).Once()
	m.events.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventBookingConfirmed && e.Status == domain.BookingConfirmed
	}), mock.Anything).Return(nil).Twice()

	// Second lookup sees the booking already confirmed.
	m.bookings.On("GetByID", mock.Anything, bookingID).Return(confirmed, nil).Once()

	first, err := svc.ConfirmPayment(context.Background(), bookingID, 250000)
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, first.Status)

	// Duplicate gateway callback: no-op success, no second event batch.
	second, err := svc.ConfirmPayment(context.Background(), bookingID, 250000)
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, second.Status)
}

func TestConfirmPayment_LosesRaceToConcurrentConfirm(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	bookingID := uuid.New()
	fieldID := uuid.New()

	pending := &domain.Booking{
		ID: bookingID, FieldID: fieldID, Status: domain.BookingPending,
		PaymentDeadline: now.Add(10 * time.Minute),
	}
	confirmed := &domain.Booking{
		ID: bookingID, FieldID: fieldID, Status: domain.BookingConfirmed,
	}

	m.bookings.On("GetByID", mock.Anything, bookingID).Return(pending, nil).Once()
	m.bookings.On("UpdateStatusFrom", mock.Anything, bookingID,
		domain.BookingPending, domain.BookingConfirmed).Return(false, nil).Once()
	m.bookings.On("GetByID", mock.Anything, bookingID).Return(confirmed, nil).Once()

	booking, err := svc.ConfirmPayment(context.Background(), bookingID, 250000)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, booking.Status)
}

func TestConfirmPayment_IllegalFromExpired(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	bookingID := uuid.New()
	expired := &domain.Booking{ID: bookingID, Status: domain.BookingExpired}

	m.bookings.On("GetByID", mock.Anything, bookingID).Return(expired, nil)

	_, err := svc.ConfirmPayment(context.Background(), bookingID, 250000)

	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestCancelReservation_FromConfirmed(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	bookingID := uuid.New()
	fieldID := uuid.New()
	date := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	confirmed := &domain.Booking{
		ID: bookingID, FieldID: fieldID, Date: date, Status: domain.BookingConfirmed,
	}

	m.bookings.On("GetByID", mock.Anything, bookingID).Return(confirmed, nil)
	m.bookings.On("CancelFrom", mock.Anything, bookingID,
		domain.BookingConfirmed, "rain").Return(true, nil)
	m.cache.On("Invalidate", mock.Anything, fieldID, date).Return(nil)
	m.events.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventBookingCancelled
	}), mock.Anything).Return(nil).Twice()

	booking, err := svc.CancelReservation(context.Background(), bookingID, uuid.New(), "rain")

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, booking.Status)
	assert.Equal(t, "rain", booking.CancelReason)
}

func TestCancelReservation_IllegalFromExpired(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	bookingID := uuid.New()
	expired := &domain.Booking{ID: bookingID, Status: domain.BookingExpired}

	m.bookings.On("GetByID", mock.Anything, bookingID).Return(expired, nil)

	_, err := svc.CancelReservation(context.Background(), bookingID, uuid.New(), "too late")

	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestCancelReservation_NotFound(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	bookingID := uuid.New()
	m.bookings.On("GetByID", mock.Anything, bookingID).
		Return(nil, domain.ErrResourceNotFound)

	_, err := svc.CancelReservation(context.Background(), bookingID, uuid.New(), "")

	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestExpireReservation_BeforeDeadline(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	bookingID := uuid.New()
	pending := &domain.Booking{
		ID: bookingID, Status: domain.BookingPending,
		PaymentDeadline: now.Add(5 * time.Minute),
	}

	m.bookings.On("GetByID", mock.Anything, bookingID).Return(pending, nil)

	_, err := svc.ExpireReservation(context.Background(), bookingID)

	assert.ErrorIs(t, err, domain.ErrNotYetExpirable)
}

func TestExpireReservation_OnConfirmedBooking(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	bookingID := uuid.New()
	confirmed := &domain.Booking{ID: bookingID, Status: domain.BookingConfirmed}

	m.bookings.On("GetByID", mock.Anything, bookingID).Return(confirmed, nil)

	_, err := svc.ExpireReservation(context.Background(), bookingID)

	assert.ErrorIs(t, err, domain.ErrNotYetExpirable)
}

func TestExpireReservation_AfterDeadline(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	bookingID := uuid.New()
	fieldID := uuid.New()
	date := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	lapsed := &domain.Booking{
		ID: bookingID, FieldID: fieldID, Date: date,
		Status: domain.BookingPending, PaymentDeadline: now.Add(-time.Minute),
	}

	m.bookings.On("GetByID", mock.Anything, bookingID).Return(lapsed, nil)
	m.bookings.On("UpdateStatusFrom", mock.Anything, bookingID,
		domain.BookingPending, domain.BookingExpired).Return(true, nil)
	m.cache.On("Invalidate", mock.Anything, fieldID, date).Return(nil)
	m.events.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventSlotReleased && e.Status == domain.BookingExpired
	}), mock.Anything).Return(nil).Twice()

	booking, err := svc.ExpireReservation(context.Background(), bookingID)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingExpired, booking.Status)
}

func TestCreateReservation_PublishFailureDoesNotFailRequest(t *testing.T) {
	now := time.Date(2025, 4, 30, 10, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	fieldID := uuid.New()

	m.fields.On("GetByID", mock.Anything, fieldID).Return(availableField(fieldID), nil)
	m.bookings.On("CreateIfSlotFree", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.cache.On("Invalidate", mock.Anything, fieldID, mock.Anything).
		Return(errors.New("redis down"))
	m.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("broker down")).Twice()

	resp, err := svc.CreateReservation(context.Background(), services.CreateReservationRequest{
		UserID:    uuid.New().String(),
		FieldID:   fieldID.String(),
		Date:      "2025-05-01",
		StartTime: "14:00",
		EndTime:   "16:00",
	})

	// The durable write committed; cache and fan-out failures only log.
	assert.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestCompleteBooking_FromConfirmed(t *testing.T) {
	now := time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	bookingID := uuid.New()
	confirmed := &domain.Booking{
		ID:      bookingID,
		FieldID: uuid.New(),
		Status:  domain.BookingConfirmed,
	}

	m.bookings.On("GetByID", mock.Anything, bookingID).Return(confirmed, nil)
	m.bookings.On("UpdateStatusFrom", mock.Anything, bookingID,
		domain.BookingConfirmed, domain.BookingCompleted).Return(true, nil)

	// No cache invalidation and no events: a completed slot is in the
	// past and never affects availability.
	booking, err := svc.CompleteBooking(context.Background(), bookingID)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, booking.Status)
}

func TestCompleteBooking_IllegalFromPending(t *testing.T) {
	now := time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	bookingID := uuid.New()
	pending := &domain.Booking{ID: bookingID, Status: domain.BookingPending}

	m.bookings.On("GetByID", mock.Anything, bookingID).Return(pending, nil)

	_, err := svc.CompleteBooking(context.Background(), bookingID)

	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestCompleteBooking_LosesRaceToCancellation(t *testing.T) {
	now := time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)
	svc, m := newReservationService(t, now, 30*time.Minute)

	bookingID := uuid.New()
	confirmed := &domain.Booking{ID: bookingID, Status: domain.BookingConfirmed}

	m.bookings.On("GetByID", mock.Anything, bookingID).Return(confirmed, nil)
	m.bookings.On("UpdateStatusFrom", mock.Anything, bookingID,
		domain.BookingConfirmed, domain.BookingCompleted).Return(false, nil)

	_, err := svc.CompleteBooking(context.Background(), bookingID)

	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}
