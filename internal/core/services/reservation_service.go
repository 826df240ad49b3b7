package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prasdika/fieldbooking/internal/core/domain"
	"github.com/prasdika/fieldbooking/internal/core/ports"
)

type CreateReservationRequest struct {
	UserID    string  `json:"user_id"`
	FieldID   string  `json:"field_id"`
	Date      string  `json:"date"`       // 2006-01-02
	StartTime string  `json:"start_time"` // 15:04
	EndTime   string  `json:"end_time"`   // 15:04
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
}

type CreateReservationResponse struct {
	BookingID       string  `json:"booking_id"`
	FieldID         string  `json:"field_id"`
	Status          string  `json:"status"`
	Date            string  `json:"date"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	PaymentID       string  `json:"payment_id"`
	TransactionID   string  `json:"transaction_id"`
	Amount          float64 `json:"amount"`
	PaymentDeadline string  `json:"payment_deadline"`
}

// ReservationService is the single authority over booking state
// transitions. Live requests, the payment bridge, and the expiry sweeper
// all funnel through it, so the transition guards hold no matter who
// raced whom.
type ReservationService struct {
	fields   ports.FieldRepository
	bookings ports.BookingRepository
	payments ports.PaymentRepository
	cache    ports.AvailabilityCache
	events   ports.EventPublisher
	logger   *slog.Logger
	grace    time.Duration
	now      func() time.Time
}

type ReservationOption func(*ReservationService)

// WithReservationClock overrides the wall clock, for tests.
func WithReservationClock(now func() time.Time) ReservationOption {
	return func(s *ReservationService) {
		s.now = now
	}
}

func NewReservationService(
	fields ports.FieldRepository,
	bookings ports.BookingRepository,
	payments ports.PaymentRepository,
	cache ports.AvailabilityCache,
	events ports.EventPublisher,
	logger *slog.Logger,
	gracePeriod time.Duration,
	opts ...ReservationOption,
) *ReservationService {
	s := &ReservationService{
		fields:   fields,
		bookings: bookings,
		payments: payments,
		cache:    cache,
		events:   events,
		logger:   logger,
		grace:    gracePeriod,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateReservation validates the slot, then re-checks availability and
// inserts in one atomic store operation. The check done here is advisory;
// the store-level conditional insert is what closes the race between two
// concurrent requests for the same slot.
func (s *ReservationService) CreateReservation(ctx context.Context, req CreateReservationRequest) (*CreateReservationResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", domain.ErrInvalidArgument)
	}

	fieldID, err := uuid.Parse(req.FieldID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid field id", domain.ErrInvalidArgument)
	}

	date, slot, err := parseSlot(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	field, err := s.getField(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if !field.IsBookable() {
		return nil, fmt.Errorf("%w: field %s is %s", domain.ErrFieldUnavailable, field.ID, field.Status)
	}

	now := s.now().UTC()
	bookingID := uuid.New()
	paymentID := uuid.New()

	booking := &domain.Booking{
		ID:              bookingID,
		UserID:          userID,
		FieldID:         fieldID,
		Date:            date,
		Slot:            slot,
		Status:          domain.BookingPending,
		PaymentID:       &paymentID,
		CreatedAt:       now,
		PaymentDeadline: now.Add(s.grace),
	}

	payment := &domain.Payment{
		ID:        paymentID,
		BookingID: bookingID,
		UserID:    userID,
		Amount:    req.Amount,
		Method:    req.Method,
		Status:    domain.PaymentPending,
		// The booking id doubles as the merchant order reference the
		// gateway echoes back in its callbacks.
		ExternalTransactionID: bookingID.String(),
		ExpiresAt:             booking.PaymentDeadline,
		CreatedAt:             now,
	}

	err = withRetry(ctx, func() error {
		return s.bookings.CreateIfSlotFree(ctx, booking, payment)
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, booking, domain.EventSlotReserved,
		domain.UserScope(booking.UserID), domain.FieldScope(booking.FieldID))

	return &CreateReservationResponse{
		BookingID:       booking.ID.String(),
		FieldID:         booking.FieldID.String(),
		Status:          string(booking.Status),
		Date:            booking.Date.Format("2006-01-02"),
		StartTime:       booking.Slot.Start.Format("15:04"),
		EndTime:         booking.Slot.End.Format("15:04"),
		PaymentID:       payment.ID.String(),
		TransactionID:   payment.ExternalTransactionID,
		Amount:          payment.Amount,
		PaymentDeadline: booking.PaymentDeadline.Format(time.RFC3339),
	}, nil
}

// ConfirmPayment transitions a pending booking to confirmed. Repeated
// confirmation of an already-confirmed booking is a no-op success so
// duplicate gateway callbacks stay harmless.
func (s *ReservationService) ConfirmPayment(ctx context.Context, bookingID uuid.UUID, settledAmount float64) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status == domain.BookingConfirmed {
		return booking, nil
	}

	if !booking.Status.CanTransition(domain.BookingConfirmed) {
		return nil, fmt.Errorf("%w: cannot confirm booking in status %s", domain.ErrIllegalTransition, booking.Status)
	}

	var ok bool
	err = withRetry(ctx, func() error {
		var uerr error
		ok, uerr = s.bookings.UpdateStatusFrom(ctx, bookingID, domain.BookingPending, domain.BookingConfirmed)
		return uerr
	})
	if err != nil {
		return nil, err
	}

	if !ok {
		// Guard did not match: someone else transitioned first.
		booking, err = s.getBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if booking.Status == domain.BookingConfirmed {
			return booking, nil
		}
		return nil, fmt.Errorf("%w: cannot confirm booking in status %s", domain.ErrIllegalTransition, booking.Status)
	}

	booking.Status = domain.BookingConfirmed

	s.logger.Info("booking confirmed",
		slog.String("booking_id", booking.ID.String()),
		slog.Float64("settled_amount", settledAmount))

	s.afterTransition(ctx, booking, domain.EventBookingConfirmed,
		domain.UserScope(booking.UserID), domain.FieldScope(booking.FieldID))

	return booking, nil
}

// CancelReservation is legal from pending or confirmed only. Actor
// authorization is the caller's job; this component only enforces state.
func (s *ReservationService) CancelReservation(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.Status.CanTransition(domain.BookingCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel booking in status %s", domain.ErrIllegalTransition, booking.Status)
	}

	from := booking.Status
	var ok bool
	err = withRetry(ctx, func() error {
		var uerr error
		ok, uerr = s.bookings.CancelFrom(ctx, bookingID, from, reason)
		return uerr
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		booking, err = s.getBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: cannot cancel booking in status %s", domain.ErrIllegalTransition, booking.Status)
	}

	booking.Status = domain.BookingCancelled
	booking.CancelReason = reason

	s.logger.Info("booking cancelled",
		slog.String("booking_id", booking.ID.String()),
		slog.String("actor_id", actorID.String()),
		slog.String("reason", reason))

	s.afterTransition(ctx, booking, domain.EventBookingCancelled,
		domain.UserScope(booking.UserID), domain.FieldScope(booking.FieldID))

	return booking, nil
}

// ExpireReservation is invoked by the sweeper. Legal only from pending
// and only once the payment deadline has elapsed.
func (s *ReservationService) ExpireReservation(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingPending {
		return nil, fmt.Errorf("%w: booking is %s", domain.ErrNotYetExpirable, booking.Status)
	}

	if s.now().UTC().Before(booking.PaymentDeadline) {
		return nil, fmt.Errorf("%w: deadline %s not reached", domain.ErrNotYetExpirable, booking.PaymentDeadline.Format(time.RFC3339))
	}

	var ok bool
	err = withRetry(ctx, func() error {
		var uerr error
		ok, uerr = s.bookings.UpdateStatusFrom(ctx, bookingID, domain.BookingPending, domain.BookingExpired)
		return uerr
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Concurrent confirmation or a second sweep beat us; either way
		// the booking no longer needs expiring.
		return nil, fmt.Errorf("%w: booking left pending concurrently", domain.ErrNotYetExpirable)
	}

	booking.Status = domain.BookingExpired

	s.afterTransition(ctx, booking, domain.EventSlotReleased,
		domain.FieldScope(booking.FieldID), domain.BroadcastScope())

	return booking, nil
}

// CompleteBooking marks a confirmed booking as fulfilled once the slot
// has been used. Past slots never affect availability, so no cache or
// event work follows.
func (s *ReservationService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.Status.CanTransition(domain.BookingCompleted) {
		return nil, fmt.Errorf("%w: cannot complete booking in status %s", domain.ErrIllegalTransition, booking.Status)
	}

	ok, err := s.bookings.UpdateStatusFrom(ctx, bookingID, domain.BookingConfirmed, domain.BookingCompleted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: booking changed concurrently", domain.ErrIllegalTransition)
	}

	booking.Status = domain.BookingCompleted
	return booking, nil
}

func (s *ReservationService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	return s.getBooking(ctx, bookingID)
}

func (s *ReservationService) getBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	var booking *domain.Booking
	err := withRetry(ctx, func() error {
		var gerr error
		booking, gerr = s.bookings.GetByID(ctx, bookingID)
		return gerr
	})
	return booking, err
}

func (s *ReservationService) getField(ctx context.Context, fieldID uuid.UUID) (*domain.Field, error) {
	var field *domain.Field
	err := withRetry(ctx, func() error {
		var gerr error
		field, gerr = s.fields.GetByID(ctx, fieldID)
		return gerr
	})
	return field, err
}

// afterTransition runs the post-commit side effects: synchronous cache
// invalidation, then event fan-out. Failures here are logged and
// swallowed; the durable write already happened and clients can always
// re-read the store.
func (s *ReservationService) afterTransition(ctx context.Context, booking *domain.Booking, eventType domain.EventType, scopes ...domain.Scope) {
	if err := s.cache.Invalidate(ctx, booking.FieldID, booking.Date); err != nil {
		s.logger.Error("cache invalidation failed",
			slog.String("field_id", booking.FieldID.String()),
			slog.String("date", booking.Date.Format("2006-01-02")),
			slog.Any("error", err))
	}

	event := domain.Event{
		Type:      eventType,
		BookingID: booking.ID,
		FieldID:   booking.FieldID,
		Status:    booking.Status,
		Timestamp: s.now().UTC(),
	}

	for _, scope := range scopes {
		if err := s.events.Publish(ctx, event, scope); err != nil {
			s.logger.Error("event publish failed",
				slog.String("event", string(eventType)),
				slog.String("channel", scope.Channel()),
				slog.Any("error", err))
		}
	}
}

// parseSlot turns the wire format (date + wall-clock times) into the
// booking day and its half-open interval, both in UTC.
func parseSlot(dateStr, startStr, endStr string) (time.Time, domain.Interval, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		return time.Time{}, domain.Interval{}, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidInterval, dateStr)
	}

	start, err := clockOn(date, startStr)
	if err != nil {
		return time.Time{}, domain.Interval{}, err
	}
	end, err := clockOn(date, endStr)
	if err != nil {
		return time.Time{}, domain.Interval{}, err
	}

	slot := domain.Interval{Start: start, End: end}
	if err := slot.Validate(); err != nil {
		return time.Time{}, domain.Interval{}, err
	}

	return date, slot, nil
}

func clockOn(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid time %q", domain.ErrInvalidInterval, clock)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
