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

// AvailabilityService answers "is this slot free" and "what is free
// today" without side effects on booking state. Reads go through the
// per-(field, date) cache; the persistent store stays authoritative.
type AvailabilityService struct {
	fields    ports.FieldRepository
	bookings  ports.BookingRepository
	cache     ports.AvailabilityCache
	logger    *slog.Logger
	openHour  int
	closeHour int
	now       func() time.Time
}

type AvailabilityOption func(*AvailabilityService)

// WithAvailabilityClock overrides the wall clock, for tests.
func WithAvailabilityClock(now func() time.Time) AvailabilityOption {
	return func(s *AvailabilityService) {
		s.now = now
	}
}

func NewAvailabilityService(
	fields ports.FieldRepository,
	bookings ports.BookingRepository,
	cache ports.AvailabilityCache,
	logger *slog.Logger,
	openHour, closeHour int,
	opts ...AvailabilityOption,
) *AvailabilityService {
	s := &AvailabilityService{
		fields:    fields,
		bookings:  bookings,
		cache:     cache,
		logger:    logger,
		openHour:  openHour,
		closeHour: closeHour,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IsAvailable reports whether [start, end) is free on the field that day.
// Touching intervals do not conflict. A field under maintenance or closed
// reports false for every slot.
func (s *AvailabilityService) IsAvailable(ctx context.Context, fieldID uuid.UUID, date time.Time, slot domain.Interval) (bool, error) {
	if err := slot.Validate(); err != nil {
		return false, err
	}

	field, err := s.fields.GetByID(ctx, fieldID)
	if err != nil {
		return false, err
	}
	if !field.IsBookable() {
		return false, nil
	}

	busy, err := s.busyIntervals(ctx, fieldID, day(date))
	if err != nil {
		return false, err
	}

	for _, b := range busy {
		if slot.Overlaps(b) {
			return false, nil
		}
	}

	return true, nil
}

// ListFreeSlots partitions the operating day into granularity-sized
// buckets and returns the maximal free sub-intervals, ascending.
func (s *AvailabilityService) ListFreeSlots(ctx context.Context, fieldID uuid.UUID, date time.Time, granularity time.Duration) ([]domain.Interval, error) {
	if granularity <= 0 {
		return nil, fmt.Errorf("%w: granularity must be positive", domain.ErrInvalidArgument)
	}

	field, err := s.fields.GetByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if !field.IsBookable() {
		return nil, nil
	}

	d := day(date)
	busy, err := s.busyIntervals(ctx, fieldID, d)
	if err != nil {
		return nil, err
	}

	open := time.Date(d.Year(), d.Month(), d.Day(), s.openHour, 0, 0, 0, time.UTC)
	close := time.Date(d.Year(), d.Month(), d.Day(), s.closeHour, 0, 0, 0, time.UTC)

	return domain.FreeSlots(busy, open, close, granularity), nil
}

// busyIntervals is the read-through path: cache hit wins, a miss rebuilds
// from the store and repopulates. Cache errors degrade to a store read.
func (s *AvailabilityService) busyIntervals(ctx context.Context, fieldID uuid.UUID, date time.Time) ([]domain.Interval, error) {
	cached, hit, err := s.cache.GetDay(ctx, fieldID, date)
	if err != nil {
		s.logger.Warn("availability cache read failed",
			slog.String("field_id", fieldID.String()),
			slog.Any("error", err))
	} else if hit {
		return cached, nil
	}

	var active []domain.Booking
	err = withRetry(ctx, func() error {
		var lerr error
		active, lerr = s.bookings.ListActiveByFieldDate(ctx, fieldID, date, s.now().UTC())
		return lerr
	})
	if err != nil {
		return nil, err
	}

	busy := make([]domain.Interval, 0, len(active))
	for _, b := range active {
		busy = append(busy, b.Slot)
	}
	busy = domain.MergeIntervals(busy)

	if err := s.cache.SetDay(ctx, fieldID, date, busy); err != nil {
		s.logger.Warn("availability cache write failed",
			slog.String("field_id", fieldID.String()),
			slog.Any("error", err))
	}

	return busy, nil
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
