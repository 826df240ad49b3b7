package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prasdika/fieldbooking/internal/core/domain"
	"github.com/prasdika/fieldbooking/internal/core/ports"
)

const sweepBatchSize = 100

// Sweeper scans pending bookings past their payment deadline and expires
// them. Safe to run concurrently with itself and with live traffic: the
// state machine's pending-only guard turns every race into a skip.
type Sweeper struct {
	reservations *ReservationService
	bookings     ports.BookingRepository
	logger       *slog.Logger
	interval     time.Duration
	now          func() time.Time
}

type SweeperOption func(*Sweeper)

// WithSweeperClock overrides the wall clock, for tests.
func WithSweeperClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		s.now = now
	}
}

func NewSweeper(
	reservations *ReservationService,
	bookings ports.BookingRepository,
	logger *slog.Logger,
	interval time.Duration,
	opts ...SweeperOption,
) *Sweeper {
	s := &Sweeper{
		reservations: reservations,
		bookings:     bookings,
		logger:       logger,
		interval:     interval,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run drives RunSweepOnce on a fixed cadence until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started", slog.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.RunSweepOnce(ctx); err != nil {
				s.logger.Error("sweep failed", slog.Any("error", err))
			}
		}
	}
}

// RunSweepOnce expires every lapsed pending booking it finds and returns
// how many transitions it performed. Per-booking failures are logged and
// skipped; a booking that was confirmed or already expired under us is
// not an error.
func (s *Sweeper) RunSweepOnce(ctx context.Context) (int, error) {
	lapsed, err := s.bookings.ListExpired(ctx, s.now().UTC(), sweepBatchSize)
	if err != nil {
		return 0, err
	}

	if len(lapsed) == 0 {
		return 0, nil
	}

	expired := 0
	for _, b := range lapsed {
		if _, err := s.reservations.ExpireReservation(ctx, b.ID); err != nil {
			if errors.Is(err, domain.ErrNotYetExpirable) || errors.Is(err, domain.ErrIllegalTransition) {
				s.logger.Debug("booking no longer expirable, skipping",
					slog.String("booking_id", b.ID.String()))
				continue
			}

			s.logger.Error("failed to expire booking",
				slog.String("booking_id", b.ID.String()),
				slog.Any("error", err))
			continue
		}

		expired++
		s.logger.Info("booking expired, slot released",
			slog.String("booking_id", b.ID.String()),
			slog.String("field_id", b.FieldID.String()))
	}

	return expired, nil
}
