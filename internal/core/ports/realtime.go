package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prasdika/fieldbooking/internal/core/domain"
)

// AvailabilityCache holds the booked intervals for one (field, date) key.
// It is an optimization only; the persistent store stays authoritative
// and entries are invalidated synchronously with every write.
type AvailabilityCache interface {
	GetDay(ctx context.Context, fieldID uuid.UUID, date time.Time) ([]domain.Interval, bool, error)
	SetDay(ctx context.Context, fieldID uuid.UUID, date time.Time, busy []domain.Interval) error
	Invalidate(ctx context.Context, fieldID uuid.UUID, date time.Time) error
}

// EventPublisher delivers a committed state change to one scope.
// Delivery is best-effort, at most once per connected subscriber.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event, scope domain.Scope) error
}
