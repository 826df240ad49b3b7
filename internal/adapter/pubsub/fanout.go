package pubsub

import (
	"context"
	"errors"

	"github.com/prasdika/fieldbooking/internal/core/domain"
	"github.com/prasdika/fieldbooking/internal/core/ports"
)

// Fanout delivers one event to every configured transport (Redis for
// connected clients, RabbitMQ for the notification worker). All targets
// are attempted; errors are joined.
type Fanout struct {
	targets []ports.EventPublisher
}

func NewFanout(targets ...ports.EventPublisher) *Fanout {
	return &Fanout{targets: targets}
}

func (f *Fanout) Publish(ctx context.Context, event domain.Event, scope domain.Scope) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.Publish(ctx, event, scope); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
