package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/prasdika/fieldbooking/internal/core/domain"
)

// queryTimeout bounds every store operation; a blown deadline surfaces
// as a transient failure, never as a state transition.
const queryTimeout = 5 * time.Second

const (
	pqExclusionViolation = "23P01"
	pqUniqueViolation    = "23505"
)

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// mapStoreError folds driver and context failures into the transient
// error taxonomy so callers can decide whether to retry.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrStoreTimeout, err)
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 08: connection exception, class 57: operator intervention.
		if class := pqErr.Code.Class(); class == "08" || class == "57" {
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}

	return err
}

func isOverlapViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pqExclusionViolation || pqErr.Code == pqUniqueViolation
}
