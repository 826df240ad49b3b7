package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidInterval      = errors.New("invalid interval")
	ErrResourceNotFound     = errors.New("resource not found")
	ErrSlotConflict         = errors.New("slot conflict")
	ErrFieldUnavailable     = errors.New("field is not bookable")
	ErrIllegalTransition    = errors.New("illegal booking state transition")
	ErrNotYetExpirable      = errors.New("booking is not yet expirable")
	ErrUnknownTransaction   = errors.New("unknown payment transaction")
	ErrUnknownGatewayStatus = errors.New("unknown gateway status")
	ErrStoreTimeout         = errors.New("store operation timed out")
	ErrStoreUnavailable     = errors.New("store unavailable")
)

// SlotConflictError reports which active intervals block a reservation.
// Conflicts may be empty when the overlap was detected by the store
// constraint rather than the pre-insert probe.
type SlotConflictError struct {
	FieldID   uuid.UUID
	Conflicts []Interval
}

func (e *SlotConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return fmt.Sprintf("slot conflict on field %s", e.FieldID)
	}

	parts := make([]string, 0, len(e.Conflicts))
	for _, iv := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%s-%s", iv.Start.Format("15:04"), iv.End.Format("15:04")))
	}

	return fmt.Sprintf("slot conflict on field %s: overlaps %s", e.FieldID, strings.Join(parts, ", "))
}

func (e *SlotConflictError) Is(target error) bool {
	return target == ErrSlotConflict
}

// IsTransient reports whether err is an infrastructure failure worth
// retrying, as opposed to a validation or state error.
func IsTransient(err error) bool {
	return errors.Is(err, ErrStoreTimeout) || errors.Is(err, ErrStoreUnavailable)
}
