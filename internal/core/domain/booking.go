package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingExpired   BookingStatus = "expired"
)

// bookingTransitions is the full lifecycle; statuses absent from the map
// are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled, BookingExpired},
	BookingConfirmed: {BookingCancelled, BookingCompleted},
}

func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

type Booking struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	FieldID         uuid.UUID
	Date            time.Time // midnight UTC of the booking day
	Slot            Interval
	Status          BookingStatus
	PaymentID       *uuid.UUID
	CancelReason    string
	CreatedAt       time.Time
	PaymentDeadline time.Time
}

// HoldsSlot reports whether the booking still blocks its interval:
// confirmed, or pending with a live payment deadline.
func (b *Booking) HoldsSlot(now time.Time) bool {
	switch b.Status {
	case BookingConfirmed:
		return true
	case BookingPending:
		return now.Before(b.PaymentDeadline)
	default:
		return false
	}
}
