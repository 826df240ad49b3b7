package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSlotReserved     EventType = "slot.reserved"
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingCancelled EventType = "booking.cancelled"
	EventSlotReleased     EventType = "slot.released"
)

// Event is the payload fanned out to subscribers after a booking
// transition has been durably committed. It notifies; it never commits.
type Event struct {
	Type      EventType     `json:"type"`
	BookingID uuid.UUID     `json:"booking_id"`
	FieldID   uuid.UUID     `json:"field_id"`
	Status    BookingStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

type ScopeKind string

const (
	ScopeUser      ScopeKind = "user"
	ScopeField     ScopeKind = "field"
	ScopeBroadcast ScopeKind = "broadcast"
)

// Scope addresses one delivery channel: a single user, a field, or
// everyone.
type Scope struct {
	Kind ScopeKind
	ID   uuid.UUID
}

func UserScope(userID uuid.UUID) Scope {
	return Scope{Kind: ScopeUser, ID: userID}
}

func FieldScope(fieldID uuid.UUID) Scope {
	return Scope{Kind: ScopeField, ID: fieldID}
}

func BroadcastScope() Scope {
	return Scope{Kind: ScopeBroadcast}
}

func (s Scope) Channel() string {
	if s.Kind == ScopeBroadcast {
		return "broadcast"
	}
	return fmt.Sprintf("%s:%s", s.Kind, s.ID)
}
