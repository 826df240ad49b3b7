package domain

import (
	"github.com/google/uuid"
)

type FieldStatus string

const (
	FieldAvailable   FieldStatus = "available"
	FieldMaintenance FieldStatus = "maintenance"
	FieldClosed      FieldStatus = "closed"
)

// Field is a bookable resource. Fields are never deleted while bookings
// reference them; deactivation happens by flipping Status.
type Field struct {
	ID        uuid.UUID
	BranchID  uuid.UUID
	Name      string
	DayRate   float64
	NightRate float64
	Status    FieldStatus
}

func (f *Field) IsBookable() bool {
	return f.Status == FieldAvailable
}
