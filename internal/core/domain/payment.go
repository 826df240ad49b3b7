package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentDPPaid   PaymentStatus = "dp_paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// IsSettled reports whether the payment confirms its owning booking.
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentPaid || s == PaymentDPPaid
}

// Payment is one-to-one with a Booking. The external transaction id is
// the merchant order reference the gateway echoes back in callbacks.
type Payment struct {
	ID                    uuid.UUID
	BookingID             uuid.UUID
	UserID                uuid.UUID
	Amount                float64
	Method                string
	Status                PaymentStatus
	ExternalTransactionID string
	ExpiresAt             time.Time
	CreatedAt             time.Time
}

// MapGatewayStatus translates the gateway status vocabulary into the
// internal payment taxonomy. The two sets are deliberately separate
// enumerations joined only here.
func MapGatewayStatus(external string) (PaymentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(external)) {
	case "settlement", "capture":
		return PaymentPaid, nil
	case "pending":
		return PaymentPending, nil
	case "deny", "cancel", "expire", "failure":
		return PaymentFailed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGatewayStatus, external)
	}
}
