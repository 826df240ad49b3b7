package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prasdika/fieldbooking/internal/core/domain"
)

func TestBookingStatusTransitions(t *testing.T) {
	assert.True(t, domain.BookingPending.CanTransition(domain.BookingConfirmed))
	assert.True(t, domain.BookingPending.CanTransition(domain.BookingCancelled))
	assert.True(t, domain.BookingPending.CanTransition(domain.BookingExpired))
	assert.True(t, domain.BookingConfirmed.CanTransition(domain.BookingCancelled))
	assert.True(t, domain.BookingConfirmed.CanTransition(domain.BookingCompleted))

	assert.False(t, domain.BookingPending.CanTransition(domain.BookingCompleted))
	assert.False(t, domain.BookingConfirmed.CanTransition(domain.BookingExpired))

	for _, terminal := range []domain.BookingStatus{
		domain.BookingCancelled, domain.BookingCompleted, domain.BookingExpired,
	} {
		assert.True(t, terminal.IsTerminal())
		for _, to := range []domain.BookingStatus{
			domain.BookingPending, domain.BookingConfirmed, domain.BookingCancelled,
			domain.BookingCompleted, domain.BookingExpired,
		} {
			assert.False(t, terminal.CanTransition(to), "%s -> %s must be illegal", terminal, to)
		}
	}
}

func TestBookingHoldsSlot(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	pending := &domain.Booking{Status: domain.BookingPending, PaymentDeadline: now.Add(10 * time.Minute)}
	assert.True(t, pending.HoldsSlot(now))

	lapsed := &domain.Booking{Status: domain.BookingPending, PaymentDeadline: now.Add(-time.Minute)}
	assert.False(t, lapsed.HoldsSlot(now))

	confirmed := &domain.Booking{Status: domain.BookingConfirmed, PaymentDeadline: now.Add(-time.Hour)}
	assert.True(t, confirmed.HoldsSlot(now))

	for _, status := range []domain.BookingStatus{
		domain.BookingCancelled, domain.BookingExpired, domain.BookingCompleted,
	} {
		b := &domain.Booking{Status: status, PaymentDeadline: now.Add(time.Hour)}
		assert.False(t, b.HoldsSlot(now))
	}
}

func TestMapGatewayStatus(t *testing.T) {
	cases := []struct {
		external string
		want     domain.PaymentStatus
	}{
		{"settlement", domain.PaymentPaid},
		{"capture", domain.PaymentPaid},
		{"Settlement", domain.PaymentPaid},
		{"pending", domain.PaymentPending},
		{"deny", domain.PaymentFailed},
		{"cancel", domain.PaymentFailed},
		{"expire", domain.PaymentFailed},
		{"failure", domain.PaymentFailed},
	}

	for _, tc := range cases {
		got, err := domain.MapGatewayStatus(tc.external)
		assert.NoError(t, err, tc.external)
		assert.Equal(t, tc.want, got, tc.external)
	}

	_, err := domain.MapGatewayStatus("challenge")
	assert.ErrorIs(t, err, domain.ErrUnknownGatewayStatus)
}
