package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prasdika/fieldbooking/internal/core/domain"
	"github.com/prasdika/fieldbooking/internal/core/ports"
)

// GatewayNotification is the core's view of an inbound payment-gateway
// callback. Gateway-specific fields beyond these stay in RawPayload and
// are ignored.
type GatewayNotification struct {
	TransactionID string  `json:"transaction_id"`
	Status        string  `json:"transaction_status"`
	GrossAmount   float64 `json:"gross_amount"`
	RawPayload    []byte  `json:"-"`
}

// PaymentBridge translates gateway callbacks into reservation-state
// transition requests, idempotently. A duplicate settlement callback
// re-applies a no-op confirm; a failed attempt leaves the booking
// pending so it can be paid again or expire naturally.
type PaymentBridge struct {
	payments     ports.PaymentRepository
	reservations *ReservationService
	logger       *slog.Logger
}

func NewPaymentBridge(payments ports.PaymentRepository, reservations *ReservationService, logger *slog.Logger) *PaymentBridge {
	return &PaymentBridge{
		payments:     payments,
		reservations: reservations,
		logger:       logger,
	}
}

func (b *PaymentBridge) HandleGatewayCallback(ctx context.Context, n GatewayNotification) error {
	mapped, err := domain.MapGatewayStatus(n.Status)
	if err != nil {
		b.logger.Warn("dropping callback with unknown gateway status",
			slog.String("transaction_id", n.TransactionID),
			slog.String("status", n.Status))
		return err
	}

	var payment *domain.Payment
	err = withRetry(ctx, func() error {
		var gerr error
		payment, gerr = b.payments.GetByExternalID(ctx, n.TransactionID)
		return gerr
	})
	if err != nil {
		if errors.Is(err, domain.ErrResourceNotFound) {
			b.logger.Warn("dropping callback for unknown transaction",
				slog.String("transaction_id", n.TransactionID))
			return fmt.Errorf("%w: %s", domain.ErrUnknownTransaction, n.TransactionID)
		}
		return err
	}

	// Settlement below the full amount is a down payment; it still
	// confirms the booking.
	if mapped == domain.PaymentPaid && n.GrossAmount > 0 && n.GrossAmount < payment.Amount {
		mapped = domain.PaymentDPPaid
	}

	// A settled payment never regresses; late or out-of-order
	// expire/deny/pending callbacks for a captured transaction are stale.
	if payment.Status.IsSettled() && !mapped.IsSettled() {
		b.logger.Info("ignoring stale callback for settled payment",
			slog.String("payment_id", payment.ID.String()),
			slog.String("status", n.Status))
		return nil
	}

	if payment.Status != mapped {
		err = withRetry(ctx, func() error {
			return b.payments.UpdateStatus(ctx, payment.ID, mapped)
		})
		if err != nil {
			return err
		}

		b.logger.Info("payment status updated",
			slog.String("payment_id", payment.ID.String()),
			slog.String("from", string(payment.Status)),
			slog.String("to", string(mapped)))
	}

	switch {
	case mapped.IsSettled():
		_, err := b.reservations.ConfirmPayment(ctx, payment.BookingID, n.GrossAmount)
		return err
	case mapped == domain.PaymentFailed:
		// A failed payment attempt does not cancel the booking; it stays
		// pending until paid or swept.
		b.logger.Info("payment attempt failed, booking stays pending",
			slog.String("booking_id", payment.BookingID.String()))
		return nil
	default:
		return nil
	}
}
