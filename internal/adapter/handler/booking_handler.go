package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prasdika/fieldbooking/internal/core/domain"
	"github.com/prasdika/fieldbooking/internal/core/services"
)

type BookingHandler struct {
	reservations *services.ReservationService
	availability *services.AvailabilityService
	bridge       *services.PaymentBridge
	logger       *slog.Logger
	granularity  time.Duration
}

func NewBookingHandler(
	reservations *services.ReservationService,
	availability *services.AvailabilityService,
	bridge *services.PaymentBridge,
	logger *slog.Logger,
	defaultGranularity time.Duration,
) *BookingHandler {
	return &BookingHandler{
		reservations: reservations,
		availability: availability,
		bridge:       bridge,
		logger:       logger,
		granularity:  defaultGranularity,
	}
}

func (h *BookingHandler) Register(r *gin.Engine) {
	r.POST("/bookings", h.CreateBooking)
	r.GET("/bookings/:id", h.GetBooking)
	r.POST("/bookings/:id/cancel", h.CancelBooking)
	r.GET("/fields/:id/slots", h.ListFreeSlots)
	r.POST("/payments/notification", h.PaymentNotification)
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req services.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	resp, err := h.reservations.CreateReservation(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := h.reservations.GetBooking(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookingJSON(booking))
}

type cancelRequest struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason"`
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	actorID, err := uuid.Parse(req.ActorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid actor id"})
		return
	}

	booking, err := h.reservations.CancelReservation(c.Request.Context(), id, actorID, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookingJSON(booking))
}

func (h *BookingHandler) ListFreeSlots(c *gin.Context) {
	fieldID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field id"})
		return
	}

	date, err := time.ParseInLocation("2006-01-02", c.Query("date"), time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing date, expected YYYY-MM-DD"})
		return
	}

	granularity := h.granularity
	if g := c.Query("granularity"); g != "" {
		parsed, err := time.ParseDuration(g + "m")
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid granularity, expected minutes"})
			return
		}
		granularity = parsed
	}

	slots, err := h.availability.ListFreeSlots(c.Request.Context(), fieldID, date, granularity)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(slots))
	for _, s := range slots {
		out = append(out, gin.H{
			"start": s.Start.Format("15:04"),
			"end":   s.End.Format("15:04"),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"field_id": fieldID.String(),
		"date":     date.Format("2006-01-02"),
		"slots":    out,
	})
}

func (h *BookingHandler) PaymentNotification(c *gin.Context) {
	var n services.GatewayNotification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	err := h.bridge.HandleGatewayCallback(c.Request.Context(), n)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTransaction) || errors.Is(err, domain.ErrUnknownGatewayStatus) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func bookingJSON(b *domain.Booking) gin.H {
	out := gin.H{
		"booking_id": b.ID.String(),
		"user_id":    b.UserID.String(),
		"field_id":   b.FieldID.String(),
		"date":       b.Date.Format("2006-01-02"),
		"start_time": b.Slot.Start.Format("15:04"),
		"end_time":   b.Slot.End.Format("15:04"),
		"status":     string(b.Status),
		"deadline":   b.PaymentDeadline.Format(time.RFC3339),
	}
	if b.CancelReason != "" {
		out["cancel_reason"] = b.CancelReason
	}
	return out
}

func (h *BookingHandler) writeError(c *gin.Context, err error) {
	var conflict *domain.SlotConflictError

	switch {
	case errors.As(err, &conflict):
		conflicts := make([]gin.H, 0, len(conflict.Conflicts))
		for _, iv := range conflict.Conflicts {
			conflicts = append(conflicts, gin.H{
				"start": iv.Start.Format("15:04"),
				"end":   iv.End.Format("15:04"),
			})
		}
		c.JSON(http.StatusConflict, gin.H{"error": "slot conflict", "conflicts": conflicts})
	case errors.Is(err, domain.ErrSlotConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidInterval), errors.Is(err, domain.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFieldUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrIllegalTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case domain.IsTransient(err):
		h.logger.Error("store unavailable", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable, retry later"})
	default:
		h.logger.Error("unhandled error", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
