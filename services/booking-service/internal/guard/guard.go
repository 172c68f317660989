package guard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Kind int

const (
	Confirmed Kind = iota + 1
	SlotTaken
	StoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case Confirmed:
		return "confirmed"
	case SlotTaken:
		return "slot_taken"
	case StoreUnavailable:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

const (
	MessageSlotTaken        = "This time was just booked. Please choose another."
	MessageStoreUnavailable = "We could not complete your booking right now. Please try again."
)

// Result is the outcome of one reservation attempt. Appointment is set only when Kind is Confirmed.
type Result struct {
	Kind        Kind
	Appointment model.Appointment
	Message     string
}

// Invalidator drops cached occupied slots for a pair after a successful booking.
type Invalidator interface {
	Invalidate(ctx context.Context, professionalID, date string)
}

type Guard struct {
	store       storage.Store
	invalidator Invalidator
	logger      *slog.Logger
	metrics     *metrics.BookingMetrics
	timeout     time.Duration
}

// New builds a Guard. invalidator and m may be nil.
func New(store storage.Store, invalidator Invalidator, logger *slog.Logger, m *metrics.BookingMetrics, timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Guard{store: store, invalidator: invalidator, logger: logger, metrics: m, timeout: timeout}
}

// Reserve re-checks the slot and then stores c with a conditional insert.
// Store errors never escape; they are reported as StoreUnavailable.
func (g *Guard) Reserve(ctx context.Context, c model.Candidate) Result {
	ctx, span := otel.Tracer("booking-service/guard").Start(ctx, "guard.Reserve")
	defer span.End()
	span.SetAttributes(
		attribute.String("professional_id", c.ProfessionalID),
		attribute.String("date", c.Date),
		attribute.String("time_slot", string(c.TimeSlot)),
	)

	res := g.reserve(ctx, c)
	span.SetAttributes(attribute.String("outcome", res.Kind.String()))
	if res.Kind == StoreUnavailable {
		span.SetStatus(codes.Error, "store unavailable")
	}
	g.metrics.ObserveReservation(res.Kind.String())
	return res
}

func (g *Guard) reserve(ctx context.Context, c model.Candidate) Result {
	storeCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	taken, err := g.store.ExistsByProfessionalDateSlot(storeCtx, c.ProfessionalID, c.Date, c.TimeSlot)
	g.metrics.ObserveStoreLatency("exists", time.Since(start).Seconds())
	if err != nil {
		g.logger.Error("slot re-check failed", "professional_id", c.ProfessionalID, "date", c.Date, "time_slot", c.TimeSlot, "err", err)
		return Result{Kind: StoreUnavailable, Message: MessageStoreUnavailable}
	}
	if taken {
		g.invalidate(ctx, c)
		return Result{Kind: SlotTaken, Message: MessageSlotTaken}
	}

	start = time.Now()
	appt, err := g.store.InsertAppointment(storeCtx, c)
	g.metrics.ObserveStoreLatency("insert", time.Since(start).Seconds())
	switch {
	case errors.Is(err, storage.ErrSlotTaken):
		g.logger.Info("slot taken between re-check and insert", "professional_id", c.ProfessionalID, "date", c.Date, "time_slot", c.TimeSlot)
		g.invalidate(ctx, c)
		return Result{Kind: SlotTaken, Message: MessageSlotTaken}
	case err != nil:
		g.logger.Error("appointment insert failed", "professional_id", c.ProfessionalID, "date", c.Date, "time_slot", c.TimeSlot, "err", err)
		return Result{Kind: StoreUnavailable, Message: MessageStoreUnavailable}
	}

	g.invalidate(ctx, c)
	g.logger.Info("appointment booked", "appointment_id", appt.ID, "professional_id", appt.ProfessionalID, "date", appt.Date, "time_slot", appt.TimeSlot)
	return Result{Kind: Confirmed, Appointment: appt}
}

// invalidate drops the cached occupied set for c's day. Every outcome that
// proves the store changed calls it, so the next lookup reads the store.
func (g *Guard) invalidate(ctx context.Context, c model.Candidate) {
	if g.invalidator != nil {
		g.invalidator.Invalidate(ctx, c.ProfessionalID, c.Date)
	}
}
