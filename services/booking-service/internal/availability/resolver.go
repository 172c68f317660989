package availability

import (
	"context"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/model"
)

type SlotLister interface {
	ListByProfessionalAndDate(ctx context.Context, professionalID, date string) ([]model.TimeSlot, error)
}

// OccupiedCache is implemented by *Cache.
type OccupiedCache interface {
	Get(ctx context.Context, professionalID, date string) (SlotSet, bool, error)
	Set(ctx context.Context, professionalID, date string, slots []model.TimeSlot) error
	Invalidate(ctx context.Context, professionalID, date string) error
}

// Resolver answers which slots are already booked for a professional on a date.
type Resolver struct {
	store   SlotLister
	cache   OccupiedCache
	logger  *slog.Logger
	metrics *metrics.BookingMetrics
	timeout time.Duration
}

// NewResolver builds a Resolver. cache and m may be nil.
func NewResolver(store SlotLister, cache OccupiedCache, logger *slog.Logger, m *metrics.BookingMetrics, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{store: store, cache: cache, logger: logger, metrics: m, timeout: timeout}
}

// ListOccupiedSlots never fails: when the store cannot be read it logs the
// error and reports no occupied slots, leaving the final say to the reservation guard.
func (r *Resolver) ListOccupiedSlots(ctx context.Context, professionalID, date string) SlotSet {
	if r.cache != nil {
		set, ok, err := r.cache.Get(ctx, professionalID, date)
		switch {
		case err != nil:
			r.logger.Warn("occupied slot cache read failed", "professional_id", professionalID, "date", date, "err", err)
		case ok:
			r.metrics.ObserveLookup("cache")
			return set
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	slots, err := r.store.ListByProfessionalAndDate(storeCtx, professionalID, date)
	r.metrics.ObserveStoreLatency("list", time.Since(start).Seconds())
	if err != nil {
		r.metrics.ObserveLookup("failed")
		r.logger.Warn("occupied slot lookup failed; treating all slots as free",
			"professional_id", professionalID, "date", date, "err", err)
		return SlotSet{}
	}
	r.metrics.ObserveLookup("store")

	if r.cache != nil {
		if err := r.cache.Set(ctx, professionalID, date, slots); err != nil {
			r.logger.Warn("occupied slot cache write failed", "professional_id", professionalID, "date", date, "err", err)
		}
	}
	return NewSlotSet(slots...)
}

// Invalidate drops the cached set for the pair so the next lookup reads the store.
func (r *Resolver) Invalidate(ctx context.Context, professionalID, date string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, professionalID, date); err != nil {
		r.logger.Warn("occupied slot cache invalidation failed", "professional_id", professionalID, "date", date, "err", err)
	}
}
