package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/wizard"
)

type entry struct {
	wizard   *wizard.Wizard
	lastSeen time.Time
}

// Registry holds one wizard per visitor session and expires idle ones.
type Registry struct {
	newWizard func() *wizard.Wizard
	ttl       time.Duration
	logger    *slog.Logger
	metrics   *metrics.BookingMetrics
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewRegistry(newWizard func() *wizard.Wizard, ttl time.Duration, logger *slog.Logger, m *metrics.BookingMetrics) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		newWizard: newWizard,
		ttl:       ttl,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
		sessions:  map[string]*entry{},
	}
}

func (r *Registry) Create() (string, *wizard.Wizard) {
	id := uuid.NewString()
	w := r.newWizard()

	r.mu.Lock()
	r.sessions[id] = &entry{wizard: w, lastSeen: r.now()}
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	return id, w
}

// Get returns the wizard for id and refreshes its idle timer.
func (r *Registry) Get(id string) (*wizard.Wizard, bool) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return nil, false
	}
	if r.now().Sub(e.lastSeen) > r.ttl {
		delete(r.sessions, id)
		n := len(r.sessions)
		r.mu.Unlock()
		r.metrics.SetActiveSessions(n)
		return nil, false
	}
	e.lastSeen = r.now()
	r.mu.Unlock()
	return e.wizard, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many it removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	now := r.now()
	removed := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("expired wizard sessions", "count", n)
			}
		}
	}
}
