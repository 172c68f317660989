package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/barberbook/services/booking-service/internal/wizard"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestRegistry(ttl time.Duration) (*Registry, *time.Time) {
	return newTestRegistryWithMetrics(ttl, nil)
}

func newTestRegistryWithMetrics(ttl time.Duration, m *metrics.BookingMetrics) (*Registry, *time.Time) {
	now := time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC)
	c := catalog.New(nil)
	r := NewRegistry(func() *wizard.Wizard { return wizard.New(c, nil, nil) }, ttl, slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestCreateAndGet(t *testing.T) {
	r, _ := newTestRegistry(time.Minute)
	id, w := r.Create()
	if id == "" || w == nil {
		t.Fatalf("expected a new session")
	}
	got, ok := r.Get(id)
	if !ok || got != w {
		t.Fatalf("expected to find the same wizard")
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatalf("unknown id should not resolve")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	r, _ := newTestRegistry(time.Minute)
	_, a := r.Create()
	_, b := r.Create()
	if err := a.ChooseService("1"); err != nil {
		t.Fatalf("ChooseService: %v", err)
	}
	if b.Step() != wizard.SelectingService {
		t.Fatalf("sessions must not share state")
	}
}

func TestExpiry(t *testing.T) {
	r, now := newTestRegistry(time.Minute)
	idle, _ := r.Create()
	active, _ := r.Create()

	*now = now.Add(45 * time.Second)
	if _, ok := r.Get(active); !ok {
		t.Fatalf("active session should still exist")
	}

	*now = now.Add(30 * time.Second)
	if removed := r.Sweep(); removed != 1 {
		t.Fatalf("expected one expired session, got %d", removed)
	}
	if _, ok := r.Get(idle); ok {
		t.Fatalf("idle session should be gone")
	}
	if _, ok := r.Get(active); !ok {
		t.Fatalf("recently used session should survive")
	}
}

func TestGetExpiresLazily(t *testing.T) {
	r, now := newTestRegistry(time.Minute)
	id, _ := r.Create()
	*now = now.Add(2 * time.Minute)
	if _, ok := r.Get(id); ok {
		t.Fatalf("expired session should not resolve")
	}
	if r.Len() != 0 {
		t.Fatalf("expected expired session removed")
	}
}

func TestGetExpiryUpdatesActiveSessions(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, now := newTestRegistryWithMetrics(time.Minute, metrics.NewBookingMetrics(reg))
	id, _ := r.Create()
	r.Create()
	if got := activeSessions(t, reg); got != 2 {
		t.Fatalf("expected 2 active sessions, got %v", got)
	}

	*now = now.Add(2 * time.Minute)
	if _, ok := r.Get(id); ok {
		t.Fatalf("expired session should not resolve")
	}
	if got := activeSessions(t, reg); got != 1 {
		t.Fatalf("expected gauge to drop to 1 after lazy expiry, got %v", got)
	}
}

func activeSessions(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "barberbook_wizard_active_sessions" {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("active sessions gauge not registered")
	return 0
}

func TestRunStopsOnCancel(t *testing.T) {
	r, _ := newTestRegistry(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop")
	}
}
