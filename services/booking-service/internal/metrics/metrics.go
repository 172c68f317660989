package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for slot lookups and reservations.
// A nil *BookingMetrics is valid and records nothing.
type BookingMetrics struct {
	reservationsTotal *prometheus.CounterVec
	lookupsTotal      *prometheus.CounterVec
	storeLatency      *prometheus.HistogramVec
	activeSessions    prometheus.Gauge
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		reservationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberbook",
			Subsystem: "booking",
			Name:      "reservations_total",
			Help:      "Reservation attempts by outcome",
		}, []string{"outcome"}),
		lookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barberbook",
			Subsystem: "booking",
			Name:      "occupied_lookups_total",
			Help:      "Occupied-slot lookups by source (cache, store, failed)",
		}, []string{"source"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "barberbook",
			Subsystem: "booking",
			Name:      "store_latency_seconds",
			Help:      "Latency of appointment store calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "barberbook",
			Subsystem: "wizard",
			Name:      "active_sessions",
			Help:      "Booking wizard sessions currently held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.reservationsTotal, m.lookupsTotal, m.storeLatency, m.activeSessions)
	return m
}

func (m *BookingMetrics) ObserveReservation(outcome string) {
	if m == nil {
		return
	}
	m.reservationsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveLookup(source string) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(source).Inc()
}

func (m *BookingMetrics) ObserveStoreLatency(op string, seconds float64) {
	if m == nil {
		return
	}
	m.storeLatency.WithLabelValues(op).Observe(seconds)
}

func (m *BookingMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
