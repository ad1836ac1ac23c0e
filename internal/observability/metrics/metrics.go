package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for slot and booking flows.
type SchedulingMetrics struct {
	slotOpsTotal   *prometheus.CounterVec
	bookingsTotal  *prometheus.CounterVec
	bookingLatency *prometheus.HistogramVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		slotOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carewell",
			Subsystem: "scheduling",
			Name:      "slot_operations_total",
			Help:      "Total slot create/update/delete operations",
		}, []string{"operation", "outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carewell",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Total slot booking attempts",
		}, []string{"outcome"}),
		bookingLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "carewell",
			Subsystem: "scheduling",
			Name:      "booking_latency_seconds",
			Help:      "Latency of the booking transaction",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.slotOpsTotal, m.bookingsTotal, m.bookingLatency)
	return m
}

func (m *SchedulingMetrics) ObserveSlotOp(operation, outcome string) {
	if m == nil {
		return
	}
	m.slotOpsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *SchedulingMetrics) ObserveBooking(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
	m.bookingLatency.WithLabelValues(outcome).Observe(seconds)
}
