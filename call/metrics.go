package call

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	callsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tablevox_calls_started_total",
		Help: "Calls answered since startup.",
	})
	callsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tablevox_calls_completed_total",
		Help: "Calls that finished normally.",
	})
	callsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tablevox_calls_failed_total",
		Help: "Calls that ended with a telephony failure.",
	})
	earlyDisconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tablevox_calls_early_disconnected_total",
		Help: "Calls that hung up before completing a reservation.",
	})
	activeCalls = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tablevox_calls_active",
		Help: "Calls currently in progress.",
	})
	callDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tablevox_call_duration_seconds",
		Help:    "Duration of finished calls.",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
	})
	reservationsSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tablevox_reservations_saved_total",
		Help: "Reservations persisted to the database.",
	})
)

func init() {
	prometheus.MustRegister(
		callsStarted,
		callsCompleted,
		callsFailed,
		earlyDisconnects,
		activeCalls,
		callDuration,
		reservationsSaved,
	)
}

// CountReservationSaved increments the saved-reservation counter. Exposed
// for the layer that performs the persistence.
func CountReservationSaved() {
	reservationsSaved.Inc()
}
