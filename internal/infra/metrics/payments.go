package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		SessionCreates,
		CallbackVerifications,
		OrderFinalizations,
		CallbackDuration,
	)
}

var (
	// Count of gateway session creations by result.
	// result: ok|fail
	SessionCreates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iris_session_creates_total",
			Help: "Count of gateway session-creation attempts by result.",
		},
		[]string{"result"},
	)

	// Count of callback authentications grouped by result and bounded reason.
	// result: ok|fail
	// reason (fail only): no_config|missing_fields|malformed_token|signature_mismatch|bad_payload|bad_cart_ref|gateway_error|unknown
	CallbackVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iris_callback_verifications_total",
			Help: "Count of callback authentication attempts by result and reason.",
		},
		[]string{"result", "reason"},
	)

	// Count of order finalization attempts by outcome.
	OrderFinalizations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iris_order_finalizations_total",
			Help: "Count of order finalizations by result.",
		},
		[]string{"result"},
	)

	// Latency of the whole callback handler grouped by result.
	CallbackDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iris_callback_duration_seconds",
			Help:    "Duration of the payment callback handler in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)
)
