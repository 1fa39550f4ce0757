package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	cooldownRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cooldown_rejections_total",
			Help: "Commands rejected because the chat is still cooling down",
		},
		[]string{"command"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	providerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_provider_requests_total",
			Help: "Outbound price provider requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)
	providerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "price_provider_request_duration_seconds",
			Help:    "Latency of outbound price provider requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	activeAlertRules = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_rules_active",
			Help: "Current number of armed alert rules",
		},
	)
	alertSchedules = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_schedules_active",
			Help: "Current number of running alert evaluation schedules",
		},
	)
	alertsTriggeredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_triggered_total",
			Help: "Alert rules that reached their threshold",
		},
	)
	alertEvaluationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alert_evaluation_failures_total",
			Help: "Alert evaluations skipped because the current price could not be fetched",
		},
	)
	relayDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_deliveries_total",
			Help: "Forwarded feed messages delivered to subscribers by result",
		},
		[]string{"result"},
	)
	relaySubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_subscribers",
			Help: "Subscribers seen at the last fan-out",
		},
	)
)

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordCooldownRejection counts a command dropped by the per-chat cooldown.
func RecordCooldownRejection(command string) {
	if command == "" {
		command = "unknown"
	}
	cooldownRejectionsTotal.WithLabelValues(command).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// RecordProviderRequest tracks one call to the price provider.
func RecordProviderRequest(endpoint, status string, duration time.Duration) {
	providerRequestsTotal.WithLabelValues(endpoint, status).Inc()
	providerRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func SetActiveAlertRules(count int) {
	activeAlertRules.Set(float64(count))
}

func SetAlertSchedules(count int) {
	alertSchedules.Set(float64(count))
}

func RecordAlertTriggered() {
	alertsTriggeredTotal.Inc()
}

func RecordAlertEvaluationFailure() {
	alertEvaluationFailuresTotal.Inc()
}

// RecordRelayDelivery counts one fan-out attempt; result is "delivered" or "failed".
func RecordRelayDelivery(result string) {
	relayDeliveriesTotal.WithLabelValues(result).Inc()
}

func SetRelaySubscribers(count int) {
	relaySubscribers.Set(float64(count))
}
