package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	ChatIncomingMessages *prometheus.CounterVec
	ChatReplies          *prometheus.CounterVec
	IntentMatches        *prometheus.CounterVec
	OutboundMessages     *prometheus.CounterVec
	OutboundLatency      *prometheus.HistogramVec
	Registrations        *prometheus.CounterVec
	Errors               *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
// The first call wins: the namespace of subsequent calls is ignored and the
// original instance is returned.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			ChatIncomingMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_incoming_messages_total",
				Help:      "Total chat messages received by channel.",
			}, []string{"channel"}),
			ChatReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_replies_total",
				Help:      "Total chat replies sent by channel.",
			}, []string{"channel"}),
			IntentMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "intent_matches_total",
				Help:      "Total intent resolutions by resolved intent.",
			}, []string{"intent"}),
			OutboundMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbound_messages_total",
				Help:      "Total outbound campaign messages by category and status.",
			}, []string{"category", "status"}),
			OutboundLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "outbound_send_duration_seconds",
				Help:      "Latency distribution for outbound WhatsApp sends.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"status"}),
			Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_registrations_total",
				Help:      "Total client registrations by kind (new or returning).",
			}, []string{"kind"}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.ChatIncomingMessages,
			metricsInstance.ChatReplies,
			metricsInstance.IntentMatches,
			metricsInstance.OutboundMessages,
			metricsInstance.OutboundLatency,
			metricsInstance.Registrations,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
