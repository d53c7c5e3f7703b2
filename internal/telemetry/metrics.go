package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ProbesSent counts probe packets transmitted, by probe kind.
	ProbesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sdnprobe",
			Name:      "probes_sent_total",
			Help:      "Total number of probe packets transmitted",
		},
		[]string{"probe"},
	)

	// ProbesTimedOut counts probe packets that received no reply.
	ProbesTimedOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sdnprobe",
			Name:      "probes_timed_out_total",
			Help:      "Total number of probe packets that received no reply",
		},
		[]string{"probe"},
	)

	// RTTSamples observes RTT sample values in seconds, excluding timeouts.
	RTTSamples = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sdnprobe",
			Name:      "rtt_seconds",
			Help:      "Observed round-trip-time samples in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
		},
		[]string{"probe"},
	)

	// AttackPacketsSent counts flow-table-exhaustion packets transmitted.
	AttackPacketsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sdnprobe",
			Name:      "attack_packets_sent_total",
			Help:      "Total number of attack packets transmitted during a flow-table-exhaustion run",
		},
		[]string{"category"},
	)

	// AttackTransmissionErrors counts failed attack packet transmissions.
	AttackTransmissionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sdnprobe",
			Name:      "attack_transmission_errors_total",
			Help:      "Total number of failed attack packet transmissions",
		},
		[]string{"category"},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Idempotent: safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(ProbesSent)
		prometheus.DefaultRegisterer.Register(ProbesTimedOut)
		prometheus.DefaultRegisterer.Register(RTTSamples)
		prometheus.DefaultRegisterer.Register(AttackPacketsSent)
		prometheus.DefaultRegisterer.Register(AttackTransmissionErrors)
	})
}
