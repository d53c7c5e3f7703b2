// Package probe implements the timing-based timeout inference engine: the
// RTT sampler, the field-presence probe, and the hard/idle timeout probers
// built on top of it (spec.md §4.2-4.5).
package probe

import (
	"context"
	"log/slog"
	"time"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/ssmendon/sdnprobe/internal/core/ports"
	"github.com/ssmendon/sdnprobe/internal/telemetry"
)

// DefaultSampleTimeout is the per-packet reply wait from spec.md §4.2.
const DefaultSampleTimeout = 5 * time.Second

// metricLabel identifies this sampler's probe kind to the ProbesSent/
// ProbesTimedOut/RTTSamples metric vectors.
const metricLabel = "rtt_sampler"

// RttSampler sends each packet in a batch exactly once and records the
// resulting RTT, over a ports.Transport collaborator.
type RttSampler struct {
	Transport ports.Transport
	Timeout   time.Duration
}

// NewRttSampler builds a sampler with the spec's default 5s reply timeout.
func NewRttSampler(t ports.Transport) *RttSampler {
	return &RttSampler{Transport: t, Timeout: DefaultSampleTimeout}
}

// SampleBatch sends pkts in order, one send_and_recv per packet, and returns
// the parallel RTT vector. A negative (clock-glitch) RTT is clamped to zero
// and logged, per spec.md §3.
func (s *RttSampler) SampleBatch(ctx context.Context, pkts []domain.ProbePacket) ([]domain.RTT, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultSampleTimeout
	}

	out := make([]domain.RTT, len(pkts))
	for i, pkt := range pkts {
		rtt, err := s.Transport.SendAndRecv(ctx, pkt, timeout)
		if err != nil {
			return nil, err
		}
		telemetry.ProbesSent.WithLabelValues(metricLabel).Inc()
		if rtt.IsInf() {
			telemetry.ProbesTimedOut.WithLabelValues(metricLabel).Inc()
		} else {
			if rtt < 0 {
				slog.Warn("probe: negative RTT coerced to zero", "src_mac", pkt.SrcMAC, "rtt", float64(rtt))
				rtt = rtt.Clamp()
			}
			telemetry.RTTSamples.WithLabelValues(metricLabel).Observe(float64(rtt))
		}
		out[i] = rtt
	}
	return out, nil
}
