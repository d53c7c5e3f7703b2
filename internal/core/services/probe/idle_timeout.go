package probe

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/ssmendon/sdnprobe/internal/core/services/stats"
)

// IdleTimeoutProber binary-searches the sleep interval at which an
// installed flow rule is evicted for inactivity (spec.md §4.5).
type IdleTimeoutProber struct {
	Sampler *RttSampler

	N     int     // batch size, default 5
	TSup  int     // upper search bound in seconds, default 60
	Alpha float64 // significance level, default 0.05
	Bit   int     // starting bit for MAC mutation, default 0
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewIdleTimeoutProber builds a prober with spec.md's default parameters.
// tSup is normally the hard timeout discovered by HardTimeoutProber, or 60
// if none was found.
func NewIdleTimeoutProber(sampler *RttSampler, tSup int) *IdleTimeoutProber {
	if tSup <= 0 {
		tSup = 60
	}
	return &IdleTimeoutProber{
		Sampler: sampler,
		N:       5,
		TSup:    tSup,
		Alpha:   0.05,
		Bit:     0,
		Sleep:   sleepCtx,
	}
}

func (p *IdleTimeoutProber) defaults() {
	if p.N <= 0 {
		p.N = 5
	}
	if p.TSup <= 0 {
		p.TSup = 60
	}
	if p.Alpha <= 0 {
		p.Alpha = 0.05
	}
	if p.Sleep == nil {
		p.Sleep = sleepCtx
	}
}

// Run executes the binary search from spec.md §4.5 against srcIP/dstIP and
// returns the discovered idle timeout in whole seconds, or 0 if none was
// detected. The fixed batch of n MAC identities is built once and reused
// across every iteration: idle-timer semantics are measured against a
// single flow, not a fresh one per probe.
//
// The sign convention below (r ← mid-1 when p > alpha, l ← mid+1
// otherwise) is preserved exactly as specified even though it reads
// backwards from the natural "rule survived ⇒ idle ≥ mid" binary search —
// see spec.md §9 open question 1. Test S7 pins this exact behavior.
func (p *IdleTimeoutProber) Run(ctx context.Context, srcIP, dstIP string) (int, error) {
	ctx, span := otel.Tracer("sdnprobe/probe").Start(ctx, "IdleTimeoutProber")
	defer span.End()
	span.SetAttributes(attribute.String("probe.src_ip", srcIP), attribute.String("probe.dst_ip", dstIP))

	p.defaults()

	base := domain.RandomMacIdentity()
	pkts, err := BuildBatch(base, srcIP, dstIP, p.Bit, p.N)
	if err != nil {
		return 0, err
	}

	l, r := 0, p.TSup
	for l < r {
		rtt0, err := p.Sampler.SampleBatch(ctx, pkts)
		if err != nil {
			return 0, err
		}

		mid := (l + r) / 2

		if err := p.Sleep(ctx, time.Duration(mid)*time.Second); err != nil {
			return 0, err
		}

		rtt1, err := p.Sampler.SampleBatch(ctx, pkts)
		if err != nil {
			return 0, err
		}

		res := stats.WelchTTest(rtt0, rtt1, stats.TwoSided)
		if res.P > p.Alpha {
			r = mid - 1
		} else {
			l = mid + 1
		}

		sleepFor := r
		if sleepFor < 0 {
			sleepFor = 0
		}
		if err := p.Sleep(ctx, time.Duration(sleepFor)*time.Second); err != nil {
			return 0, err
		}
	}

	l = int(math.Round(float64(l)))
	if l >= p.TSup {
		span.SetAttributes(attribute.Int("probe.idle_timeout_seconds", 0))
		return 0, nil
	}
	span.SetAttributes(attribute.Int("probe.idle_timeout_seconds", l))
	return l, nil
}
