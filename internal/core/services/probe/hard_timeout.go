package probe

import (
	"context"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/ssmendon/sdnprobe/internal/core/services/stats"
)

// HardTimeoutProber detects the moment an installed flow rule is evicted by
// elapsed wall time alone, independent of traffic (spec.md §4.4).
type HardTimeoutProber struct {
	Sampler *RttSampler

	N      int           // batch size, default 5
	TWait  time.Duration // sleep between iterations, default 500ms
	TMax   time.Duration // probe budget, default 60s
	Alpha  float64       // significance level, default 0.05
	Bit    int           // starting bit for MAC mutation, default 0
	Sleep  func(ctx context.Context, d time.Duration) error
	Clock  func() time.Time
}

// NewHardTimeoutProber builds a prober with spec.md's default parameters.
func NewHardTimeoutProber(sampler *RttSampler) *HardTimeoutProber {
	return &HardTimeoutProber{
		Sampler: sampler,
		N:       5,
		TWait:   500 * time.Millisecond,
		TMax:    60 * time.Second,
		Alpha:   0.05,
		Bit:     0,
		Sleep:   sleepCtx,
		Clock:   time.Now,
	}
}

// sleepCtx sleeps d or returns early with ctx's error if it is cancelled
// first (spec.md §5's cancellation suspension point (b)).
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *HardTimeoutProber) defaults() {
	if p.N <= 0 {
		p.N = 5
	}
	if p.TWait <= 0 {
		p.TWait = 500 * time.Millisecond
	}
	if p.TMax <= 0 {
		p.TMax = 60 * time.Second
	}
	if p.Alpha <= 0 {
		p.Alpha = 0.05
	}
	if p.Sleep == nil {
		p.Sleep = sleepCtx
	}
	if p.Clock == nil {
		p.Clock = time.Now
	}
}

// Run executes the linear-wait protocol from spec.md §4.4 against
// srcIP/dstIP and returns the discovered hard timeout in whole seconds, or
// 0 if none was detected within TMax.
func (p *HardTimeoutProber) Run(ctx context.Context, srcIP, dstIP string) (int, error) {
	ctx, span := otel.Tracer("sdnprobe/probe").Start(ctx, "HardTimeoutProber")
	defer span.End()
	span.SetAttributes(attribute.String("probe.src_ip", srcIP), attribute.String("probe.dst_ip", dstIP))

	p.defaults()

	base := domain.RandomMacIdentity()
	pkts, err := BuildBatch(base, srcIP, dstIP, p.Bit, p.N)
	if err != nil {
		return 0, err
	}

	tStart := p.Clock()
	rtt0, err := p.Sampler.SampleBatch(ctx, pkts)
	if err != nil {
		return 0, err
	}

	var tEnd time.Time
	for {
		if err := p.Sleep(ctx, p.TWait); err != nil {
			return 0, err
		}
		tEnd = p.Clock()

		rtt1, err := p.Sampler.SampleBatch(ctx, pkts)
		if err != nil {
			return 0, err
		}

		res := stats.WelchTTest(rtt0, rtt1, stats.TwoSided)
		if math.IsNaN(res.P) {
			slog.Warn("hard timeout probe: degenerate p-value", "src_ip", srcIP, "dst_ip", dstIP)
		}

		elapsed := tEnd.Sub(tStart)
		if res.P > p.Alpha || elapsed > p.TMax {
			if elapsed > p.TMax {
				slog.Info("hard timeout probe: budget exceeded, no hard timeout", "elapsed", elapsed)
				span.SetAttributes(attribute.Int("probe.hard_timeout_seconds", 0))
				return 0, nil
			}
			seconds := int(math.Round(elapsed.Seconds()))
			span.SetAttributes(attribute.Int("probe.hard_timeout_seconds", seconds))
			return seconds, nil
		}
	}
}
