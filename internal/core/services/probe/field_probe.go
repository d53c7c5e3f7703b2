package probe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/ssmendon/sdnprobe/internal/core/services/stats"
)

// FieldPresenceProbe determines whether the flow-rule matcher includes the
// source-MAC field, the measurement-channel validation probe from
// spec.md §4.3. It is not consulted by the attack path; it exists to
// confirm the timing side channel the timeout probers rely on.
type FieldPresenceProbe struct {
	Sampler *RttSampler
	N       int     // defaults to 10
	Alpha   float64 // defaults to 0.05
}

// NewFieldPresenceProbe builds a field probe with spec.md's n=10, alpha=0.05
// defaults.
func NewFieldPresenceProbe(sampler *RttSampler) *FieldPresenceProbe {
	return &FieldPresenceProbe{Sampler: sampler, N: 10, Alpha: 0.05}
}

// Run returns maskExact ("ff:ff:ff:ff:ff:ff") when the test concludes the
// source-MAC field is matched exactly, maskIgnored ("00:00:00:00:00:00")
// otherwise.
const (
	maskExact   = "ff:ff:ff:ff:ff:ff"
	maskIgnored = "00:00:00:00:00:00"
)

// Run executes the protocol from spec.md §4.3 against srcIP/dstIP and
// returns the inferred matcher mask.
func (p *FieldPresenceProbe) Run(ctx context.Context, srcIP, dstIP string) (string, error) {
	ctx, span := otel.Tracer("sdnprobe/probe").Start(ctx, "FieldPresenceProbe")
	defer span.End()
	span.SetAttributes(attribute.String("probe.src_ip", srcIP), attribute.String("probe.dst_ip", dstIP))

	n := p.N
	if n <= 0 {
		n = 10
	}
	alpha := p.Alpha
	if alpha <= 0 {
		alpha = 0.05
	}

	base := domain.RandomMacIdentity()
	p0 := domain.ProbePacket{
		SrcMAC: base.String(),
		SrcIP:  srcIP,
		DstIP:  dstIP,
		ICMPID: randomICMPID(),
	}

	rtt0 := make([]domain.RTT, n)
	rtt1 := make([]domain.RTT, n)

	for i := 0; i < n; i++ {
		if _, err := p.Sampler.SampleBatch(ctx, []domain.ProbePacket{p0}); err != nil {
			return "", err
		}

		mac, err := base.Flip(i, true)
		if err != nil {
			return "", err
		}
		pi := domain.ProbePacket{
			SrcMAC: mac,
			SrcIP:  srcIP,
			DstIP:  dstIP,
			ICMPID: randomICMPID(),
		}

		r0, err := p.Sampler.SampleBatch(ctx, []domain.ProbePacket{pi})
		if err != nil {
			return "", err
		}
		r1, err := p.Sampler.SampleBatch(ctx, []domain.ProbePacket{pi})
		if err != nil {
			return "", err
		}
		rtt0[i] = r0[0]
		rtt1[i] = r1[0]
	}

	res := stats.WelchTTest(rtt0, rtt1, stats.GreaterThan)
	if res.P < alpha {
		return maskExact, nil
	}
	return maskIgnored, nil
}
