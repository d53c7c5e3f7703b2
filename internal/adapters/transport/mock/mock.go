// Package mock implements ports.Transport as a deterministic in-memory
// SDN flow table simulator, so the probing and attack packages can be
// exercised without a live switch or raw sockets, the teacher's MockSniffer
// pattern generalized from fabricated 802.11 devices to a fabricated
// flow-table miss/hit timing side channel.
package mock

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/ssmendon/sdnprobe/internal/core/ports"
)

// flowState tracks one simulated flow entry keyed by source MAC.
type flowState struct {
	installedAt time.Time
	lastHitAt   time.Time
}

// Transport simulates a switch that installs a flow on the first packet
// from a MAC, evicts it after HardTimeout (if nonzero) regardless of
// activity, and evicts it after IdleTimeout (if nonzero) of inactivity.
// A packet that misses the flow table incurs MissLatency (the
// controller-install round trip); a packet that hits incurs HitLatency.
type Transport struct {
	HardTimeout time.Duration // 0 means no hard timeout enforced
	IdleTimeout time.Duration // 0 means no idle timeout enforced
	HitLatency  time.Duration
	MissLatency time.Duration
	// Jitter bounds a uniform random wobble added to every latency, modeling
	// the timing noise a real switch's control-plane round trip would have.
	Jitter time.Duration

	mu    sync.Mutex
	flows map[string]*flowState

	Sent  int
	Clock func() time.Time // overridable for tests; defaults to time.Now
}

func New() *Transport {
	return &Transport{
		HitLatency:  time.Millisecond,
		MissLatency: 5 * time.Millisecond,
		Jitter:      100 * time.Microsecond,
		flows:       make(map[string]*flowState),
		Clock:       time.Now,
	}
}

func (t *Transport) jittered(latency time.Duration) time.Duration {
	if t.Jitter <= 0 {
		return latency
	}
	wobble := time.Duration(rand.Int63n(int64(t.Jitter)))
	return latency + wobble
}

func (t *Transport) now() time.Time { return t.Clock() }

// observe records pkt's arrival against the simulated flow table and
// returns whether it was a miss (fresh install).
func (t *Transport) observe(pkt domain.ProbePacket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Sent++

	now := t.now()
	flow, exists := t.flows[pkt.SrcMAC]
	if exists {
		expired := false
		if t.HardTimeout > 0 && now.Sub(flow.installedAt) >= t.HardTimeout {
			expired = true
		}
		if t.IdleTimeout > 0 && now.Sub(flow.lastHitAt) >= t.IdleTimeout {
			expired = true
		}
		if expired {
			exists = false
		}
	}

	if !exists {
		t.flows[pkt.SrcMAC] = &flowState{installedAt: now, lastHitAt: now}
		return true
	}
	flow.lastHitAt = now
	return false
}

func (t *Transport) SendAndRecv(ctx context.Context, pkt domain.ProbePacket, timeout time.Duration) (domain.RTT, error) {
	miss := t.observe(pkt)
	latency := t.HitLatency
	if miss {
		latency = t.MissLatency
	}
	latency = t.jittered(latency)
	if latency > timeout {
		return domain.InfRTT, nil
	}

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(latency):
		return domain.RTT(latency.Seconds()), nil
	}
}

func (t *Transport) Send(ctx context.Context, pkt domain.ProbePacket) error {
	t.observe(pkt)
	return nil
}

func (t *Transport) PacingSend(ctx context.Context, pkts []domain.ProbePacket, pps int) error {
	if pps <= 0 {
		pps = 1
	}
	interval := time.Second / time.Duration(pps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for _, pkt := range pkts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if err := t.Send(ctx, pkt); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transport) Close() error { return nil }

var _ ports.Transport = (*Transport)(nil)
