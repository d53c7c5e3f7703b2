// Package ports defines the collaborator interfaces the probing and attack
// engines are built against, following the teacher's hexagonal
// core/ports convention.
package ports

import (
	"context"
	"time"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
)

// Transport is the PacketIO collaborator from spec.md §6: it sends a
// crafted frame and returns an RTT or timeout, sends fire-and-forget, and
// paces a bulk transmission at a target packet rate.
type Transport interface {
	// SendAndRecv emits one frame and waits up to timeout for a matching
	// reply, returning the elapsed RTT or domain.InfRTT on timeout.
	SendAndRecv(ctx context.Context, pkt domain.ProbePacket, timeout time.Duration) (domain.RTT, error)

	// Send emits one frame with no reply expected.
	Send(ctx context.Context, pkt domain.ProbePacket) error

	// PacingSend emits pkts at a mean rate of pps packets per second,
	// preserving order within the batch, returning once the batch is
	// drained.
	PacingSend(ctx context.Context, pkts []domain.ProbePacket, pps int) error

	// Close releases the underlying socket/handle.
	Close() error
}
