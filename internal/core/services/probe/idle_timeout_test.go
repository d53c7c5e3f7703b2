package probe

import (
	"context"
	"testing"
	"time"

	"github.com/ssmendon/sdnprobe/internal/adapters/transport/mock"
	"github.com/stretchr/testify/require"
)

// simulatedClock lets a test advance a mock.Transport's notion of time
// without sleeping in wall-clock time.
func simulatedClock() (now func() time.Time, advance func(ctx context.Context, d time.Duration) error) {
	base := time.Now()
	var elapsed time.Duration
	now = func() time.Time { return base.Add(elapsed) }
	advance = func(ctx context.Context, d time.Duration) error {
		elapsed += d
		return nil
	}
	return now, advance
}

func TestIdleTimeoutProber_DetectsEvictionAtSevenSeconds(t *testing.T) {
	transport := mock.New()
	transport.IdleTimeout = 7 * time.Second
	transport.Jitter = 0

	now, advance := simulatedClock()
	transport.Clock = now

	sampler := &RttSampler{Transport: transport, Timeout: time.Second}
	prober := NewIdleTimeoutProber(sampler, 60)
	prober.Sleep = advance

	idle, err := prober.Run(context.Background(), "10.0.0.1", "10.0.0.2")
	require.NoError(t, err)
	require.Equal(t, 7, idle)
}

// A very short idle timeout (shorter than the smallest binary-search probe
// interval) pushes the search toward its lower bound instead of its upper
// one, per the sign convention pinned by TestIdleTimeoutProber_DetectsEvictionAtSevenSeconds.
func TestIdleTimeoutProber_VeryShortIdleTimeout(t *testing.T) {
	transport := mock.New()
	transport.IdleTimeout = time.Second
	transport.Jitter = 0

	now, advance := simulatedClock()
	transport.Clock = now

	sampler := &RttSampler{Transport: transport, Timeout: time.Second}
	prober := NewIdleTimeoutProber(sampler, 60)
	prober.Sleep = advance

	idle, err := prober.Run(context.Background(), "10.0.0.1", "10.0.0.2")
	require.NoError(t, err)
	require.Equal(t, 1, idle)
}

func TestIdleTimeoutProber_TerminatesWithinLogBound(t *testing.T) {
	transport := mock.New()
	transport.IdleTimeout = 7 * time.Second
	transport.Jitter = 0

	now, advance := simulatedClock()
	transport.Clock = now

	iterations := 0
	countingAdvance := func(ctx context.Context, d time.Duration) error {
		iterations++
		return advance(ctx, d)
	}

	sampler := &RttSampler{Transport: transport, Timeout: time.Second}
	prober := NewIdleTimeoutProber(sampler, 60)
	prober.Sleep = countingAdvance

	_, err := prober.Run(context.Background(), "10.0.0.1", "10.0.0.2")
	require.NoError(t, err)
	// Two Sleep calls per iteration (the mid-second wait, then the
	// forced idle-gap reset); bound generously against log2(tSup+1).
	require.LessOrEqual(t, iterations, 2*8)
}
