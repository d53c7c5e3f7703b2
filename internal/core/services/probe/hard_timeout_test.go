package probe

import (
	"context"
	"testing"
	"time"

	"github.com/ssmendon/sdnprobe/internal/adapters/transport/mock"
	"github.com/stretchr/testify/require"
)

func TestHardTimeoutProber_DetectsEviction(t *testing.T) {
	transport := mock.New()
	transport.HardTimeout = 3 * time.Second

	sampler := &RttSampler{Transport: transport, Timeout: time.Second}
	prober := NewHardTimeoutProber(sampler)
	prober.TWait = time.Second
	prober.TMax = 30 * time.Second

	base := time.Now()
	advance := 0 * time.Second
	transport.Clock = func() time.Time { return base.Add(advance) }
	prober.Clock = func() time.Time { return base.Add(advance) }
	prober.Sleep = func(ctx context.Context, d time.Duration) error {
		advance += d
		return nil
	}

	hard, err := prober.Run(context.Background(), "10.0.0.1", "10.0.0.2")
	require.NoError(t, err)
	require.GreaterOrEqual(t, hard, 3)
}

func TestHardTimeoutProber_NoTimeoutHitsBudget(t *testing.T) {
	transport := mock.New()

	sampler := &RttSampler{Transport: transport, Timeout: time.Second}
	prober := NewHardTimeoutProber(sampler)
	prober.TWait = time.Second
	prober.TMax = 5 * time.Second

	base := time.Now()
	advance := 0 * time.Second
	transport.Clock = func() time.Time { return base.Add(advance) }
	prober.Clock = func() time.Time { return base.Add(advance) }
	prober.Sleep = func(ctx context.Context, d time.Duration) error {
		advance += d
		return nil
	}

	hard, err := prober.Run(context.Background(), "10.0.0.1", "10.0.0.2")
	require.NoError(t, err)
	require.Equal(t, 0, hard)
}
