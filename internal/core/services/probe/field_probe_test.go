package probe

import (
	"context"
	"testing"

	"github.com/ssmendon/sdnprobe/internal/adapters/transport/mock"
	"github.com/stretchr/testify/require"
)

func TestFieldPresenceProbe_DetectsExactMatch(t *testing.T) {
	// The mock transport matches flows by exact source MAC, so every
	// bit-flipped identity installs a fresh rule: the probe should
	// conclude the MAC field is matched exactly.
	transport := mock.New()
	sampler := NewRttSampler(transport)
	probe := NewFieldPresenceProbe(sampler)

	mask, err := probe.Run(context.Background(), "10.0.0.1", "10.0.0.2")
	require.NoError(t, err)
	require.Equal(t, maskExact, mask)
}
