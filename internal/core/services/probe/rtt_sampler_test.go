package probe

import (
	"context"
	"testing"
	"time"

	"github.com/ssmendon/sdnprobe/internal/adapters/transport/mock"
	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRttSampler_SampleBatch(t *testing.T) {
	transport := mock.New()
	sampler := NewRttSampler(transport)

	pkts := []domain.ProbePacket{
		{SrcMAC: "aa:bb:cc:dd:ee:00", SrcIP: "10.0.0.1", DstIP: "10.0.0.2", ICMPID: 1},
		{SrcMAC: "aa:bb:cc:dd:ee:01", SrcIP: "10.0.0.1", DstIP: "10.0.0.2", ICMPID: 2},
	}

	rtts, err := sampler.SampleBatch(context.Background(), pkts)
	require.NoError(t, err)
	require.Len(t, rtts, 2)
	for _, r := range rtts {
		assert.False(t, r.IsInf())
		assert.GreaterOrEqual(t, float64(r), 0.0)
	}
}

func TestRttSampler_TimeoutYieldsInfRTT(t *testing.T) {
	transport := mock.New()
	transport.MissLatency = 10 * time.Second

	sampler := &RttSampler{Transport: transport, Timeout: time.Millisecond}
	pkts := []domain.ProbePacket{{SrcMAC: "aa:bb:cc:dd:ee:02", SrcIP: "10.0.0.1", DstIP: "10.0.0.2", ICMPID: 3}}

	rtts, err := sampler.SampleBatch(context.Background(), pkts)
	require.NoError(t, err)
	assert.True(t, rtts[0].IsInf())
}
