package stats

import (
	"testing"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func rtts(vs ...float64) []domain.RTT {
	out := make([]domain.RTT, len(vs))
	for i, v := range vs {
		out[i] = domain.RTT(v)
	}
	return out
}

func TestWelchTTest_IdenticalSamplesHighP(t *testing.T) {
	a := rtts(0.01, 0.011, 0.0105, 0.0098, 0.0102)
	b := rtts(0.01, 0.0101, 0.0099, 0.0103, 0.0097)
	res := WelchTTest(a, b, TwoSided)
	assert.Greater(t, res.P, 0.05)
}

func TestWelchTTest_ClearlyDifferentLowP(t *testing.T) {
	a := rtts(0.01, 0.0101, 0.0099, 0.0102, 0.0098)
	b := rtts(0.05, 0.0501, 0.0499, 0.0502, 0.0498)
	res := WelchTTest(a, b, TwoSided)
	assert.Less(t, res.P, 0.01)
}

func TestWelchTTest_GreaterThanDirectional(t *testing.T) {
	a := rtts(0.05, 0.0501, 0.0499, 0.0502, 0.0498)
	b := rtts(0.01, 0.0101, 0.0099, 0.0102, 0.0098)
	res := WelchTTest(a, b, GreaterThan)
	assert.Less(t, res.P, 0.01)

	reversed := WelchTTest(b, a, GreaterThan)
	assert.Greater(t, reversed.P, 0.9)
}

func TestWelchTTest_AllTimeoutsDegenerate(t *testing.T) {
	a := []domain.RTT{domain.InfRTT, domain.InfRTT, domain.InfRTT}
	b := rtts(0.01, 0.0101, 0.0099)
	res := WelchTTest(a, b, TwoSided)
	assert.Equal(t, 1.0, res.P)
}

func TestWelchTTest_TooFewSamplesDegenerate(t *testing.T) {
	a := rtts(0.01)
	b := rtts(0.01, 0.02, 0.03)
	res := WelchTTest(a, b, TwoSided)
	assert.Equal(t, 1.0, res.P)
}

func TestWelchTTest_ZeroVarianceIdenticalDegenerate(t *testing.T) {
	a := rtts(0.01, 0.01, 0.01)
	b := rtts(0.01, 0.01, 0.01)
	res := WelchTTest(a, b, TwoSided)
	assert.Equal(t, 1.0, res.P)
}

func TestWelchTTest_MixedInfAndFiniteSamples(t *testing.T) {
	a := []domain.RTT{domain.InfRTT, 0.01, 0.0101, 0.0099}
	b := rtts(0.01, 0.0101, 0.0099, 0.0102)
	res := WelchTTest(a, b, TwoSided)
	assert.Greater(t, res.P, 0.05)
}
