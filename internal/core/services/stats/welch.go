// Package stats implements Welch's unequal-variance t-test over RTT
// samples, the statistical core of both the field-presence probe and the
// binary-search timeout probers.
package stats

import (
	"math"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Alternative selects a one-sided or two-sided test.
type Alternative int

const (
	// TwoSided tests whether the two sample means differ at all.
	TwoSided Alternative = iota
	// GreaterThan tests whether sample a's mean exceeds sample b's mean.
	GreaterThan
)

// WelchResult is the outcome of a two-sample Welch's t-test.
type WelchResult struct {
	T  float64
	DF float64
	P  float64
}

// finiteSamples drops +Inf (timeout-sentinel) entries, per spec.md's policy
// of omitting unanswered probes from the statistical comparison rather than
// letting them dominate the variance.
func finiteSamples(rtts []domain.RTT) []float64 {
	out := make([]float64, 0, len(rtts))
	for _, r := range rtts {
		if r.IsInf() {
			continue
		}
		out = append(out, float64(r))
	}
	return out
}

// WelchTTest compares two RTT sample sets. If either sample (after dropping
// +Inf entries) has fewer than two values, the measurement is degenerate:
// the result is reported as maximally insignificant (p=1) rather than
// failing the caller, per spec.md §7's MeasurementDegenerate policy. Two
// samples that are each internally constant (zero variance) are compared
// by their means directly, since the usual standard-error denominator
// vanishes.
func WelchTTest(a, b []domain.RTT, alt Alternative) WelchResult {
	fa := finiteSamples(a)
	fb := finiteSamples(b)

	if len(fa) < 2 || len(fb) < 2 {
		return WelchResult{P: 1}
	}

	meanA, varA := stat.MeanVariance(fa, nil)
	meanB, varB := stat.MeanVariance(fb, nil)

	na, nb := float64(len(fa)), float64(len(fb))
	se2 := varA/na + varB/nb
	if se2 <= 0 {
		// Both samples are internally constant (zero variance). If their
		// means also match, the samples are truly indistinguishable. If
		// not, a t-statistic over a zero denominator is infinite: maximally
		// significant in the direction the means actually differ.
		if meanA == meanB {
			return WelchResult{P: 1}
		}
		t := math.Inf(1)
		if meanA < meanB {
			t = math.Inf(-1)
		}
		var p float64
		if alt == GreaterThan {
			p = 0
			if meanA < meanB {
				p = 1
			}
		} else {
			p = 0
		}
		return WelchResult{T: t, P: p}
	}
	se := math.Sqrt(se2)

	t := (meanA - meanB) / se

	df := se2 * se2 / ((varA/na)*(varA/na)/(na-1) + (varB/nb)*(varB/nb)/(nb-1))
	if math.IsNaN(df) || math.IsInf(df, 0) || df <= 0 {
		return WelchResult{P: 1}
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}

	var p float64
	switch alt {
	case GreaterThan:
		p = 1 - dist.CDF(t)
	default:
		p = 2 * (1 - dist.CDF(math.Abs(t)))
	}

	return WelchResult{T: t, DF: df, P: p}
}
