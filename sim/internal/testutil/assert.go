// Package testutil provides shared test assertions for the sim, sim/stats
// and sim/experiment test packages.
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertSurvivalCurve checks that curve starts at population and never increases.
func AssertSurvivalCurve(t *testing.T, name string, curve []int, population int) {
	t.Helper()
	if len(curve) == 0 {
		t.Errorf("%s: empty survival curve", name)
		return
	}
	if curve[0] != population {
		t.Errorf("%s: curve[0] = %d, want population %d", name, curve[0], population)
	}
	for k := 1; k < len(curve); k++ {
		if curve[k] > curve[k-1] {
			t.Errorf("%s: curve increases at step %d: %d -> %d", name, k, curve[k-1], curve[k])
		}
		if curve[k] < 0 {
			t.Errorf("%s: negative count %d at step %d", name, curve[k], k)
		}
	}
}

// Mean returns the arithmetic mean computed by straightforward summation,
// as an independent reference for values produced by the code under test.
func Mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
