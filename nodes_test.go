package irlib

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBisect(t *testing.T) {
	f := func(x float64) float64 { return x*x - 0.25 }
	root, ok := bisect(f, 0, 1, 1e-12, 250)
	require.True(t, ok)
	require.InDelta(t, 0.5, root, 1e-11)

	// Exhausted budget still yields the bracket midpoint.
	root, ok = bisect(f, 0, 1, 1e-12, 3)
	require.False(t, ok)
	require.Greater(t, root, 0.0)
	require.Less(t, root, 1.0)
}

func TestLegendreAll64(t *testing.T) {
	vals := legendreAll64(4, 0.5)
	require.InDelta(t, math.Sqrt(0.5), vals[0], 1e-14)
	require.InDelta(t, math.Sqrt(1.5)*0.5, vals[1], 1e-14)
	require.InDelta(t, math.Sqrt(2.5)*(1.5*0.25-0.5), vals[2], 1e-14)
	require.InDelta(t, math.Sqrt(3.5)*(-0.4375), vals[3], 1e-14)
}

func TestSignChangeLocations(t *testing.T) {
	// A single section carrying only the degree-2 Legendre mode: the
	// profile is proportional to P_2(2x-1), with roots at (1±1/sqrt(3))/2.
	edges := []float64{0, 1}
	vec := make([]float64, estimatorNl)
	vec[2] = 1
	roots := signChangeLocations(vec, edges)
	require.Len(t, roots, 2)
	require.InDelta(t, 0.5-0.5/math.Sqrt(3), roots[0], 1e-10)
	require.InDelta(t, 0.5+0.5/math.Sqrt(3), roots[1], 1e-10)
	for i := 1; i < len(roots); i++ {
		require.Greater(t, roots[i], roots[i-1])
	}
}

func TestUniformInteriorNodes(t *testing.T) {
	nodes := uniformInteriorNodes(4)
	require.Equal(t, []float64{0.25, 0.5, 0.75}, nodes)
}

func TestSettled(t *testing.T) {
	require.True(t, settled([]float64{0.1, 0.2}, []float64{0.1, 0.2}))
	require.False(t, settled([]float64{0.1}, []float64{0.1, 0.2}))
	require.False(t, settled([]float64{0.1, 0.3}, []float64{0.1, 0.2}))
}

func TestDiscretizedProfileMatchesLegendre(t *testing.T) {
	// Single section [0,1]: the profile of unit mode l is
	// sqrt(2)*normalized P_l(2x-1).
	vec := make([]float64, estimatorNl)
	vec[2] = 1
	f := discretizedProfile(vec, []float64{0, 1}, estimatorNl)
	for _, x := range []float64{0.1, 0.4, 0.9} {
		tt := 2*x - 1
		want := math.Sqrt(2) * math.Sqrt(2.5) * (1.5*tt*tt - 0.5)
		require.InDelta(t, want, f(x), 1e-12)
	}
}
