package irlib

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dombrno/irlib/internal/mp"
)

func newBig(x float64, prec uint) *big.Float {
	return mp.NewFloat(x, prec)
}

// gaussLegendre64 returns an n-point Gauss-Legendre rule on [-1,1] in
// double precision, derived from the multiprecision rule.
func gaussLegendre64(n int) (nodes, weights []float64) {
	rule := mp.GaussLegendre(n, 100)
	nodes = make([]float64, n)
	weights = make([]float64, n)
	for i, q := range rule {
		nodes[i], _ = q.X.Float64()
		weights[i], _ = q.W.Float64()
	}
	return nodes, weights
}

// integrateProduct computes the integral of f times pp over pp's domain by
// composite Gauss-Legendre quadrature on pp's own sections.
func integrateProduct(t *testing.T, f func(float64) float64, pp *PiecewisePolynomial) float64 {
	t.Helper()
	nodes, weights := gaussLegendre64(24)
	edges := pp.SectionEdges()
	sum := 0.0
	for s := 0; s+1 < len(edges); s++ {
		a, bEdge := edges[s], edges[s+1]
		half := 0.5 * (bEdge - a)
		mid := 0.5 * (bEdge + a)
		for i, xi := range nodes {
			x := mid + half*xi
			sum += half * weights[i] * f(x) * pp.Evaluate(x)
		}
	}
	require.False(t, sum != sum, "integral is NaN")
	return sum
}
