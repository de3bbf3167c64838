package irlib

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dombrno/irlib/internal/mp"
)

func TestCompositeGaussLegendre(t *testing.T) {
	edges := edgesFromNodes([]float64{0.1, 0.4}, testPrec)
	local := mp.GaussLegendre(6, testPrec)
	nodes := compositeGaussLegendre(edges, local, testPrec)
	require.Len(t, nodes, 3*6)

	sum := 0.0
	linear := 0.0
	for _, n := range nodes {
		x, _ := n.X.Float64()
		w, _ := n.W.Float64()
		require.GreaterOrEqual(t, x, 0.0)
		require.LessOrEqual(t, x, 1.0)
		sum += w
		linear += w * x
	}
	require.InDelta(t, 1.0, sum, 1e-14)
	require.InDelta(t, 0.5, linear, 1e-14)
}

func TestMatrixRepConstantKernel(t *testing.T) {
	const nl = 4
	one := func(x, y *big.Float) *big.Float { return mp.NewFloat(1, testPrec) }
	edges := edgesFromNodes([]float64{0.5}, testPrec)
	mat := matrixRep(one, edges, edges, 12, nl, testPrec)
	require.Equal(t, 2*nl, mat.Rows)

	// A constant kernel projects onto the l=0 modes only:
	// entry = sqrt(width_s) * sqrt(width_s2).
	for s := 0; s < 2; s++ {
		for s2 := 0; s2 < 2; s2++ {
			for l := 0; l < nl; l++ {
				for l2 := 0; l2 < nl; l2++ {
					got, _ := mat.At(nl*s+l, nl*s2+l2).Float64()
					want := 0.0
					if l == 0 && l2 == 0 {
						want = math.Sqrt(0.5) * math.Sqrt(0.5)
					}
					require.InDelta(t, want, got, 1e-14, "entry (%d,%d,%d,%d)", s, l, s2, l2)
				}
			}
		}
	}
}

func TestMatrixRepSeparableKernel(t *testing.T) {
	// K(x,y) = x*y is rank one on [0,1]^2 with the single singular value
	// int_0^1 x^2 dx = 1/3, which the projected matrix must reproduce.
	const nl = 4
	xy := func(x, y *big.Float) *big.Float {
		return new(big.Float).SetPrec(testPrec).Mul(x, y)
	}
	edges := edgesFromNodes([]float64{0.5}, testPrec)
	mat := matrixRep(xy, edges, edges, 12, nl, testPrec)

	// Frobenius norm equals the single singular value:
	// ||K||_HS = int x^2 dx over [0,1] = 1/3.
	frob := 0.0
	for i := 0; i < mat.Rows; i++ {
		for j := 0; j < mat.Cols; j++ {
			v, _ := mat.At(i, j).Float64()
			frob += v * v
		}
	}
	require.InDelta(t, 1.0/3.0, math.Sqrt(frob), 1e-13)
}
