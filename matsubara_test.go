package irlib

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"
)

// directTransform evaluates (1/sqrt(2)) * int_{-1}^{1} u_l(x) exp(i*w*(x+1)) dx
// by brute-force quadrature, subdividing each section finely enough to resolve
// the oscillation. Slow, but an independent check of the closed-form path.
func directTransform(t *testing.T, b *Basis, l int, w float64) complex128 {
	t.Helper()
	ul, err := b.BasisFunctionU(l)
	require.NoError(t, err)
	nodes, weights := gaussLegendre64(24)

	var sum complex128
	edges := ul.SectionEdges()
	for s := 0; s+1 < len(edges); s++ {
		h := edges[s+1] - edges[s]
		// At least four panels per oscillation period.
		panels := 1 + int(2*math.Abs(w)*h/math.Pi)
		ph := h / float64(panels)
		for p := 0; p < panels; p++ {
			a := edges[s] + float64(p)*ph
			half := 0.5 * ph
			mid := a + half
			for i, xi := range nodes {
				x := mid + half*xi
				sum += complex(half*weights[i]*ul.Evaluate(x), 0) *
					cmplx.Exp(complex(0, w*(x+1)))
			}
		}
	}
	return sum * complex(1/math.Sqrt2, 0)
}

func TestFrequencyTransformMatchesQuadrature(t *testing.T) {
	b := testBasis(t, Fermionic, 0.1, 10)
	n := []int64{0, 1, 10, 100, 1000}
	tn, err := b.ComputeFrequencyTransform(n)
	require.NoError(t, err)
	require.Len(t, tn, len(n))

	for i, nn := range n {
		require.Len(t, tn[i], b.Dim())
		w := math.Pi * (float64(nn) + 0.5)
		rowMax := 0.0
		for l := 0; l < b.Dim(); l++ {
			if m := cmplx.Abs(tn[i][l]); m > rowMax {
				rowMax = m
			}
		}
		require.Greater(t, rowMax, 0.0)
		for l := 0; l < b.Dim(); l++ {
			want := directTransform(t, b, l, w)
			require.InDelta(t, real(want), real(tn[i][l]), 1e-5*rowMax,
				"n=%d l=%d real", nn, l)
			require.InDelta(t, imag(want), imag(tn[i][l]), 1e-5*rowMax,
				"n=%d l=%d imag", nn, l)
		}
	}
}

func TestFrequencyTransformParityStructure(t *testing.T) {
	b := testBasis(t, Fermionic, 0.1, 10)
	n := []int64{0, 3, 17}
	tn, err := b.ComputeFrequencyTransform(n)
	require.NoError(t, err)

	for i, nn := range n {
		phase := complex(0, 1)
		if nn%2 != 0 {
			phase = -phase
		}
		for l := 0; l < b.Dim(); l++ {
			z := tn[i][l] / phase
			if l%2 == 0 {
				require.Zero(t, imag(z), "n=%d even l=%d", nn, l)
			} else {
				require.Zero(t, real(z), "n=%d odd l=%d", nn, l)
			}
		}
	}
}

func TestShiftedFrequencyTransform(t *testing.T) {
	b := testBasis(t, Fermionic, 0.1, 10)
	o := []int64{0, 1, 2, 7}
	to, err := b.ComputeShiftedFrequencyTransform(o)
	require.NoError(t, err)

	for i, oo := range o {
		w := 0.5 * math.Pi * float64(oo)
		rowMax := 0.0
		for l := 0; l < b.Dim(); l++ {
			if m := cmplx.Abs(to[i][l]); m > rowMax {
				rowMax = m
			}
		}
		require.Greater(t, rowMax, 0.0)
		for l := 0; l < b.Dim(); l++ {
			want := directTransform(t, b, l, w)
			require.InDelta(t, real(want), real(to[i][l]), 1e-5*rowMax,
				"o=%d l=%d real", oo, l)
			require.InDelta(t, imag(want), imag(to[i][l]), 1e-5*rowMax,
				"o=%d l=%d imag", oo, l)
		}
	}

	// At zero frequency odd basis functions integrate to zero by parity.
	for l := 1; l < b.Dim(); l += 2 {
		require.Zero(t, to[0][l], "odd l=%d at o=0", l)
	}
}

func TestFrequencyIndexValidation(t *testing.T) {
	b := testBasis(t, Fermionic, 0.1, 10)

	_, err := b.ComputeFrequencyTransform([]int64{-1, 0})
	require.ErrorIs(t, err, ErrConfiguration)
	_, err = b.ComputeFrequencyTransform([]int64{0, 2, 2})
	require.ErrorIs(t, err, ErrConfiguration)
	_, err = b.ComputeShiftedFrequencyTransform([]int64{3, 1})
	require.ErrorIs(t, err, ErrConfiguration)

	empty, err := b.ComputeFrequencyTransform(nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}
