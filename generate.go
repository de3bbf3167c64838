package irlib

import (
	"fmt"
	"math"
	"math/big"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dombrno/irlib/internal/linalg"
	"github.com/dombrno/irlib/internal/mp"
)

// sectorName tags singular triples with the factorization they came from, so
// instability reports can point at the offending sector.
type sectorName string

const (
	evenSector sectorName = "even"
	oddSector  sectorName = "odd"
)

type sectorResult struct {
	u, v *linalg.Matrix
	s    []*big.Float
}

type singularTriple struct {
	sector sectorName
	index  int
	sv     float64
	u, v   []*big.Float
}

// generateBasisFunctions runs the full pipeline: adaptive section edges,
// even/odd matrix assembly and factorization, the interleaved truncation
// merge, and conversion of the retained singular vectors into
// piecewise-polynomial basis functions on [-1,1].
func generateBasisFunctions(k Kernel, maxDim int, cutoff float64, nl, numNodes int, prec uint) (
	sv []float64, uBasis, vBasis []*PiecewisePolynomial, err error) {

	nodesX, nodesY := approximateNodesEvenSector(k, maxDim, cutoff, prec)
	edgesX := edgesFromNodes(nodesX, prec)
	edgesY := edgesFromNodes(nodesY, prec)
	dbg(os.Stderr, "[irlib] sections x=%d y=%d prec=%d\n", len(edgesX)-1, len(edgesY)-1, prec)

	// The even and odd sectors are independent pure computations over their
	// own matrices; run them as two joined tasks.
	factorize := func(sign int) sectorResult {
		kc := k.Clone()
		sym := func(x, y *big.Float) *big.Float {
			my := new(big.Float).SetPrec(prec).Neg(y)
			v := kc.Evaluate(x, y, prec)
			r := kc.Evaluate(x, my, prec)
			if sign > 0 {
				return v.Add(v, r)
			}
			return v.Sub(v, r)
		}
		mat := matrixRep(sym, edgesX, edgesY, numNodes, nl, prec)
		u, s, v := linalg.SVD(mat, prec)
		return sectorResult{u: u, v: v, s: s}
	}

	var even, odd sectorResult
	var g errgroup.Group
	g.Go(func() error { even = factorize(+1); return nil })
	g.Go(func() error { odd = factorize(-1); return nil })
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	dbg(os.Stderr, "[irlib] factorizations done\n")

	triples := mergeTriples(even, odd, maxDim, cutoff)
	if err := validateDescending(triples); err != nil {
		return nil, nil, nil, err
	}

	uVecs := make([][]*big.Float, len(triples))
	vVecs := make([][]*big.Float, len(triples))
	sv = make([]float64, len(triples))
	for i, t := range triples {
		sv[i] = t.sv
		uVecs[i] = t.u
		vVecs[i] = t.v
	}

	uBasis = buildPiecewise(edgesX, uVecs, nl, prec)
	vBasis = buildPiecewise(edgesY, vVecs, nl, prec)

	// Fix the overall sign per basis index: u_l(1) >= 0, with the paired
	// v function flipped alongside.
	for l := range uBasis {
		if uBasis[l].Evaluate(1) < 0 {
			uBasis[l] = uBasis[l].Scale(-1)
			vBasis[l] = vBasis[l].Scale(-1)
		}
	}
	return sv, uBasis, vBasis, nil
}

// mergeTriples interleaves the even and odd singular triples in lock step.
// Even index i maps to basis index 2i, odd index i to 2i+1. The relative
// cutoff is always referenced to the even-sector leading singular value.
func mergeTriples(even, odd sectorResult, maxDim int, cutoff float64) []singularTriple {
	s0, _ := even.s[0].Float64()
	var out []singularTriple
	for i := 0; ; i++ {
		if len(out) == maxDim || i >= len(even.s) {
			break
		}
		si, _ := even.s[i].Float64()
		if si/s0 < cutoff {
			break
		}
		out = append(out, singularTriple{sector: evenSector, index: i, sv: si,
			u: even.u.Col(i), v: even.v.Col(i)})

		if len(out) == maxDim || i >= len(odd.s) {
			break
		}
		si, _ = odd.s[i].Float64()
		if si/s0 < cutoff {
			break
		}
		out = append(out, singularTriple{sector: oddSector, index: i, sv: si,
			u: odd.u.Col(i), v: odd.v.Col(i)})
	}
	return out
}

// validateDescending rejects a merged sequence that is not non-increasing.
// In exact arithmetic the interleaved sequence always descends; a violation
// means the working precision was too low for the requested dimension and
// silently truncating past it would hide wrong singular vectors.
func validateDescending(triples []singularTriple) error {
	for l := 0; l+1 < len(triples); l++ {
		if triples[l].sv < triples[l+1].sv {
			next := triples[l+1]
			return fmt.Errorf("irlib: merged singular values increase at basis index %d (%s sector, sector index %d); raise the working precision or request fewer basis functions: %w",
				l+1, next.sector, next.index, ErrNumericalInstability)
		}
	}
	return nil
}

// buildPiecewise re-expresses each singular vector, given as per-section
// Legendre-modal coefficients on the half domain [0,1], as a piecewise
// polynomial on the mirrored full domain [-1,1].
//
// Per section, the truncated Legendre expansion becomes a local power series
// about the section's left edge through the boundary-derivative table and
// inverse factorials (a fixed Nl x Nl change of basis). The mirrored section
// receives a parity-flipped copy: reflecting a section onto its negative
// counterpart multiplies the degree-l Legendre mode by (-1)^l, and the whole
// function by the basis-index parity.
func buildPiecewise(edges []*big.Float, vectors [][]*big.Float, nl int, prec uint) []*PiecewisePolynomial {
	numSec := len(edges) - 1

	ppEdges := []float64{0}
	for i := 1; i <= numSec; i++ {
		e, _ := edges[i].Float64()
		ppEdges = append(ppEdges, e, -e)
	}
	sort.Float64s(ppEdges)
	nsPP := len(ppEdges) - 1
	if nsPP != 2*numSec {
		panic("irlib: mirrored edge count mismatch")
	}

	deriv := mp.BoundaryDerivatives(nl, prec)
	invFact := mp.InverseFactorials(nl, prec)
	two := mp.NewFloat(2, prec)

	out := make([]*PiecewisePolynomial, len(vectors))
	for vi, vec := range vectors {
		if norm := vectorNorm(vec, prec); math.Abs(norm-1) > 1e-8 {
			panic(fmt.Sprintf("irlib: singular vector %d not unit norm (%g)", vi, norm))
		}
		parity := 1.0
		if vi%2 != 0 {
			parity = -1.0
		}

		coeff := make([][]float64, nsPP)
		for s := range coeff {
			coeff[s] = make([]float64, nl)
		}
		t := new(big.Float).SetPrec(prec)
		for s := 0; s < numSec; s++ {
			width := new(big.Float).SetPrec(prec).Sub(edges[s+1], edges[s])
			twoOverWidth := new(big.Float).SetPrec(prec).Quo(two, width)
			for l := 0; l < nl; l++ {
				// Carries the 1/sqrt(2) half-domain weight: the mirrored
				// copies together restore the unit norm on [-1,1].
				scale := new(big.Float).SetPrec(prec).Sqrt(width)
				scale.Quo(mp.NewFloat(1, prec), scale)
				modal := vec[s*nl+l]
				legSign := 1.0
				if l%2 != 0 {
					legSign = -1.0
				}
				for d := 0; d < nl; d++ {
					t.Mul(invFact[d], scale)
					t.Mul(t, modal)
					t.Mul(t, deriv[l][d])
					tmp, _ := t.Float64()
					coeff[s+nsPP/2][d] += tmp
					coeff[nsPP/2-1-s][d] += parity * legSign * tmp
					scale.Mul(scale, twoOverWidth)
				}
			}
		}
		pp, err := NewPiecewisePolynomial(ppEdges, coeff)
		if err != nil {
			panic("irlib: " + err.Error())
		}
		out[vi] = pp
	}
	return out
}

func vectorNorm(vec []*big.Float, prec uint) float64 {
	acc := new(big.Float).SetPrec(prec)
	t := new(big.Float).SetPrec(prec)
	for _, v := range vec {
		acc.Add(acc, t.Mul(v, v))
	}
	acc.Sqrt(acc)
	f, _ := acc.Float64()
	return f
}
