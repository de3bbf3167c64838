package irlib

import (
	"math"
	"math/big"
	"os"
	"sort"

	"github.com/dombrno/irlib/internal/linalg"
	"github.com/dombrno/irlib/internal/mp"
)

// Estimator parameters. The bisection tolerance and iteration budget bound
// the per-root search; the outer loop re-discretizes on the freshly found
// nodes until their positions settle. Non-convergence at either level is
// recovered by keeping the best estimate found.
const (
	estimatorTol          = 1e-12
	estimatorMaxIter      = 250
	estimatorInitSections = 16
	estimatorNl           = 8
	estimatorNumNodes     = 10
	estimatorMaxOuter     = 10
	estimatorSettleTol    = 1e-8
)

// approximateNodesEvenSector estimates where the last resolvable even-sector
// singular functions change sign in (0,1), for the x and y directions. These
// locations become the section edges of the production discretization: the
// kernel's decay length scales with 1/Lambda, so a uniform grid would either
// over-resolve smooth regions or miss sharp ones.
func approximateNodesEvenSector(k Kernel, maxDim int, cutoff float64, prec uint) (nodesX, nodesY []float64) {
	nodesX = uniformInteriorNodes(estimatorInitSections)
	nodesY = uniformInteriorNodes(estimatorInitSections)

	kc := k.Clone()
	even := func(x, y *big.Float) *big.Float {
		my := new(big.Float).SetPrec(prec).Neg(y)
		v := kc.Evaluate(x, y, prec)
		return v.Add(v, kc.Evaluate(x, my, prec))
	}

	for outer := 0; outer < estimatorMaxOuter; outer++ {
		edgesX := edgesFromNodes(nodesX, prec)
		edgesY := edgesFromNodes(nodesY, prec)
		mat := matrixRep(even, edgesX, edgesY, estimatorNumNodes, estimatorNl, prec)
		u, s, v := linalg.SVD(mat, prec)

		last := lastResolvableIndex(s, maxDim, cutoff)
		if last <= 0 {
			// A one-dimensional even sector has no interior sign change.
			return nil, nil
		}
		dbg(os.Stderr, "[irlib] node estimator outer=%d sections=%d last=%d\n",
			outer, len(edgesX)-1, last)

		newX := signChangeLocations(columnFloat64(u, last), floatEdges(edgesX))
		newY := signChangeLocations(columnFloat64(v, last), floatEdges(edgesY))
		if len(newX) == 0 || len(newY) == 0 {
			break
		}
		if settled(newX, nodesX) && settled(newY, nodesY) {
			nodesX, nodesY = newX, newY
			break
		}
		nodesX, nodesY = newX, newY
	}
	return nodesX, nodesY
}

// uniformInteriorNodes returns the n-1 interior breakpoints of a uniform
// n-section partition of [0,1].
func uniformInteriorNodes(n int) []float64 {
	out := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		out = append(out, float64(i)/float64(n))
	}
	return out
}

// edgesFromNodes wraps interior nodes with the fixed endpoints 0 and 1.
func edgesFromNodes(nodes []float64, prec uint) []*big.Float {
	edges := make([]*big.Float, 0, len(nodes)+2)
	edges = append(edges, mp.NewFloat(0, prec))
	for _, n := range nodes {
		edges = append(edges, mp.NewFloat(n, prec))
	}
	return append(edges, mp.NewFloat(1, prec))
}

func floatEdges(edges []*big.Float) []float64 {
	out := make([]float64, len(edges))
	for i, e := range edges {
		out[i], _ = e.Float64()
	}
	return out
}

// lastResolvableIndex picks the most oscillatory singular vector that is
// still above the relative cutoff, additionally capped so the edge density
// tracks the requested basis size.
func lastResolvableIndex(s []*big.Float, maxDim int, cutoff float64) int {
	s0, _ := s[0].Float64()
	if s0 <= 0 {
		return 0
	}
	maxIdx := (maxDim+1)/2 - 1
	if maxIdx > len(s)-1 {
		maxIdx = len(s) - 1
	}
	last := 0
	for i := 1; i <= maxIdx; i++ {
		si, _ := s[i].Float64()
		if si/s0 < cutoff {
			break
		}
		last = i
	}
	return last
}

func columnFloat64(m *linalg.Matrix, j int) []float64 {
	out := make([]float64, m.Rows)
	for i := 0; i < m.Rows; i++ {
		out[i], _ = m.At(i, j).Float64()
	}
	return out
}

// discretizedProfile evaluates the half-domain function represented by a
// singular vector of per-section Legendre-modal coefficients.
func discretizedProfile(vec, edges []float64, nl int) func(float64) float64 {
	return func(x float64) float64 {
		s := sort.SearchFloat64s(edges, x)
		if s > 0 {
			s--
		}
		if s > len(edges)-2 {
			s = len(edges) - 2
		}
		width := edges[s+1] - edges[s]
		t := 2*(x-edges[s])/width - 1
		scale := math.Sqrt(2 / width)
		acc := 0.0
		for l, p := range legendreAll64(nl, t) {
			acc += vec[s*nl+l] * scale * p
		}
		return acc
	}
}

// legendreAll64 returns sqrt(l+1/2)*P_l(t) for l < nl in double precision.
func legendreAll64(nl int, t float64) []float64 {
	out := make([]float64, nl)
	p0, p1 := 1.0, t
	for l := 0; l < nl; l++ {
		var p float64
		switch l {
		case 0:
			p = p0
		case 1:
			p = p1
		default:
			p = (float64(2*l-1)*t*p1 - float64(l-1)*p0) / float64(l)
			p0, p1 = p1, p
		}
		out[l] = math.Sqrt(float64(l)+0.5) * p
	}
	return out
}

// signChangeLocations scans the profile on a fine grid, brackets every sign
// change and refines it by bisection. Roots that fail to converge within the
// iteration budget keep the bracket midpoint.
func signChangeLocations(vec, edges []float64) []float64 {
	f := discretizedProfile(vec, edges, estimatorNl)
	const samplesPerSection = 4 * estimatorNl

	var roots []float64
	for s := 0; s < len(edges)-1; s++ {
		a, b := edges[s], edges[s+1]
		prevX := a
		prevF := f(prevX)
		for i := 1; i <= samplesPerSection; i++ {
			x := a + (b-a)*float64(i)/float64(samplesPerSection)
			fx := f(x)
			if prevF == 0 {
				roots = append(roots, prevX)
			} else if prevF*fx < 0 {
				r, _ := bisect(f, prevX, x, estimatorTol, estimatorMaxIter)
				roots = append(roots, r)
			}
			prevX, prevF = x, fx
		}
	}

	sort.Float64s(roots)
	// Drop duplicates and roots collapsing onto the domain endpoints; the
	// final edge set must stay strictly increasing.
	out := roots[:0]
	prev := 0.0
	for _, r := range roots {
		if r <= prev+estimatorTol || r >= 1-estimatorTol {
			continue
		}
		out = append(out, r)
		prev = r
	}
	return out
}

// bisect finds a root of f in [a,b] assuming a sign change. The boolean
// reports convergence; on false the midpoint of the final bracket is still a
// usable estimate.
func bisect(f func(float64) float64, a, b float64, tol float64, maxIter int) (float64, bool) {
	fa := f(a)
	for i := 0; i < maxIter; i++ {
		m := 0.5 * (a + b)
		if b-a < tol {
			return m, true
		}
		fm := f(m)
		if fm == 0 {
			return m, true
		}
		if fa*fm < 0 {
			b = m
		} else {
			a, fa = m, fm
		}
	}
	return 0.5 * (a + b), false
}

// settled reports whether two node sets agree in size and position.
func settled(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > estimatorSettleTol {
			return false
		}
	}
	return true
}
