package irlib

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/dombrno/irlib/internal/mp"
)

// PiecewisePolynomial is a polynomial defined section-by-section on a
// partition of [-1,1]. Section s covers [edges[s], edges[s+1]] and stores its
// coefficients in the local coordinate (x - edges[s]):
//
//	p(x) = sum_d coeff[s][d] * (x - edges[s])^d.
//
// A PiecewisePolynomial is immutable after construction.
type PiecewisePolynomial struct {
	edges []float64
	coeff [][]float64
}

// NewPiecewisePolynomial builds a piecewise polynomial from strictly
// increasing section edges and per-section coefficient rows. It copies both
// inputs.
func NewPiecewisePolynomial(edges []float64, coeff [][]float64) (*PiecewisePolynomial, error) {
	if len(edges) < 2 {
		return nil, fmt.Errorf("irlib: need at least one section: %w", ErrConfiguration)
	}
	if len(coeff) != len(edges)-1 {
		return nil, fmt.Errorf("irlib: %d coefficient rows for %d sections: %w",
			len(coeff), len(edges)-1, ErrConfiguration)
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return nil, fmt.Errorf("irlib: section edges not strictly increasing at %d: %w", i, ErrConfiguration)
		}
	}
	e := append([]float64(nil), edges...)
	c := make([][]float64, len(coeff))
	for s := range coeff {
		c[s] = append([]float64(nil), coeff[s]...)
	}
	return &PiecewisePolynomial{edges: e, coeff: c}, nil
}

// NumSections returns the number of polynomial sections.
func (p *PiecewisePolynomial) NumSections() int { return len(p.coeff) }

// SectionEdge returns the i-th breakpoint, 0 <= i <= NumSections().
func (p *PiecewisePolynomial) SectionEdge(i int) float64 { return p.edges[i] }

// SectionEdges returns a copy of all breakpoints.
func (p *PiecewisePolynomial) SectionEdges() []float64 {
	return append([]float64(nil), p.edges...)
}

// Order returns the number of coefficients per section.
func (p *PiecewisePolynomial) Order() int { return len(p.coeff[0]) }

// Coefficient returns the d-th local coefficient of section s.
func (p *PiecewisePolynomial) Coefficient(s, d int) float64 { return p.coeff[s][d] }

// section locates the section containing x. The last edge maps into the last
// section.
func (p *PiecewisePolynomial) section(x float64) int {
	s := sort.SearchFloat64s(p.edges, x)
	if s > 0 {
		s--
	}
	if s > len(p.coeff)-1 {
		s = len(p.coeff) - 1
	}
	return s
}

// Evaluate computes p(x) by Horner's rule in the local section coordinate.
// x must lie within [edges[0], edges[last]].
func (p *PiecewisePolynomial) Evaluate(x float64) float64 {
	s := p.section(x)
	dx := x - p.edges[s]
	c := p.coeff[s]
	acc := 0.0
	for d := len(c) - 1; d >= 0; d-- {
		acc = acc*dx + c[d]
	}
	return acc
}

// EvaluateBig computes p(x) at the given precision. The coefficients
// themselves are double precision; the arbitrary-precision path exists so
// that callers evaluating at big.Float arguments lose nothing beyond the
// stored coefficient accuracy.
func (p *PiecewisePolynomial) EvaluateBig(x *big.Float, prec uint) *big.Float {
	xf, _ := x.Float64()
	s := p.section(xf)
	dx := new(big.Float).SetPrec(prec).Sub(x, mp.NewFloat(p.edges[s], prec))
	c := p.coeff[s]
	acc := new(big.Float).SetPrec(prec)
	for d := len(c) - 1; d >= 0; d-- {
		acc.Mul(acc, dx)
		acc.Add(acc, mp.NewFloat(c[d], prec))
	}
	return acc
}

// Overlap computes the exact integral of p*q over the shared domain. Both
// polynomials must be defined on identical section edges.
func (p *PiecewisePolynomial) Overlap(q *PiecewisePolynomial) (float64, error) {
	if len(p.edges) != len(q.edges) {
		return 0, fmt.Errorf("irlib: overlap requires identical section edges: %w", ErrConfiguration)
	}
	for i := range p.edges {
		if p.edges[i] != q.edges[i] {
			return 0, fmt.Errorf("irlib: overlap requires identical section edges: %w", ErrConfiguration)
		}
	}
	total := 0.0
	for s := range p.coeff {
		h := p.edges[s+1] - p.edges[s]
		cp, cq := p.coeff[s], q.coeff[s]
		// Integrate the local product monomial-by-monomial:
		// int_0^h t^(d+e) dt = h^(d+e+1)/(d+e+1).
		hpow := make([]float64, len(cp)+len(cq))
		hpow[0] = h
		for k := 1; k < len(hpow); k++ {
			hpow[k] = hpow[k-1] * h
		}
		for d := range cp {
			if cp[d] == 0 {
				continue
			}
			for e := range cq {
				total += cp[d] * cq[e] * hpow[d+e] / float64(d+e+1)
			}
		}
	}
	return total, nil
}

// Scale returns a copy of p with all coefficients multiplied by c.
func (p *PiecewisePolynomial) Scale(c float64) *PiecewisePolynomial {
	coeff := make([][]float64, len(p.coeff))
	for s := range p.coeff {
		coeff[s] = make([]float64, len(p.coeff[s]))
		for d := range p.coeff[s] {
			coeff[s][d] = c * p.coeff[s][d]
		}
	}
	return &PiecewisePolynomial{edges: append([]float64(nil), p.edges...), coeff: coeff}
}
