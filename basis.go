package irlib

import (
	"fmt"
	"math"
	"math/big"
)

// Construction defaults, matching the historical library behavior.
const (
	DefaultCutoff   = 1e-12
	DefaultNl       = 10
	DefaultNumNodes = 12
)

// Basis is an immutable intermediate-representation basis: descending
// singular values sv_l with paired piecewise-polynomial functions u_l and
// v_l on [-1,1], 0 <= l < Dim(). u_l and v_l have parity (-1)^l and obey the
// sign convention u_l(1) >= 0. All read operations are safe for concurrent
// use.
type Basis struct {
	stats Statistics
	sv    []float64
	u, v  []*PiecewisePolynomial
	prec  uint
}

// New constructs the basis for the given kernel. maxDim bounds the number of
// retained functions; cutoff in (0,1) drops singular values with
// sv_l/sv_0 < cutoff; nl is the per-section Legendre order and numNodes the
// Gauss-Legendre node count per section. The arbitrary-precision working
// width is derived from the cutoff and threaded through the whole pipeline.
func New(k Kernel, maxDim int, cutoff float64, nl, numNodes int) (*Basis, error) {
	if k == nil {
		return nil, fmt.Errorf("irlib: nil kernel: %w", ErrConfiguration)
	}
	if maxDim <= 0 {
		return nil, fmt.Errorf("irlib: max dimension must be positive, got %d: %w", maxDim, ErrConfiguration)
	}
	if cutoff <= 0 || cutoff >= 1 {
		return nil, fmt.Errorf("irlib: cutoff must lie in (0,1), got %g: %w", cutoff, ErrConfiguration)
	}
	if nl <= 0 {
		return nil, fmt.Errorf("irlib: Legendre order must be positive, got %d: %w", nl, ErrConfiguration)
	}
	if numNodes <= 0 {
		return nil, fmt.Errorf("irlib: node count must be positive, got %d: %w", numNodes, ErrConfiguration)
	}

	prec := precisionForCutoff(cutoff)
	sv, u, v, err := generateBasisFunctions(k, maxDim, cutoff, nl, numNodes, prec)
	if err != nil {
		return nil, err
	}
	return &Basis{stats: k.Statistics(), sv: sv, u: u, v: v, prec: prec}, nil
}

// NewFermionicBasis constructs a fermionic basis with default cutoff and
// discretization orders.
func NewFermionicBasis(lambda float64, maxDim int) (*Basis, error) {
	k, err := NewFermionicKernel(lambda)
	if err != nil {
		return nil, err
	}
	return New(k, maxDim, DefaultCutoff, DefaultNl, DefaultNumNodes)
}

// NewBosonicBasis constructs a bosonic basis with default cutoff and
// discretization orders.
func NewBosonicBasis(lambda float64, maxDim int) (*Basis, error) {
	k, err := NewBosonicKernel(lambda)
	if err != nil {
		return nil, err
	}
	return New(k, maxDim, DefaultCutoff, DefaultNl, DefaultNumNodes)
}

// NewPrecomputedBasis assembles a basis from previously computed parts, e.g.
// loaded by a persistence layer, without re-running the generation pipeline.
// The slices must be parallel, descending in sv, with matched parity and
// section layout per index; the inputs are copied.
func NewPrecomputedBasis(stats Statistics, sv []float64, u, v []*PiecewisePolynomial, prec uint) (*Basis, error) {
	if len(sv) == 0 || len(u) != len(sv) || len(v) != len(sv) {
		return nil, fmt.Errorf("irlib: singular values and basis functions must be parallel and non-empty: %w", ErrConfiguration)
	}
	for l := 0; l+1 < len(sv); l++ {
		if sv[l] < sv[l+1] {
			return nil, fmt.Errorf("irlib: singular values not descending at %d: %w", l, ErrConfiguration)
		}
	}
	b := &Basis{
		stats: stats,
		sv:    append([]float64(nil), sv...),
		u:     append([]*PiecewisePolynomial(nil), u...),
		v:     append([]*PiecewisePolynomial(nil), v...),
		prec:  prec,
	}
	return b, nil
}

// precisionForCutoff returns the minimum mantissa width, in bits, needed to
// resolve singular values down to the relative cutoff:
// max(100, 3.34*(log10(1/cutoff)+15)).
func precisionForCutoff(cutoff float64) uint {
	bits := int(math.Ceil(3.34 * (math.Log10(1/cutoff) + 15)))
	if bits < 100 {
		bits = 100
	}
	return uint(bits)
}

// Dim returns the number of retained basis functions.
func (b *Basis) Dim() int { return len(b.sv) }

// Statistics returns the statistics tag of the generating kernel.
func (b *Basis) Statistics() Statistics { return b.stats }

// Precision returns the arbitrary-precision working width, in bits, that
// produced the basis.
func (b *Basis) Precision() uint { return b.prec }

// SingularValue returns sv_l.
func (b *Basis) SingularValue(l int) (float64, error) {
	if err := b.checkIndex(l); err != nil {
		return 0, err
	}
	return b.sv[l], nil
}

// SingularValues returns a copy of the descending singular-value sequence.
func (b *Basis) SingularValues() []float64 {
	return append([]float64(nil), b.sv...)
}

// EvaluateU returns u_l(x) for x in [-1,1]. Negative arguments evaluate at
// the reflected point with the parity sign (-1)^l applied.
func (b *Basis) EvaluateU(l int, x float64) (float64, error) {
	if err := b.checkIndex(l); err != nil {
		return 0, err
	}
	if err := checkDomain(x); err != nil {
		return 0, err
	}
	return evaluateReflected(b.u[l], l, x), nil
}

// EvaluateV returns v_l(y) for y in [-1,1], with the same reflection rule as
// EvaluateU.
func (b *Basis) EvaluateV(l int, y float64) (float64, error) {
	if err := b.checkIndex(l); err != nil {
		return 0, err
	}
	if err := checkDomain(y); err != nil {
		return 0, err
	}
	return evaluateReflected(b.v[l], l, y), nil
}

// EvaluateUBig is the arbitrary-precision overload of EvaluateU.
func (b *Basis) EvaluateUBig(l int, x *big.Float) (*big.Float, error) {
	if err := b.checkIndex(l); err != nil {
		return nil, err
	}
	return evaluateReflectedBig(b.u[l], l, x, b.prec)
}

// EvaluateVBig is the arbitrary-precision overload of EvaluateV.
func (b *Basis) EvaluateVBig(l int, y *big.Float) (*big.Float, error) {
	if err := b.checkIndex(l); err != nil {
		return nil, err
	}
	return evaluateReflectedBig(b.v[l], l, y, b.prec)
}

// BasisFunctionU returns the piecewise polynomial of u_l.
func (b *Basis) BasisFunctionU(l int) (*PiecewisePolynomial, error) {
	if err := b.checkIndex(l); err != nil {
		return nil, err
	}
	return b.u[l], nil
}

// BasisFunctionV returns the piecewise polynomial of v_l.
func (b *Basis) BasisFunctionV(l int) (*PiecewisePolynomial, error) {
	if err := b.checkIndex(l); err != nil {
		return nil, err
	}
	return b.v[l], nil
}

func (b *Basis) checkIndex(l int) error {
	if l < 0 || l >= len(b.sv) {
		return fmt.Errorf("irlib: index %d outside [0,%d): %w", l, len(b.sv), ErrRange)
	}
	return nil
}

func checkDomain(x float64) error {
	if x < -1 || x > 1 || math.IsNaN(x) {
		return fmt.Errorf("irlib: %g outside [-1,1]: %w", x, ErrDomain)
	}
	return nil
}

func evaluateReflected(p *PiecewisePolynomial, l int, x float64) float64 {
	if x >= 0 {
		return p.Evaluate(x)
	}
	if l%2 == 0 {
		return p.Evaluate(-x)
	}
	return -p.Evaluate(-x)
}

func evaluateReflectedBig(p *PiecewisePolynomial, l int, x *big.Float, prec uint) (*big.Float, error) {
	one := new(big.Float).SetInt64(1)
	if x.Cmp(new(big.Float).Neg(one)) < 0 || x.Cmp(one) > 0 {
		return nil, fmt.Errorf("irlib: %v outside [-1,1]: %w", x, ErrDomain)
	}
	if x.Sign() >= 0 {
		return p.EvaluateBig(x, prec), nil
	}
	r := p.EvaluateBig(new(big.Float).SetPrec(prec).Neg(x), prec)
	if l%2 != 0 {
		r.Neg(r)
	}
	return r, nil
}
