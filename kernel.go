package irlib

import (
	"fmt"
	"math/big"

	"github.com/dombrno/irlib/internal/mp"
)

// Statistics selects the closed-form kernel expression.
type Statistics int

const (
	Fermionic Statistics = iota
	Bosonic
)

// String returns the statistics tag name.
func (s Statistics) String() string {
	switch s {
	case Fermionic:
		return "fermionic"
	case Bosonic:
		return "bosonic"
	default:
		return fmt.Sprintf("statistics(%d)", int(s))
	}
}

// Kernel is an analytic-continuation integral kernel K(x,y) on
// [-1,1]x[-1,1], parameterized by the cutoff scale Lambda. Evaluation is
// side-effect free and runs at the explicitly supplied precision.
type Kernel interface {
	// Evaluate returns K(x,y) at the given working precision.
	Evaluate(x, y *big.Float, prec uint) *big.Float

	// Statistics reports the particle statistics of the kernel.
	Statistics() Statistics

	// Lambda reports the cutoff scale.
	Lambda() float64

	// Clone returns an independent copy for use inside the even/odd
	// symmetrization closures.
	Clone() Kernel
}

// The exponential closed forms switch branches once |Lambda*y| exceeds
// kernelExpLimit so that no intermediate overflows, and the bosonic kernel
// takes its y->0 limit below kernelTinyLimit.
const (
	kernelExpLimit  = 200.0
	kernelTinyLimit = 1e-30
)

// FermionicKernel is K(x,y) = exp(-Lambda/2 * x*y) / (2*cosh(Lambda/2 * y)).
type FermionicKernel struct {
	lambda float64
}

// NewFermionicKernel builds a fermionic kernel. Lambda must be positive.
func NewFermionicKernel(lambda float64) (*FermionicKernel, error) {
	if lambda <= 0 {
		return nil, fmt.Errorf("irlib: Lambda must be positive, got %v: %w", lambda, ErrConfiguration)
	}
	return &FermionicKernel{lambda: lambda}, nil
}

// Evaluate implements Kernel.
func (k *FermionicKernel) Evaluate(x, y *big.Float, prec uint) *big.Float {
	halfLambda := mp.NewFloat(0.5, prec)
	halfLambda.Mul(halfLambda, mp.NewFloat(k.lambda, prec))

	// -Lambda/2 * x * y
	arg := new(big.Float).SetPrec(prec).Mul(x, y)
	arg.Mul(arg, halfLambda)
	arg.Neg(arg)
	hy := new(big.Float).SetPrec(prec).Mul(halfLambda, y)

	ly := new(big.Float).SetPrec(prec).Mul(mp.NewFloat(k.lambda, prec), y)
	limit := mp.NewFloat(kernelExpLimit, prec)
	switch {
	case ly.Cmp(limit) > 0:
		arg.Sub(arg, hy)
		return mp.Exp(arg)
	case ly.Cmp(new(big.Float).Neg(limit)) < 0:
		arg.Add(arg, hy)
		return mp.Exp(arg)
	default:
		den := mp.Cosh(hy)
		den.Add(den, den)
		return new(big.Float).SetPrec(prec).Quo(mp.Exp(arg), den)
	}
}

// Statistics implements Kernel.
func (k *FermionicKernel) Statistics() Statistics { return Fermionic }

// Lambda implements Kernel.
func (k *FermionicKernel) Lambda() float64 { return k.lambda }

// Clone implements Kernel.
func (k *FermionicKernel) Clone() Kernel { return &FermionicKernel{lambda: k.lambda} }

// BosonicKernel is K(x,y) = y * exp(-Lambda/2 * x*y) / (2*sinh(Lambda/2 * y)),
// with the removable singularity at y=0 replaced by its limit
// exp(-Lambda/2 * x*y) / Lambda.
type BosonicKernel struct {
	lambda float64
}

// NewBosonicKernel builds a bosonic kernel. Lambda must be positive.
func NewBosonicKernel(lambda float64) (*BosonicKernel, error) {
	if lambda <= 0 {
		return nil, fmt.Errorf("irlib: Lambda must be positive, got %v: %w", lambda, ErrConfiguration)
	}
	return &BosonicKernel{lambda: lambda}, nil
}

// Evaluate implements Kernel.
func (k *BosonicKernel) Evaluate(x, y *big.Float, prec uint) *big.Float {
	halfLambda := mp.NewFloat(0.5, prec)
	halfLambda.Mul(halfLambda, mp.NewFloat(k.lambda, prec))

	arg := new(big.Float).SetPrec(prec).Mul(x, y)
	arg.Mul(arg, halfLambda)
	arg.Neg(arg)
	hy := new(big.Float).SetPrec(prec).Mul(halfLambda, y)

	ly := new(big.Float).SetPrec(prec).Mul(mp.NewFloat(k.lambda, prec), y)
	limit := mp.NewFloat(kernelExpLimit, prec)
	switch {
	case new(big.Float).Abs(ly).Cmp(mp.NewFloat(kernelTinyLimit, prec)) < 0:
		return new(big.Float).SetPrec(prec).Quo(mp.Exp(arg), mp.NewFloat(k.lambda, prec))
	case ly.Cmp(limit) > 0:
		arg.Sub(arg, hy)
		return new(big.Float).SetPrec(prec).Mul(y, mp.Exp(arg))
	case ly.Cmp(new(big.Float).Neg(limit)) < 0:
		arg.Add(arg, hy)
		r := new(big.Float).SetPrec(prec).Mul(y, mp.Exp(arg))
		return r.Neg(r)
	default:
		den := mp.Sinh(hy)
		den.Add(den, den)
		r := new(big.Float).SetPrec(prec).Quo(mp.Exp(arg), den)
		return r.Mul(r, y)
	}
}

// Statistics implements Kernel.
func (k *BosonicKernel) Statistics() Statistics { return Bosonic }

// Lambda implements Kernel.
func (k *BosonicKernel) Lambda() float64 { return k.lambda }

// Clone implements Kernel.
func (k *BosonicKernel) Clone() Kernel { return &BosonicKernel{lambda: k.lambda} }

// NewKernel builds the kernel for the given statistics.
func NewKernel(stat Statistics, lambda float64) (Kernel, error) {
	switch stat {
	case Fermionic:
		return NewFermionicKernel(lambda)
	case Bosonic:
		return NewBosonicKernel(lambda)
	default:
		return nil, fmt.Errorf("irlib: unknown statistics %d: %w", int(stat), ErrConfiguration)
	}
}
