// Package mp collects the scalar arbitrary-precision building blocks of the
// basis-generation pipeline: exponential-family functions on big.Float,
// normalized Legendre polynomials and their boundary derivatives, inverse
// factorial tables and Gauss-Legendre quadrature nodes. Every function takes
// the working precision explicitly; the package holds no global precision
// state.
package mp

import (
	"math/big"

	"github.com/ALTree/bigfloat"
	"github.com/tuneinsight/lattigo/v5/utils/bignum"
)

// NewFloat returns x as a big.Float with the given precision.
func NewFloat(x float64, prec uint) *big.Float {
	return bignum.NewFloat(x, prec)
}

// Exp returns e^x at the precision of x.
func Exp(x *big.Float) *big.Float {
	return bigfloat.Exp(x)
}

// Cosh returns cosh(x) at the precision of x.
func Cosh(x *big.Float) *big.Float {
	prec := x.Prec()
	ex := bigfloat.Exp(x)
	emx := bigfloat.Exp(new(big.Float).SetPrec(prec).Neg(x))
	r := new(big.Float).SetPrec(prec).Add(ex, emx)
	return r.Quo(r, NewFloat(2, prec))
}

// Sinh returns sinh(x) at the precision of x.
func Sinh(x *big.Float) *big.Float {
	prec := x.Prec()
	ex := bigfloat.Exp(x)
	emx := bigfloat.Exp(new(big.Float).SetPrec(prec).Neg(x))
	r := new(big.Float).SetPrec(prec).Sub(ex, emx)
	return r.Quo(r, NewFloat(2, prec))
}

// LegendreP evaluates the Legendre polynomial P_n at x using the three-term
// recurrence (k+1)P_{k+1} = (2k+1)xP_k - kP_{k-1}.
func LegendreP(n int, x *big.Float, prec uint) *big.Float {
	if n < 0 {
		panic("mp: negative Legendre degree")
	}
	p0 := NewFloat(1, prec)
	if n == 0 {
		return p0
	}
	p1 := new(big.Float).SetPrec(prec).Set(x)
	for k := 1; k < n; k++ {
		// p2 = ((2k+1) x p1 - k p0) / (k+1)
		p2 := new(big.Float).SetPrec(prec).Mul(x, p1)
		p2.Mul(p2, NewFloat(float64(2*k+1), prec))
		t := new(big.Float).SetPrec(prec).Mul(NewFloat(float64(k), prec), p0)
		p2.Sub(p2, t)
		p2.Quo(p2, NewFloat(float64(k+1), prec))
		p0, p1 = p1, p2
	}
	return p1
}

// NormalizedLegendreP evaluates sqrt(n+1/2)*P_n(x), the Legendre polynomial
// normalized to unit L2 norm on [-1,1].
func NormalizedLegendreP(n int, x *big.Float, prec uint) *big.Float {
	norm := NewFloat(float64(n)+0.5, prec)
	norm.Sqrt(norm)
	return norm.Mul(norm, LegendreP(n, x, prec))
}

// InverseFactorials returns the table [1, 1, 1/2!, ..., 1/(n-1)!].
func InverseFactorials(n int, prec uint) []*big.Float {
	out := make([]*big.Float, n)
	out[0] = NewFloat(1, prec)
	for l := 1; l < n; l++ {
		out[l] = new(big.Float).SetPrec(prec).Quo(out[l-1], NewFloat(float64(l), prec))
	}
	return out
}
