package mp

import (
	"math/big"
	"sync"

	"github.com/tuneinsight/lattigo/v5/utils/bignum"
)

// QuadNode is a quadrature node/weight pair on the reference interval [-1,1].
type QuadNode struct {
	X, W *big.Float
}

// GaussLegendre computes the n-point Gauss-Legendre rule on [-1,1] at the
// given precision. Initial guesses are the Chebyshev-like cosine estimates,
// refined by Newton iteration on the Legendre recurrence. Nodes are returned
// in ascending order.
func GaussLegendre(n int, prec uint) []QuadNode {
	if n <= 0 {
		panic("mp: non-positive Gauss-Legendre order")
	}
	// Newton converges quadratically from the cosine guess; leave a small
	// guard band below the working precision for the stopping test.
	tol := new(big.Float).SetPrec(prec).SetMantExp(big.NewFloat(1), -int(prec)+4)

	pi := bignum.Pi(prec)
	nodes := make([]QuadNode, n)
	one := NewFloat(1, prec)
	nF := NewFloat(float64(n), prec)

	for i := 0; i < n; i++ {
		theta := new(big.Float).SetPrec(prec).Mul(pi, NewFloat(float64(i)+0.75, prec))
		theta.Quo(theta, NewFloat(float64(n)+0.5, prec))
		x := bignum.Cos(theta)

		var dp *big.Float
		for it := 0; it < 100; it++ {
			pn := LegendreP(n, x, prec)
			pn1 := LegendreP(n-1, x, prec)
			// P'_n(x) = n (x P_n - P_{n-1}) / (x^2 - 1)
			num := new(big.Float).SetPrec(prec).Mul(x, pn)
			num.Sub(num, pn1)
			num.Mul(num, nF)
			den := new(big.Float).SetPrec(prec).Mul(x, x)
			den.Sub(den, one)
			dp = num.Quo(num, den)

			dx := new(big.Float).SetPrec(prec).Quo(pn, dp)
			x.Sub(x, dx)
			if new(big.Float).Abs(dx).Cmp(tol) < 0 {
				break
			}
		}

		// w = 2 / ((1-x^2) P'_n(x)^2), with P'_n at the converged node.
		pn := LegendreP(n, x, prec)
		pn1 := LegendreP(n-1, x, prec)
		num := new(big.Float).SetPrec(prec).Mul(x, pn)
		num.Sub(num, pn1)
		num.Mul(num, nF)
		den := new(big.Float).SetPrec(prec).Mul(x, x)
		den.Sub(den, one)
		dp = num.Quo(num, den)

		w := new(big.Float).SetPrec(prec).Mul(x, x)
		w.Sub(one, w)
		w.Mul(w, new(big.Float).SetPrec(prec).Mul(dp, dp))
		w = w.Quo(NewFloat(2, prec), w)

		// The cosine guesses run from +1 down to -1; store ascending.
		nodes[n-1-i] = QuadNode{X: x, W: w}
	}
	return nodes
}

type derivKey struct {
	nl   int
	prec uint
}

var (
	derivMu    sync.Mutex
	derivCache = map[derivKey][][]*big.Float{}
)

// BoundaryDerivatives returns the table D[l][d] of the d-th derivative of the
// normalized Legendre polynomial sqrt(l+1/2)*P_l at x=-1, for l,d < nl. The
// table depends only on (nl, prec), never on the kernel, and is cached.
//
// Closed form: P_l^(d)(-1) = (-1)^(l+d) (l+d)! / (2^d d! (l-d)!) for d <= l,
// zero otherwise.
func BoundaryDerivatives(nl int, prec uint) [][]*big.Float {
	key := derivKey{nl: nl, prec: prec}
	derivMu.Lock()
	defer derivMu.Unlock()
	if t, ok := derivCache[key]; ok {
		return t
	}

	fact := make([]*big.Int, 2*nl)
	fact[0] = big.NewInt(1)
	for k := 1; k < 2*nl; k++ {
		fact[k] = new(big.Int).Mul(fact[k-1], big.NewInt(int64(k)))
	}

	table := make([][]*big.Float, nl)
	for l := 0; l < nl; l++ {
		norm := NewFloat(float64(l)+0.5, prec)
		norm.Sqrt(norm)
		table[l] = make([]*big.Float, nl)
		for d := 0; d < nl; d++ {
			if d > l {
				table[l][d] = NewFloat(0, prec)
				continue
			}
			num := new(big.Float).SetPrec(prec).SetInt(fact[l+d])
			den := new(big.Float).SetPrec(prec).SetInt(new(big.Int).Mul(fact[d], fact[l-d]))
			den.Mul(den, new(big.Float).SetPrec(prec).SetMantExp(NewFloat(1, prec), d)) // 2^d
			v := num.Quo(num, den)
			v.Mul(v, norm)
			if (l+d)%2 != 0 {
				v.Neg(v)
			}
			table[l][d] = v
		}
	}
	derivCache[key] = table
	return table
}
