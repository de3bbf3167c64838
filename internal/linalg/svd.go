package linalg

import (
	"math/big"
	"sort"
)

const maxJacobiSweeps = 60

// SVD factorizes a as u * diag(s) * v^T with full left and right singular
// vectors, using one-sided Jacobi rotations at the matrix precision. Singular
// values are returned in descending order. One-sided Jacobi is chosen because
// it computes small singular values to high relative accuracy, which the
// relative-cutoff truncation downstream depends on.
func SVD(a *Matrix, prec uint) (u *Matrix, s []*big.Float, v *Matrix) {
	// One-sided Jacobi orthogonalizes columns, so it wants rows >= cols;
	// a wide matrix is factorized through its transpose.
	if a.Rows < a.Cols {
		ut, s, vt := SVD(Transpose(a, prec), prec)
		return vt, s, ut
	}
	m, n := a.Rows, a.Cols

	// Work on a copy; accumulate right rotations in v.
	w := NewMatrix(m, n, prec)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			w.Set(i, j, a.At(i, j))
		}
	}
	v = NewMatrix(n, n, prec)
	one := new(big.Float).SetPrec(prec).SetInt64(1)
	for j := 0; j < n; j++ {
		v.Set(j, j, one)
	}

	// Columns p,q are considered orthogonal when
	// |a_p . a_q| <= tol * ||a_p|| * ||a_q||.
	tol := new(big.Float).SetPrec(prec).SetMantExp(one, -int(prec)+8)

	alpha := new(big.Float).SetPrec(prec)
	beta := new(big.Float).SetPrec(prec)
	gamma := new(big.Float).SetPrec(prec)
	t1 := new(big.Float).SetPrec(prec)
	t2 := new(big.Float).SetPrec(prec)

	for sweep := 0; sweep < maxJacobiSweeps; sweep++ {
		rotated := false
		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				alpha.SetInt64(0)
				beta.SetInt64(0)
				gamma.SetInt64(0)
				for i := 0; i < m; i++ {
					wp, wq := w.At(i, p), w.At(i, q)
					alpha.Add(alpha, t1.Mul(wp, wp))
					beta.Add(beta, t1.Mul(wq, wq))
					gamma.Add(gamma, t1.Mul(wp, wq))
				}
				if gamma.Sign() == 0 {
					continue
				}
				t1.Mul(alpha, beta)
				t1.Sqrt(t1)
				t1.Mul(t1, tol)
				if new(big.Float).Abs(gamma).Cmp(t1) <= 0 {
					continue
				}
				rotated = true

				// zeta = (beta - alpha) / (2 gamma)
				zeta := new(big.Float).SetPrec(prec).Sub(beta, alpha)
				zeta.Quo(zeta, t1.Add(gamma, gamma))
				// t = sign(zeta) / (|zeta| + sqrt(1 + zeta^2))
				tan := new(big.Float).SetPrec(prec).Mul(zeta, zeta)
				tan.Add(tan, one)
				tan.Sqrt(tan)
				tan.Add(tan, t1.Abs(zeta))
				tan.Quo(one, tan)
				if zeta.Sign() < 0 {
					tan.Neg(tan)
				}
				// c = 1/sqrt(1+t^2), s = c*t
				c := new(big.Float).SetPrec(prec).Mul(tan, tan)
				c.Add(c, one)
				c.Sqrt(c)
				c.Quo(one, c)
				sn := new(big.Float).SetPrec(prec).Mul(c, tan)

				rotateCols(w, p, q, c, sn, t1, t2)
				rotateCols(v, p, q, c, sn, t1, t2)
			}
		}
		if !rotated {
			break
		}
	}

	// Singular values are the column norms; left vectors the scaled columns.
	u = NewMatrix(m, n, prec)
	s = make([]*big.Float, n)
	for j := 0; j < n; j++ {
		norm := new(big.Float).SetPrec(prec)
		for i := 0; i < m; i++ {
			wj := w.At(i, j)
			norm.Add(norm, t1.Mul(wj, wj))
		}
		norm.Sqrt(norm)
		s[j] = norm
		if norm.Sign() == 0 {
			continue
		}
		for i := 0; i < m; i++ {
			u.At(i, j).Quo(w.At(i, j), norm)
		}
	}

	order := make([]int, n)
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(x, y int) bool {
		return s[order[x]].Cmp(s[order[y]]) > 0
	})
	su := NewMatrix(m, n, prec)
	sv := NewMatrix(n, n, prec)
	ss := make([]*big.Float, n)
	for j, src := range order {
		ss[j] = s[src]
		for i := 0; i < m; i++ {
			su.Set(i, j, u.At(i, src))
		}
		for i := 0; i < n; i++ {
			sv.Set(i, j, v.At(i, src))
		}
	}
	return su, ss, sv
}

// rotateCols applies the Givens rotation [c -s; s c] to columns p and q.
func rotateCols(m *Matrix, p, q int, c, s, t1, t2 *big.Float) {
	for i := 0; i < m.Rows; i++ {
		mp, mq := m.At(i, p), m.At(i, q)
		t1.Mul(c, mp)
		t2.Mul(s, mq)
		newP := new(big.Float).SetPrec(mp.Prec()).Sub(t1, t2)
		t1.Mul(s, mp)
		t2.Mul(c, mq)
		mq.Add(t1, t2)
		mp.Set(newP)
	}
}
