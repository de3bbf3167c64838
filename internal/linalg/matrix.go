// Package linalg provides the dense arbitrary-precision matrix type and the
// singular value decomposition used to factorize discretized kernel operators.
// All entries are big.Float at an explicit working precision; there is no
// float64 fast path because the pipeline needs singular values far below the
// double-precision noise floor.
package linalg

import "math/big"

// Matrix is a dense row-major matrix of big.Float entries.
type Matrix struct {
	Rows, Cols int
	data       []*big.Float
}

// NewMatrix allocates a zero matrix at the given precision.
func NewMatrix(rows, cols int, prec uint) *Matrix {
	if rows <= 0 || cols <= 0 {
		panic("linalg: non-positive matrix dimension")
	}
	data := make([]*big.Float, rows*cols)
	for i := range data {
		data[i] = new(big.Float).SetPrec(prec)
	}
	return &Matrix{Rows: rows, Cols: cols, data: data}
}

// At returns the entry at (i, j).
func (m *Matrix) At(i, j int) *big.Float {
	return m.data[i*m.Cols+j]
}

// Set stores v at (i, j).
func (m *Matrix) Set(i, j int, v *big.Float) {
	m.data[i*m.Cols+j].Set(v)
}

// Mul returns a*b at the given precision.
func Mul(a, b *Matrix, prec uint) *Matrix {
	if a.Cols != b.Rows {
		panic("linalg: dimension mismatch in Mul")
	}
	out := NewMatrix(a.Rows, b.Cols, prec)
	t := new(big.Float).SetPrec(prec)
	for i := 0; i < a.Rows; i++ {
		for k := 0; k < a.Cols; k++ {
			aik := a.At(i, k)
			if aik.Sign() == 0 {
				continue
			}
			for j := 0; j < b.Cols; j++ {
				t.Mul(aik, b.At(k, j))
				acc := out.At(i, j)
				acc.Add(acc, t)
			}
		}
	}
	return out
}

// MulTransposed returns a*b^T at the given precision.
func MulTransposed(a, b *Matrix, prec uint) *Matrix {
	if a.Cols != b.Cols {
		panic("linalg: dimension mismatch in MulTransposed")
	}
	out := NewMatrix(a.Rows, b.Rows, prec)
	t := new(big.Float).SetPrec(prec)
	for i := 0; i < a.Rows; i++ {
		for j := 0; j < b.Rows; j++ {
			acc := out.At(i, j)
			for k := 0; k < a.Cols; k++ {
				t.Mul(a.At(i, k), b.At(j, k))
				acc.Add(acc, t)
			}
		}
	}
	return out
}

// Transpose returns a^T at the given precision.
func Transpose(a *Matrix, prec uint) *Matrix {
	out := NewMatrix(a.Cols, a.Rows, prec)
	for i := 0; i < a.Rows; i++ {
		for j := 0; j < a.Cols; j++ {
			out.Set(j, i, a.At(i, j))
		}
	}
	return out
}

// Col returns a copy of column j.
func (m *Matrix) Col(j int) []*big.Float {
	out := make([]*big.Float, m.Rows)
	for i := 0; i < m.Rows; i++ {
		out[i] = new(big.Float).Copy(m.At(i, j))
	}
	return out
}
