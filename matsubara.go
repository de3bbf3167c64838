package irlib

import (
	"fmt"
	"math"
	"math/cmplx"
)

// ComputeFrequencyTransform returns the dense matrix T[n][l] of analytic
// integrals
//
//	T[n][l] = (1/sqrt(2)) * int_{-1}^{1} u_l(x) exp(i*pi*(n+1/2)*(x+1)) dx
//
// for the caller-supplied ascending list of non-negative Matsubara indices n.
// The integrals are evaluated per polynomial segment from closed-form
// antiderivatives; numerical quadrature would be slow and inaccurate for the
// strongly oscillatory integrands at large n. Parity halves the work: after
// splitting off the overall phase i*(-1)^n, even l contribute a purely real
// integral and odd l a purely imaginary one.
func (b *Basis) ComputeFrequencyTransform(n []int64) ([][]complex128, error) {
	if err := checkFrequencyIndices(n); err != nil {
		return nil, err
	}
	out := make([][]complex128, len(n))
	for i, nn := range n {
		w := math.Pi * (float64(nn) + 0.5)
		phase := complex(0, 1) // exp(i*pi*(n+1/2)) = i*(-1)^n
		if nn%2 != 0 {
			phase = -phase
		}
		out[i] = b.transformRow(w, phase)
	}
	return out, nil
}

// ComputeShiftedFrequencyTransform returns the analogous matrix for the
// shifted frequency convention,
//
//	T[o][l] = (1/sqrt(2)) * int_{-1}^{1} u_l(x) exp(i*pi*o*(x+1)/2) dx,
//
// for an ascending list of non-negative integer offsets o.
func (b *Basis) ComputeShiftedFrequencyTransform(o []int64) ([][]complex128, error) {
	if err := checkFrequencyIndices(o); err != nil {
		return nil, err
	}
	iPow := [4]complex128{1, complex(0, 1), -1, complex(0, -1)}
	out := make([][]complex128, len(o))
	for i, oo := range o {
		w := 0.5 * math.Pi * float64(oo)
		out[i] = b.transformRow(w, iPow[oo%4]) // exp(i*pi*o/2) = i^o
	}
	return out, nil
}

// transformRow evaluates one frequency row across all basis functions.
func (b *Basis) transformRow(w float64, phase complex128) []complex128 {
	row := make([]complex128, b.Dim())
	scale := phase * complex(math.Sqrt2, 0) // phase * 2 / sqrt(2)
	for l := range row {
		e := positiveHalfOscillatoryIntegral(b.u[l], w)
		if l%2 == 0 {
			row[l] = scale * complex(real(e), 0)
		} else {
			row[l] = scale * complex(0, imag(e))
		}
	}
	return row
}

func checkFrequencyIndices(n []int64) error {
	for i, v := range n {
		if v < 0 {
			return fmt.Errorf("irlib: frequency index %d is negative: %w", v, ErrConfiguration)
		}
		if i > 0 && v <= n[i-1] {
			return fmt.Errorf("irlib: frequency indices must be strictly ascending at position %d: %w", i, ErrConfiguration)
		}
	}
	return nil
}

// positiveHalfOscillatoryIntegral computes int_0^1 p(x) exp(i*w*x) dx over
// the segments of p lying in [0,1].
func positiveHalfOscillatoryIntegral(p *PiecewisePolynomial, w float64) complex128 {
	var total complex128
	for s := 0; s < p.NumSections(); s++ {
		a := p.SectionEdge(s)
		if a < 0 {
			continue
		}
		h := p.SectionEdge(s+1) - a
		total += segmentOscillatoryIntegral(p.coeff[s], a, h, w)
	}
	return total
}

// segmentOscillatoryIntegral computes int_a^{a+h} p(x) exp(i*w*x) dx for one
// segment with local coefficients c about a:
//
//	exp(i*w*a) * sum_d c_d * E_d,  E_d = int_0^h t^d exp(i*w*t) dt.
//
// E_d comes from the integration-by-parts recursion
// E_d = (h^d exp(iwh) - d*E_{d-1}) / (iw) when |w|h is large, and from the
// absolutely convergent series h^(d+1) * sum_k (iwh)^k / (k! (d+k+1)) when
// |w|h is small, where the recursion would cancel catastrophically.
func segmentOscillatoryIntegral(c []float64, a, h, w float64) complex128 {
	e := make([]complex128, len(c))
	switch {
	case w == 0:
		for d := range e {
			e[d] = complex(math.Pow(h, float64(d+1))/float64(d+1), 0)
		}
	case math.Abs(w)*h < float64(len(c))+1:
		iwh := complex(0, w*h)
		for d := range e {
			term := complex(1, 0)
			sum := term / complex(float64(d+1), 0)
			for k := 1; k < 64; k++ {
				term *= iwh / complex(float64(k), 0)
				t := term / complex(float64(d+k+1), 0)
				sum += t
				if cmplx.Abs(t) < 1e-20*cmplx.Abs(sum) {
					break
				}
			}
			e[d] = complex(math.Pow(h, float64(d+1)), 0) * sum
		}
	default:
		iw := complex(0, w)
		eiwh := cmplx.Exp(complex(0, w*h))
		e[0] = (eiwh - 1) / iw
		hPow := 1.0
		for d := 1; d < len(e); d++ {
			hPow *= h
			e[d] = (complex(hPow, 0)*eiwh - complex(float64(d), 0)*e[d-1]) / iw
		}
	}

	var sum complex128
	for d, cd := range c {
		if cd != 0 {
			sum += complex(cd, 0) * e[d]
		}
	}
	return sum * cmplx.Exp(complex(0, w*a))
}
