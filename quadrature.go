package irlib

import (
	"math/big"

	"github.com/dombrno/irlib/internal/linalg"
	"github.com/dombrno/irlib/internal/mp"
)

// kernelFunc is a scalar kernel evaluation, possibly an even/odd
// symmetrization of a Kernel.
type kernelFunc func(x, y *big.Float) *big.Float

// compositeGaussLegendre maps the reference rule onto each section
// [edges[s], edges[s+1]], returning numSections*len(local) nodes with the
// affinely rescaled weights.
func compositeGaussLegendre(edges []*big.Float, local []mp.QuadNode, prec uint) []mp.QuadNode {
	numSec := len(edges) - 1
	all := make([]mp.QuadNode, 0, numSec*len(local))
	half := mp.NewFloat(0.5, prec)
	for s := 0; s < numSec; s++ {
		a, b := edges[s], edges[s+1]
		halfWidth := new(big.Float).SetPrec(prec).Sub(b, a)
		halfWidth.Mul(halfWidth, half)
		for _, n := range local {
			x := new(big.Float).SetPrec(prec).Add(n.X, mp.NewFloat(1, prec))
			x.Mul(x, halfWidth)
			x.Add(x, a)
			w := new(big.Float).SetPrec(prec).Mul(halfWidth, n.W)
			all = append(all, mp.QuadNode{X: x, W: w})
		}
	}
	return all
}

// matrixRep assembles the dense discretized representation of k projected
// onto the per-section orthonormal Legendre basis of degree < nl, one
// (nl x nl) block per section pair. The x and y directions may carry
// different section counts. The projector row phi[s](l,n) carries the
// composite quadrature weight, so a plain triple product
// phi_x * K_nodes * phi_y^T performs both projections.
func matrixRep(k kernelFunc, edgesX, edgesY []*big.Float, numLocalNodes, nl int, prec uint) *linalg.Matrix {
	numSecX := len(edgesX) - 1
	numSecY := len(edgesY) - 1

	local := mp.GaussLegendre(numLocalNodes, prec)
	nodesX := compositeGaussLegendre(edgesX, local, prec)
	nodesY := compositeGaussLegendre(edgesY, local, prec)

	// Per-section projectors onto the orthonormal-on-the-section Legendre
	// basis, with quadrature weights folded in.
	legVal := make([][]*big.Float, len(local))
	for n, nd := range local {
		legVal[n] = make([]*big.Float, nl)
		for l := 0; l < nl; l++ {
			legVal[n][l] = mp.NormalizedLegendreP(l, nd.X, prec)
		}
	}
	two := mp.NewFloat(2, prec)
	makePhi := func(edges []*big.Float, nodes []mp.QuadNode, s int) *linalg.Matrix {
		phi := linalg.NewMatrix(nl, len(local), prec)
		scale := new(big.Float).SetPrec(prec).Sub(edges[s+1], edges[s])
		scale.Quo(two, scale)
		scale.Sqrt(scale)
		t := new(big.Float).SetPrec(prec)
		for n := range local {
			w := nodes[s*len(local)+n].W
			for l := 0; l < nl; l++ {
				t.Mul(scale, legVal[n][l])
				t.Mul(t, w)
				phi.Set(l, n, t)
			}
		}
		return phi
	}

	phiX := make([]*linalg.Matrix, numSecX)
	for s := 0; s < numSecX; s++ {
		phiX[s] = makePhi(edgesX, nodesX, s)
	}
	phiY := make([]*linalg.Matrix, numSecY)
	for s := 0; s < numSecY; s++ {
		phiY[s] = makePhi(edgesY, nodesY, s)
	}

	kMat := linalg.NewMatrix(numSecX*nl, numSecY*nl, prec)
	for s2 := 0; s2 < numSecY; s2++ {
		for s := 0; s < numSecX; s++ {
			kNodes := linalg.NewMatrix(len(local), len(local), prec)
			for n := 0; n < len(local); n++ {
				for n2 := 0; n2 < len(local); n2++ {
					kNodes.Set(n, n2, k(nodesX[s*len(local)+n].X, nodesY[s2*len(local)+n2].X))
				}
			}
			block := linalg.MulTransposed(linalg.Mul(phiX[s], kNodes, prec), phiY[s2], prec)
			for l2 := 0; l2 < nl; l2++ {
				for l := 0; l < nl; l++ {
					kMat.Set(nl*s+l, nl*s2+l2, block.At(l, l2))
				}
			}
		}
	}
	return kMat
}
