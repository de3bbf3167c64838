// Package irlib computes compact orthonormal "intermediate representation"
// bases for analytic-continuation integral kernels used in many-body physics.
// Given a cutoff scale Lambda and a particle statistics (fermionic or
// bosonic), it discretizes the kernel with adaptive composite Gauss-Legendre
// quadrature, factorizes the even and odd sectors with an arbitrary-precision
// singular value decomposition, and converts the retained singular vectors
// into piecewise-polynomial basis functions on [-1,1] together with their
// analytic Matsubara-frequency transforms.
//
// The generation pipeline runs at an explicit arbitrary precision derived
// from the requested singular-value cutoff; a constructed Basis is immutable
// and safe for concurrent reads.
package irlib
