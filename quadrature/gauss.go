// Package quadrature provides Gauss-Legendre integration rules on [-1,1]
// and Legendre polynomial evaluation used by the nodal expansion basis.
package quadrature

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidOrder is returned when a rule of order < 1 is requested.
var ErrInvalidOrder = errors.New("quadrature: order must be at least 1")

// Rule holds the abscissas and weights of a Gauss-Legendre rule.
// Points are sorted ascending in (-1,1); weights are positive and sum to 2.
// A rule of n points integrates polynomials of degree <= 2n-1 exactly.
type Rule struct {
	Points  []float64
	Weights []float64
}

// Len returns the number of quadrature points.
func (r Rule) Len() int { return len(r.Points) }

// GaussLegendre computes the n-point Gauss-Legendre rule by
// eigendecomposition of the symmetric tridiagonal Jacobi matrix
// (Golub-Welsch): the eigenvalues are the abscissas and the weights are
// mu0 times the squared first components of the normalized eigenvectors,
// with mu0 = 2 for the Legendre weight function.
func GaussLegendre(n int) (Rule, error) {
	if n < 1 {
		return Rule{}, ErrInvalidOrder
	}
	if n == 1 {
		return Rule{Points: []float64{0}, Weights: []float64{2}}, nil
	}

	// Off-diagonal terms b_k = k/sqrt(4k^2-1); the diagonal is zero for
	// the symmetric Legendre weight.
	d1 := make([]float64, n-1)
	for k := 1; k < n; k++ {
		fk := float64(k)
		d1[k-1] = fk / math.Sqrt(4*fk*fk-1)
	}
	JJ := newSymTriDiagonal(make([]float64, n), d1)

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		return Rule{}, errors.New("quadrature: Jacobi matrix eigendecomposition failed")
	}
	x := eig.Values(nil)

	VVr := mat.NewDense(n, n, nil)
	eig.VectorsTo(VVr)
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		v0 := VVr.At(0, i)
		w[i] = 2 * v0 * v0
	}
	return Rule{Points: x, Weights: w}, nil
}

func newSymTriDiagonal(d0, d1 []float64) *mat.SymDense {
	n := len(d0)
	dd := make([]float64, n*n)
	for i := 0; i < n; i++ {
		dd[i+i*n] = d0[i]
		if i < n-1 {
			dd[i + 1 + i*n] = d1[i]
		}
	}
	return mat.NewSymDense(n, dd)
}
