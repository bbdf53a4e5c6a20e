// Package basis precomputes the tensor-product Legendre basis tables used
// by the nodal expansion method and defines the flux coefficient tensor.
package basis

import (
	"errors"

	"github.com/neutronworks/nemdiff/quadrature"
)

// ErrInvalidOrder is returned when a basis of order < 1 is requested.
var ErrInvalidOrder = errors.New("basis: order must be at least 1")

// Set holds the product basis psi_pq(xi_k) = P_p(xi_k)*P_q(xi_k) and its
// derivative tables, all evaluated at the quadrature abscissas. Each table
// has shape (order, order, nQuad) flattened row-major. Built once from
// (order, rule) and immutable afterwards.
type Set struct {
	Order int
	Rule  quadrature.Rule

	psi   []float64
	dPsiX []float64
	dPsiY []float64
	d2Psi []float64
}

// New builds the basis tables for the given expansion order on the
// abscissas of rule. The x-derivative combines the Legendre derivative
// identity in the first index with the plain polynomial in the second;
// the y-derivative swaps the two index roles. The second-derivative table
// uses the simplified closed form (2*xi*dP_p - p(p+1)*P_p)/(1-xi^2)
// carried by the model; it is not the analytic second derivative and the
// weak form does not consume it.
func New(order int, rule quadrature.Rule) (*Set, error) {
	if order < 1 {
		return nil, ErrInvalidOrder
	}
	nq := rule.Len()
	if nq < 1 {
		return nil, errors.New("basis: quadrature rule is empty")
	}

	// Per-degree Legendre value and derivative rows at the abscissas.
	pv := make([][]float64, order)
	dv := make([][]float64, order)
	for d := 0; d < order; d++ {
		pv[d] = quadrature.LegendreP(rule.Points, d)
		dv[d] = quadrature.GradLegendreP(rule.Points, d)
	}

	s := &Set{
		Order: order,
		Rule:  rule,
		psi:   make([]float64, order*order*nq),
		dPsiX: make([]float64, order*order*nq),
		dPsiY: make([]float64, order*order*nq),
		d2Psi: make([]float64, order*order*nq),
	}
	for p := 0; p < order; p++ {
		for q := 0; q < order; q++ {
			base := (p*order + q) * nq
			for k := 0; k < nq; k++ {
				xi := rule.Points[k]
				s.psi[base+k] = pv[p][k] * pv[q][k]
				s.dPsiX[base+k] = dv[p][k] * pv[q][k]
				s.dPsiY[base+k] = pv[p][k] * dv[q][k]
				s.d2Psi[base+k] = (2*xi*dv[p][k] - float64(p*(p+1))*pv[p][k]) /
					(1 - xi*xi) * pv[q][k]
			}
		}
	}
	return s, nil
}

// NQuad returns the number of quadrature points the tables are sampled at.
func (s *Set) NQuad() int { return s.Rule.Len() }

func (s *Set) idx(p, q, k int) int { return (p*s.Order+q)*s.NQuad() + k }

// Psi returns psi_pq evaluated at abscissa k.
func (s *Set) Psi(p, q, k int) float64 { return s.psi[s.idx(p, q, k)] }

// DPsiX returns the x-direction basis derivative at abscissa k.
func (s *Set) DPsiX(p, q, k int) float64 { return s.dPsiX[s.idx(p, q, k)] }

// DPsiY returns the y-direction basis derivative at abscissa k.
func (s *Set) DPsiY(p, q, k int) float64 { return s.dPsiY[s.idx(p, q, k)] }

// D2Psi returns the simplified second-derivative table at abscissa k.
func (s *Set) D2Psi(p, q, k int) float64 { return s.d2Psi[s.idx(p, q, k)] }
