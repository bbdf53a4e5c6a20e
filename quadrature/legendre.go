package quadrature

// LegendreP evaluates the degree-n Legendre polynomial at the points x
// using the three-term recurrence (k+1)P_{k+1} = (2k+1)xP_k - kP_{k-1}.
func LegendreP(x []float64, n int) []float64 {
	P := make([]float64, len(x))
	for i := range P {
		P[i] = LegendrePSingle(x[i], n)
	}
	return P
}

// LegendrePSingle evaluates P_n at a single point.
func LegendrePSingle(x float64, n int) float64 {
	if n == 0 {
		return 1
	}
	if n == 1 {
		return x
	}
	pm, p := 1.0, x
	for k := 1; k < n; k++ {
		fk := float64(k)
		pm, p = p, ((2*fk+1)*x*p-fk*pm)/(fk+1)
	}
	return p
}

// GradLegendreP evaluates the derivative of P_n at the points x through
// the identity dP_n = n(xP_n - P_{n-1})/(1-x^2), which is how the nodal
// model defines its basis derivatives. Valid for |x| < 1, which holds at
// all Gauss-Legendre abscissas.
func GradLegendreP(x []float64, n int) []float64 {
	dP := make([]float64, len(x))
	if n == 0 {
		return dP
	}
	for i, xi := range x {
		pn := LegendrePSingle(xi, n)
		pm := LegendrePSingle(xi, n-1)
		dP[i] = float64(n) * (xi*pn - pm) / (1 - xi*xi)
	}
	return dP
}
