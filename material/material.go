// Package material evaluates per-node one-group cross-sections with the
// linear fuel-temperature feedback on the absorption term.
package material

import "github.com/neutronworks/nemdiff/mesh"

// Properties are the static one-group constants of a region.
type Properties struct {
	D        float64 `json:"d"`          // diffusion coefficient
	SigmaA   float64 `json:"sigma_a"`    // base absorption cross-section
	NuSigmaF float64 `json:"nu_sigma_f"` // fission production cross-section
}

// Feedback holds the absorption feedback constants.
type Feedback struct {
	Coeff float64 `json:"k_fb"`  // feedback coefficient, 1/K
	TRef  float64 `json:"t_ref"` // reference fuel temperature
}

// Field holds per-node material values, linear node index i*Ny+j.
// D and NuSigmaF are fixed by the core/reflector split; SigmaA carries
// the temperature feedback and is the only value that changes between
// steps.
type Field struct {
	D        []float64
	SigmaA   []float64
	NuSigmaF []float64
}

// Compute evaluates the material field for the current fuel temperature.
// Core nodes get SigmaA = core.SigmaA - fb.Coeff*(T - fb.TRef); reflector
// nodes keep their base values untouched. Pure function, rebuilt in full
// every step.
func Compute(g *mesh.Grid, temp []float64, core, reflector Properties, fb Feedback) *Field {
	n := g.NumNodes()
	f := &Field{
		D:        make([]float64, n),
		SigmaA:   make([]float64, n),
		NuSigmaF: make([]float64, n),
	}
	for idx := 0; idx < n; idx++ {
		if g.IsCoreIndex(idx) {
			f.D[idx] = core.D
			f.SigmaA[idx] = core.SigmaA - fb.Coeff*(temp[idx]-fb.TRef)
			f.NuSigmaF[idx] = core.NuSigmaF
		} else {
			f.D[idx] = reflector.D
			f.SigmaA[idx] = reflector.SigmaA
			f.NuSigmaF[idx] = reflector.NuSigmaF
		}
	}
	return f
}

// HasFission reports whether any node has a positive fission cross-section.
func (f *Field) HasFission() bool {
	for _, v := range f.NuSigmaF {
		if v > 0 {
			return true
		}
	}
	return false
}
