// Package thermal converts nodal flux to fission power density and
// advances the explicit fuel-temperature update that feeds back into the
// absorption cross-section.
package thermal

import (
	"github.com/neutronworks/nemdiff/basis"
	"github.com/neutronworks/nemdiff/material"
	"github.com/neutronworks/nemdiff/mesh"
)

// EnergyPerFission converts reaction-rate units to power-density units
// (200 MeV released per fission).
const EnergyPerFission = 200.0

// Config holds the lumped thermal constants of the fuel model.
type Config struct {
	HeatCapacity float64 `json:"heat_capacity"`
	CoolingTime  float64 `json:"cooling_time_constant"`
	TCoolant     float64 `json:"t_coolant"`
}

// NodalFlux reduces each node's expansion to its representative scalar,
// the leading (node-average) coefficient. Linear node index i*Ny+j.
func NodalFlux(f *basis.Flux) []float64 {
	phi := make([]float64, f.NumNodes())
	for i := 0; i < f.Nx; i++ {
		for j := 0; j < f.Ny; j++ {
			phi[i*f.Ny+j] = f.Leading(i, j)
		}
	}
	return phi
}

// PowerDensity computes Q = nuSigmaF * phi * EnergyPerFission on core
// nodes; reflector nodes produce no power.
func PowerDensity(phi []float64, field *material.Field, g *mesh.Grid) []float64 {
	q := make([]float64, len(phi))
	for n := range q {
		if g.IsCoreIndex(n) {
			q[n] = field.NuSigmaF[n] * phi[n] * EnergyPerFission
		}
	}
	return q
}

// UpdateTemperature advances the fuel temperature of core nodes in place
// by one explicit step:
//
//	T += dt*(Q/heatCapacity - (T - TCoolant)/coolingTime)
//
// Reflector-node temperatures are left untouched.
func UpdateTemperature(temp, q []float64, g *mesh.Grid, dt float64, cfg Config) {
	for n := range temp {
		if !g.IsCoreIndex(n) {
			continue
		}
		temp[n] += dt * (q[n]/cfg.HeatCapacity - (temp[n]-cfg.TCoolant)/cfg.CoolingTime)
	}
}

// CorePower integrates the nodal flux over core nodes, the per-step
// scalar appended to the power history.
func CorePower(phi []float64, g *mesh.Grid) float64 {
	var p float64
	for n, v := range phi {
		if g.IsCoreIndex(n) {
			p += v
		}
	}
	return p
}
