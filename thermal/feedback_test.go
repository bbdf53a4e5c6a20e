package thermal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neutronworks/nemdiff/basis"
	"github.com/neutronworks/nemdiff/material"
	"github.com/neutronworks/nemdiff/mesh"
)

func singleCoreGrid(t *testing.T) *mesh.Grid {
	t.Helper()
	g, err := mesh.NewGrid(mesh.Config{Lx: 3, Ly: 3, CoreLx: 1, CoreLy: 1, Nx: 3, Ny: 3})
	require.NoError(t, err)
	require.Equal(t, 1, g.NumCore())
	return g
}

func TestNodalFluxLeadingCoefficient(t *testing.T) {
	f, err := basis.NewFlux(3, 2, 2)
	require.NoError(t, err)
	f.Set(0, 0, 0, 0, 1.5)
	f.Set(0, 0, 1, 1, 2.5)
	f.Set(2, 2, 1, 1, 99) // higher modes are not the representative scalar

	phi := NodalFlux(f)
	require.Len(t, phi, 4)
	assert.Equal(t, 1.5, phi[0])
	assert.Equal(t, 0.0, phi[1])
	assert.Equal(t, 0.0, phi[2])
	assert.Equal(t, 2.5, phi[3])
}

func TestPowerDensityCoreOnly(t *testing.T) {
	g := singleCoreGrid(t)
	temp := make([]float64, g.NumNodes())
	for i := range temp {
		temp[i] = 800
	}
	field := material.Compute(g, temp,
		material.Properties{D: 1.2, SigmaA: 0.12, NuSigmaF: 0.18},
		material.Properties{D: 1.6, SigmaA: 0.02},
		material.Feedback{Coeff: 5e-5, TRef: 800})

	phi := make([]float64, g.NumNodes())
	for i := range phi {
		phi[i] = 0.5
	}
	q := PowerDensity(phi, field, g)

	center := g.NodeIndex(1, 1)
	assert.InDelta(t, 0.18*0.5*EnergyPerFission, q[center], 1e-12)
	for n := range q {
		if n != center {
			assert.Zero(t, q[n], "reflector node %d must produce no power", n)
		}
	}
}

func TestUpdateTemperatureExplicitStep(t *testing.T) {
	g := singleCoreGrid(t)
	cfg := Config{HeatCapacity: 100, CoolingTime: 2, TCoolant: 600}

	temp := make([]float64, g.NumNodes())
	for i := range temp {
		temp[i] = 700
	}
	q := make([]float64, g.NumNodes())
	center := g.NodeIndex(1, 1)
	q[center] = 50

	UpdateTemperature(temp, q, g, 0.1, cfg)

	// T += dt*(Q/C - (T-Tc)/tau) = 0.1*(0.5 - 50)
	assert.InDelta(t, 700+0.1*(0.5-50), temp[center], 1e-12)
	for n := range temp {
		if n != center {
			assert.Equal(t, 700.0, temp[n], "reflector temperature must not move")
		}
	}
}

func TestUpdateTemperatureEquilibrium(t *testing.T) {
	g := singleCoreGrid(t)
	cfg := Config{HeatCapacity: 100, CoolingTime: 2, TCoolant: 600}
	center := g.NodeIndex(1, 1)

	q := make([]float64, g.NumNodes())
	q[center] = 50
	temp := make([]float64, g.NumNodes())
	eq := cfg.TCoolant + cfg.CoolingTime*q[center]/cfg.HeatCapacity
	temp[center] = eq

	UpdateTemperature(temp, q, g, 0.1, cfg)
	assert.InDelta(t, eq, temp[center], 1e-12)
}

func TestCorePower(t *testing.T) {
	g := singleCoreGrid(t)
	phi := make([]float64, g.NumNodes())
	for i := range phi {
		phi[i] = 3
	}
	assert.Equal(t, 3.0, CorePower(phi, g), "only the core node contributes")
}
