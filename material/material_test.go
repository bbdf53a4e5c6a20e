package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neutronworks/nemdiff/mesh"
)

// singleCoreGrid is a 3x3 grid whose center node is the only core node.
func singleCoreGrid(t *testing.T) *mesh.Grid {
	t.Helper()
	g, err := mesh.NewGrid(mesh.Config{Lx: 3, Ly: 3, CoreLx: 1, CoreLy: 1, Nx: 3, Ny: 3})
	require.NoError(t, err)
	require.Equal(t, 1, g.NumCore())
	require.True(t, g.IsCore(1, 1))
	return g
}

func uniformTemp(n int, v float64) []float64 {
	temp := make([]float64, n)
	for i := range temp {
		temp[i] = v
	}
	return temp
}

func TestComputeAtReferenceTemperature(t *testing.T) {
	g := singleCoreGrid(t)
	core := Properties{D: 1.2, SigmaA: 0.12, NuSigmaF: 0.18}
	refl := Properties{D: 1.6, SigmaA: 0.02}
	fb := Feedback{Coeff: 5e-5, TRef: 800}

	f := Compute(g, uniformTemp(g.NumNodes(), 800), core, refl, fb)
	center := g.NodeIndex(1, 1)
	assert.Equal(t, 0.12, f.SigmaA[center], "feedback term vanishes at T_ref")
	assert.Equal(t, 1.2, f.D[center])
	assert.Equal(t, 0.18, f.NuSigmaF[center])

	corner := g.NodeIndex(0, 0)
	assert.Equal(t, 0.02, f.SigmaA[corner])
	assert.Equal(t, 1.6, f.D[corner])
	assert.Equal(t, 0.0, f.NuSigmaF[corner])
}

func TestComputeFeedbackSlope(t *testing.T) {
	g := singleCoreGrid(t)
	core := Properties{D: 1.2, SigmaA: 0.12, NuSigmaF: 0.18}
	refl := Properties{D: 1.6, SigmaA: 0.02}
	fb := Feedback{Coeff: 5e-5, TRef: 800}
	center := g.NodeIndex(1, 1)

	hot := Compute(g, uniformTemp(g.NumNodes(), 900), core, refl, fb)
	assert.InDelta(t, 0.115, hot.SigmaA[center], 1e-15)

	cold := Compute(g, uniformTemp(g.NumNodes(), 700), core, refl, fb)
	assert.InDelta(t, 0.125, cold.SigmaA[center], 1e-15)

	// Reflector absorption never sees the temperature.
	corner := g.NodeIndex(0, 0)
	assert.Equal(t, hot.SigmaA[corner], cold.SigmaA[corner])
}

func TestHasFission(t *testing.T) {
	g := singleCoreGrid(t)
	temp := uniformTemp(g.NumNodes(), 800)
	fb := Feedback{Coeff: 5e-5, TRef: 800}

	with := Compute(g, temp, Properties{D: 1, SigmaA: 0.1, NuSigmaF: 0.2}, Properties{D: 1, SigmaA: 0.1}, fb)
	assert.True(t, with.HasFission())

	without := Compute(g, temp, Properties{D: 1, SigmaA: 0.1}, Properties{D: 1, SigmaA: 0.1}, fb)
	assert.False(t, without.HasFission())
}
