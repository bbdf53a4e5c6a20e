package basis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFluxLayout(t *testing.T) {
	const order, nx, ny = 3, 2, 2
	f, err := NewFlux(order, nx, ny)
	require.NoError(t, err)
	require.Equal(t, order*order*nx*ny, f.Len())
	require.Equal(t, order*order, f.BlockSize())
	require.Equal(t, nx*ny, f.NumNodes())

	// Row-major node traversal with contiguous order^2 blocks.
	assert.Equal(t, 0, f.NodeBase(0, 0))
	assert.Equal(t, 9, f.NodeBase(0, 1))
	assert.Equal(t, 18, f.NodeBase(1, 0))
	assert.Equal(t, 27, f.NodeBase(1, 1))

	f.Set(1, 2, 1, 0, 42)
	assert.Equal(t, 42.0, f.At(1, 2, 1, 0))
	// (p,q) -> p*order+q within the block.
	assert.Equal(t, 42.0, f.Coeffs[18+1*order+2])

	f.Set(0, 0, 0, 1, 7)
	assert.Equal(t, 7.0, f.Leading(0, 1))
}

func TestFluxClone(t *testing.T) {
	f, err := NewFlatFlux(2, 2, 1, 3)
	require.NoError(t, err)
	c := f.Clone()
	require.Equal(t, f.Coeffs, c.Coeffs)
	c.Coeffs[0] = -1
	assert.Equal(t, 3.0, f.Coeffs[0], "clone must not share storage")
}

func TestFluxFromVector(t *testing.T) {
	f, err := NewFlux(2, 2, 2)
	require.NoError(t, err)

	v := make([]float64, f.Len())
	v[5] = 1.5
	g, err := f.FromVector(v)
	require.NoError(t, err)
	assert.Equal(t, 1.5, g.Coeffs[5])

	_, err = f.FromVector(make([]float64, 3))
	assert.Error(t, err)
}

func TestFluxInvalidShape(t *testing.T) {
	_, err := NewFlux(0, 2, 2)
	assert.Error(t, err)
	_, err = NewFlux(2, 0, 2)
	assert.Error(t, err)
	_, err = NewFlux(2, 2, -1)
	assert.Error(t, err)
}
