package basis

import "errors"

// Flux is the order*order coefficient array per node for an Nx x Ny mesh.
// Coeffs is laid out exactly as the global DOF vector: node (i,j) owns the
// contiguous block starting at (i*Ny+j)*order^2, and coefficient (p,q)
// sits at offset p*order+q within the block. Assembly and eigenvector
// reshaping share this layout, so reshaping is a reinterpretation rather
// than a copy.
type Flux struct {
	Order  int
	Nx, Ny int
	Coeffs []float64
}

// NewFlux allocates a zero flux tensor.
func NewFlux(order, nx, ny int) (*Flux, error) {
	if order < 1 {
		return nil, ErrInvalidOrder
	}
	if nx < 1 || ny < 1 {
		return nil, errors.New("basis: mesh dimensions must be at least 1")
	}
	return &Flux{
		Order:  order,
		Nx:     nx,
		Ny:     ny,
		Coeffs: make([]float64, order*order*nx*ny),
	}, nil
}

// NewFlatFlux allocates a flux tensor with v in every mode slot. With
// v=1 it is the flat starting expansion that seeds the first eigensolve.
func NewFlatFlux(order, nx, ny int, v float64) (*Flux, error) {
	f, err := NewFlux(order, nx, ny)
	if err != nil {
		return nil, err
	}
	for i := range f.Coeffs {
		f.Coeffs[i] = v
	}
	return f, nil
}

// BlockSize returns order^2, the DOF count each node owns.
func (f *Flux) BlockSize() int { return f.Order * f.Order }

// NumNodes returns Nx*Ny.
func (f *Flux) NumNodes() int { return f.Nx * f.Ny }

// Len returns the total DOF count.
func (f *Flux) Len() int { return len(f.Coeffs) }

// NodeBase returns the first global index of node (i,j)'s block.
func (f *Flux) NodeBase(i, j int) int { return (i*f.Ny + j) * f.BlockSize() }

// At returns coefficient (p,q) of node (i,j).
func (f *Flux) At(p, q, i, j int) float64 {
	return f.Coeffs[f.NodeBase(i, j)+p*f.Order+q]
}

// Set assigns coefficient (p,q) of node (i,j).
func (f *Flux) Set(p, q, i, j int, v float64) {
	f.Coeffs[f.NodeBase(i, j)+p*f.Order+q] = v
}

// Leading returns the leading (P0*P0) coefficient of node (i,j), the
// representative nodal flux scalar used by the feedback loop.
func (f *Flux) Leading(i, j int) float64 { return f.At(0, 0, i, j) }

// Clone returns a deep copy.
func (f *Flux) Clone() *Flux {
	c := &Flux{Order: f.Order, Nx: f.Nx, Ny: f.Ny, Coeffs: make([]float64, len(f.Coeffs))}
	copy(c.Coeffs, f.Coeffs)
	return c
}

// FromVector wraps a global DOF vector produced by the eigensolver into a
// flux tensor with the same shape as f. The slice is not copied.
func (f *Flux) FromVector(v []float64) (*Flux, error) {
	if len(v) != f.Len() {
		return nil, errors.New("basis: vector length does not match flux shape")
	}
	return &Flux{Order: f.Order, Nx: f.Nx, Ny: f.Ny, Coeffs: v}, nil
}
