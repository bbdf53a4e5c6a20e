// Package mesh supplies the coarse rectangular grid the solver runs on:
// node spacing, node-center coordinates and the core/reflector mask.
package mesh

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is returned for non-positive dimensions or a core
// region that does not fit inside the domain.
var ErrInvalidGeometry = errors.New("mesh: invalid geometry")

// Config describes the domain and its central core sub-region.
type Config struct {
	Lx     float64 `json:"lx"`
	Ly     float64 `json:"ly"`
	CoreLx float64 `json:"core_lx"`
	CoreLy float64 `json:"core_ly"`
	Nx     int     `json:"nx"`
	Ny     int     `json:"ny"`
}

// Grid is an Nx x Ny arrangement of coarse nodes with uniform spacing.
// Nodes are addressed by (i,j) with i in [0,Nx) along x and j in [0,Ny)
// along y; the linear node index is i*Ny+j (row-major). Immutable after
// construction.
type Grid struct {
	Nx, Ny int
	Dx, Dy float64

	// X and Y hold node-center coordinates per axis.
	X, Y []float64

	core []bool
}

// NewGrid builds the grid and classifies each node as core or reflector.
// A node is core when its center lies inside the centered CoreLx x CoreLy
// rectangle. The classification partitions the mesh; there is no third
// state.
func NewGrid(cfg Config) (*Grid, error) {
	if cfg.Nx < 1 || cfg.Ny < 1 {
		return nil, fmt.Errorf("%w: mesh resolution %dx%d", ErrInvalidGeometry, cfg.Nx, cfg.Ny)
	}
	if cfg.Lx <= 0 || cfg.Ly <= 0 {
		return nil, fmt.Errorf("%w: domain size %gx%g", ErrInvalidGeometry, cfg.Lx, cfg.Ly)
	}
	if cfg.CoreLx < 0 || cfg.CoreLy < 0 || cfg.CoreLx > cfg.Lx || cfg.CoreLy > cfg.Ly {
		return nil, fmt.Errorf("%w: core region %gx%g outside domain %gx%g",
			ErrInvalidGeometry, cfg.CoreLx, cfg.CoreLy, cfg.Lx, cfg.Ly)
	}

	g := &Grid{
		Nx: cfg.Nx,
		Ny: cfg.Ny,
		Dx: cfg.Lx / float64(cfg.Nx),
		Dy: cfg.Ly / float64(cfg.Ny),
		X:  make([]float64, cfg.Nx),
		Y:  make([]float64, cfg.Ny),
	}
	for i := range g.X {
		g.X[i] = (float64(i) + 0.5) * g.Dx
	}
	for j := range g.Y {
		g.Y[j] = (float64(j) + 0.5) * g.Dy
	}

	cx, cy := cfg.Lx/2, cfg.Ly/2
	g.core = make([]bool, cfg.Nx*cfg.Ny)
	for i := 0; i < cfg.Nx; i++ {
		for j := 0; j < cfg.Ny; j++ {
			inX := g.X[i] >= cx-cfg.CoreLx/2 && g.X[i] <= cx+cfg.CoreLx/2
			inY := g.Y[j] >= cy-cfg.CoreLy/2 && g.Y[j] <= cy+cfg.CoreLy/2
			g.core[i*cfg.Ny+j] = inX && inY
		}
	}
	return g, nil
}

// NumNodes returns Nx*Ny.
func (g *Grid) NumNodes() int { return g.Nx * g.Ny }

// NodeIndex returns the row-major linear index of node (i,j).
func (g *Grid) NodeIndex(i, j int) int { return i*g.Ny + j }

// IsCore reports whether node (i,j) is a core node.
func (g *Grid) IsCore(i, j int) bool { return g.core[g.NodeIndex(i, j)] }

// IsCoreIndex reports whether the node with linear index n is core.
func (g *Grid) IsCoreIndex(n int) bool { return g.core[n] }

// NumCore returns the number of core nodes.
func (g *Grid) NumCore() int {
	c := 0
	for _, v := range g.core {
		if v {
			c++
		}
	}
	return c
}
