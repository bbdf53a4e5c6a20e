package solver

import (
	"github.com/neutronworks/nemdiff/basis"
	"github.com/neutronworks/nemdiff/mesh"
)

// FluxSnapshot is the periodic event delivered to the external
// visualizer: the current flux expansion with the mesh metadata needed to
// reconstruct a high-resolution field. The Flux pointer is the live
// per-step tensor; consumers that retain it past the callback must clone.
type FluxSnapshot struct {
	Step int
	Time float64
	Flux *basis.Flux
	Grid *mesh.Grid
}

// Visualizer consumes flux snapshots on the configured cadence.
// Rendering itself is external to the solver.
type Visualizer interface {
	RenderFlux(snap FluxSnapshot)
}
