package solver

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/neutronworks/nemdiff/material"
	"github.com/neutronworks/nemdiff/mesh"
	"github.com/neutronworks/nemdiff/thermal"
)

// Config is the construction-time configuration of the transient solver.
// There is no dynamic reconfiguration; a Stepper is built from one Config
// and keeps it for its lifetime.
type Config struct {
	Geometry mesh.Config `json:"geometry"`

	// Order is the nodal expansion order; each node carries order^2 flux
	// coefficients.
	Order int `json:"order"`

	Core      material.Properties `json:"core"`
	Reflector material.Properties `json:"reflector"`
	Feedback  material.Feedback   `json:"feedback"`
	Thermal   thermal.Config      `json:"thermal"`

	InitialTemperature float64 `json:"initial_temperature"`

	Dt        float64 `json:"dt"`
	TotalTime float64 `json:"total_time"`

	// RenderEvery is the snapshot cadence in steps; 0 disables snapshots.
	RenderEvery int `json:"render_every"`

	EigenTol     float64 `json:"eigen_tolerance"`
	EigenMaxIter int     `json:"eigen_max_iterations"`

	// AssemblyWorkers bounds the goroutine fan-out in per-node assembly;
	// values < 1 select GOMAXPROCS.
	AssemblyWorkers int `json:"assembly_workers"`
}

// DefaultConfig returns the reference transient: a 30x30 domain with a
// centered 20x20 core on a 4x4 coarse mesh, 6th-order expansion, 600
// steps of 5 ms.
func DefaultConfig() Config {
	return Config{
		Geometry: mesh.Config{
			Lx: 30, Ly: 30,
			CoreLx: 20, CoreLy: 20,
			Nx: 4, Ny: 4,
		},
		Order:     6,
		Core:      material.Properties{D: 1.2, SigmaA: 0.12, NuSigmaF: 0.18},
		Reflector: material.Properties{D: 1.6, SigmaA: 0.02, NuSigmaF: 0},
		Feedback:  material.Feedback{Coeff: 5e-5, TRef: 800},
		Thermal: thermal.Config{
			HeatCapacity: 100,
			CoolingTime:  1.0,
			TCoolant:     600,
		},
		InitialTemperature: 800,
		Dt:                 0.005,
		TotalTime:          3.0,
		RenderEvery:        50,
		EigenTol:           1e-10,
		EigenMaxIter:       500,
	}
}

// LoadConfig decodes a JSON document over the defaults, so partial files
// only need to name the values they change.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return cfg, nil
}

// NumSteps returns the number of transient steps the configuration asks
// for.
func (c Config) NumSteps() int {
	return int(math.Round(c.TotalTime / c.Dt))
}

// Validate checks the configuration at construction time. All failures
// wrap ErrConfiguration and are never retried.
func (c Config) Validate() error {
	if c.Order < 1 {
		return fmt.Errorf("%w: expansion order %d", ErrConfiguration, c.Order)
	}
	if c.Geometry.Nx < 1 || c.Geometry.Ny < 1 {
		return fmt.Errorf("%w: mesh resolution %dx%d", ErrConfiguration, c.Geometry.Nx, c.Geometry.Ny)
	}
	if c.Geometry.Lx <= 0 || c.Geometry.Ly <= 0 {
		return fmt.Errorf("%w: domain size %gx%g", ErrConfiguration, c.Geometry.Lx, c.Geometry.Ly)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: time step %g", ErrConfiguration, c.Dt)
	}
	if c.TotalTime < c.Dt {
		return fmt.Errorf("%w: total time %g shorter than one step", ErrConfiguration, c.TotalTime)
	}
	if c.Thermal.HeatCapacity <= 0 || c.Thermal.CoolingTime <= 0 {
		return fmt.Errorf("%w: thermal constants %+v", ErrConfiguration, c.Thermal)
	}
	if c.RenderEvery < 0 {
		return fmt.Errorf("%w: render cadence %d", ErrConfiguration, c.RenderEvery)
	}
	if c.EigenTol <= 0 || c.EigenMaxIter < 1 {
		return fmt.Errorf("%w: eigensolver controls tol=%g maxIter=%d",
			ErrConfiguration, c.EigenTol, c.EigenMaxIter)
	}
	return nil
}
