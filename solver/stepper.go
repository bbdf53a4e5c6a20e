// Package solver drives the feedback-coupled transient: material
// recompute, operator assembly, eigensolve, thermal update, history
// recording and snapshot publication, strictly in that order each step.
package solver

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/neutronworks/nemdiff/assembly"
	"github.com/neutronworks/nemdiff/basis"
	"github.com/neutronworks/nemdiff/eigen"
	"github.com/neutronworks/nemdiff/internal/logging"
	"github.com/neutronworks/nemdiff/internal/observability"
	"github.com/neutronworks/nemdiff/material"
	"github.com/neutronworks/nemdiff/mesh"
	"github.com/neutronworks/nemdiff/quadrature"
	"github.com/neutronworks/nemdiff/thermal"
)

// Phase is the state of the transient loop.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStepping
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStepping:
		return "stepping"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// SimState is the complete per-step simulation state. Step threads it
// through the loop explicitly; nothing in the solver mutates a previous
// state.
type SimState struct {
	Step        int
	Time        float64
	Keff        float64
	Flux        *basis.Flux
	Temperature []float64
}

// StepResult summarizes one completed step.
type StepResult struct {
	Keff       float64
	CorePower  float64
	Iterations int
}

// Result is returned from Run, complete on success and carrying the
// collected prefix on failure.
type Result struct {
	PowerHistory []float64
	Keff         []float64
	Final        SimState
	Phase        Phase
}

// Stepper owns the transient loop. Logger, Visualizer and Metrics may be
// set between New and Run; they default to quiet no-ops.
type Stepper struct {
	cfg   Config
	grid  *mesh.Grid
	set   *basis.Set
	asm   *assembly.Assembler
	eig   *eigen.Solver
	phase Phase

	Logger     logging.Logger
	Visualizer Visualizer
	Metrics    *observability.SolverCollector
}

// New validates the configuration and precomputes the quadrature rule,
// basis tables and reference assembly matrices.
func New(cfg Config) (*Stepper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rule, err := quadrature.GaussLegendre(cfg.Order)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	set, err := basis.New(cfg.Order, rule)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	grid, err := mesh.NewGrid(cfg.Geometry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	asm, err := assembly.New(grid, set, cfg.AssemblyWorkers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return &Stepper{
		cfg:    cfg,
		grid:   grid,
		set:    set,
		asm:    asm,
		eig:    &eigen.Solver{MaxIter: cfg.EigenMaxIter, Tol: cfg.EigenTol},
		Logger: logging.Noop(),
	}, nil
}

// Grid exposes the mesh for snapshot consumers and tests.
func (st *Stepper) Grid() *mesh.Grid { return st.grid }

// Phase returns the current loop phase.
func (st *Stepper) Phase() Phase { return st.phase }

// InitialState returns the reference starting state: a flat unit flux
// expansion and a uniform fuel temperature.
func (st *Stepper) InitialState() *SimState {
	flux, _ := basis.NewFlatFlux(st.cfg.Order, st.grid.Nx, st.grid.Ny, 1)
	temp := make([]float64, st.grid.NumNodes())
	for i := range temp {
		temp[i] = st.cfg.InitialTemperature
	}
	return &SimState{Flux: flux, Temperature: temp}
}

// Step executes one transient iteration as a pure transformation of s:
// (1) material recompute from the current temperature, (2) operator
// assembly, (3) eigensolve seeded by the prior flux, (4) thermal update,
// (5) divergence check at the step boundary. The input state is never
// modified.
func (st *Stepper) Step(ctx context.Context, s *SimState) (*SimState, StepResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, StepResult{}, err
	}

	field := material.Compute(st.grid, s.Temperature, st.cfg.Core, st.cfg.Reflector, st.cfg.Feedback)

	sys, err := st.asm.Assemble(field)
	if err != nil {
		return nil, StepResult{}, err
	}

	res, err := st.eig.Solve(sys, s.Flux)
	if err != nil {
		return nil, StepResult{}, err
	}

	phi := thermal.NodalFlux(res.Flux)
	q := thermal.PowerDensity(phi, field, st.grid)
	temp := append([]float64(nil), s.Temperature...)
	thermal.UpdateTemperature(temp, q, st.grid, st.cfg.Dt, st.cfg.Thermal)

	if !allFinite(temp) || !allFinite(res.Flux.Coeffs) {
		return nil, StepResult{}, ErrDivergence
	}

	next := &SimState{
		Step:        s.Step + 1,
		Time:        s.Time + st.cfg.Dt,
		Keff:        res.Keff,
		Flux:        res.Flux,
		Temperature: temp,
	}
	sr := StepResult{
		Keff:       res.Keff,
		CorePower:  thermal.CorePower(phi, st.grid),
		Iterations: res.Iterations,
	}
	return next, sr, nil
}

// Run executes the configured number of steps. On a fatal step error the
// loop halts in PhaseFailed and returns the partial Result together with
// a StepError; Failed is terminal. Cancellation through ctx also returns
// the collected prefix. A completed run ends in PhaseIdle.
func (st *Stepper) Run(ctx context.Context) (Result, error) {
	steps := st.cfg.NumSteps()
	state := st.InitialState()
	st.phase = PhaseStepping

	hist := make([]float64, 0, steps)
	keffs := make([]float64, 0, steps)

	for n := 1; n <= steps; n++ {
		start := time.Now()
		next, sr, err := st.Step(ctx, state)
		if err != nil {
			if ctx.Err() != nil {
				st.phase = PhaseIdle
				st.Logger.Warn(ctx, "transient canceled",
					logging.Int("step", n), logging.Float64("time", state.Time))
				return Result{PowerHistory: hist, Keff: keffs, Final: *state, Phase: st.phase}, err
			}
			st.phase = PhaseFailed
			st.Logger.Error(ctx, "transient halted",
				logging.Int("step", n),
				logging.Float64("time", state.Time),
				logging.Err(err))
			return Result{PowerHistory: hist, Keff: keffs, Final: *state, Phase: st.phase},
				&StepError{Step: n, Time: state.Time, Err: err}
		}
		state = next
		hist = append(hist, sr.CorePower)
		keffs = append(keffs, sr.Keff)
		st.Metrics.ObserveStep(sr.Keff, sr.CorePower, time.Since(start))

		if st.cfg.RenderEvery > 0 && n%st.cfg.RenderEvery == 0 {
			st.Logger.Info(ctx, "step",
				logging.Int("step", n),
				logging.Float64("keff", sr.Keff),
				logging.Float64("core_power", sr.CorePower),
				logging.Int("eigen_iterations", sr.Iterations))
			if st.Visualizer != nil {
				st.Visualizer.RenderFlux(FluxSnapshot{
					Step: n,
					Time: state.Time,
					Flux: state.Flux,
					Grid: st.grid,
				})
			}
		}
	}

	st.phase = PhaseIdle
	return Result{PowerHistory: hist, Keff: keffs, Final: *state, Phase: st.phase}, nil
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
