// Command nemsim runs the coarse-mesh NEM diffusion transient and emits
// the normalized core power history.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/neutronworks/nemdiff/internal/logging"
	"github.com/neutronworks/nemdiff/internal/observability"
	"github.com/neutronworks/nemdiff/solver"
)

func main() {
	configPath := flag.String("config", "", "JSON config file applied over the defaults")
	order := flag.Int("order", 0, "override expansion order")
	dt := flag.Float64("dt", 0, "override time-step size")
	totalTime := flag.Float64("t-total", 0, "override total simulated time")
	renderEvery := flag.Int("render-every", -1, "override snapshot cadence in steps (0 disables)")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	outPath := flag.String("out", "", "write the run result as JSON to this file")
	flag.Parse()

	log := logging.New(logging.Config{Level: *logLevel, Format: *logFormat})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := solver.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			fatal(ctx, log, "open config", err)
		}
		cfg, err = solver.LoadConfig(f)
		f.Close()
		if err != nil {
			fatal(ctx, log, "load config", err)
		}
	}
	if *order > 0 {
		cfg.Order = *order
	}
	if *dt > 0 {
		cfg.Dt = *dt
	}
	if *totalTime > 0 {
		cfg.TotalTime = *totalTime
	}
	if *renderEvery >= 0 {
		cfg.RenderEvery = *renderEvery
	}

	st, err := solver.New(cfg)
	if err != nil {
		fatal(ctx, log, "construct solver", err)
	}
	st.Logger = log
	st.Visualizer = &snapshotLogger{log: log}

	if *metricsAddr != "" {
		collector, err := observability.NewSolverCollector(nil)
		if err != nil {
			fatal(ctx, log, "register metrics", err)
		}
		st.Metrics = collector
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error(ctx, "metrics server stopped", logging.Err(err))
			}
		}()
		log.Info(ctx, "serving metrics", logging.String("addr", *metricsAddr))
	}

	log.Info(ctx, "starting transient",
		logging.Int("steps", cfg.NumSteps()),
		logging.Int("order", cfg.Order),
		logging.Int("nx", cfg.Geometry.Nx),
		logging.Int("ny", cfg.Geometry.Ny))

	res, err := st.Run(ctx)
	if err != nil {
		var stepErr *solver.StepError
		if errors.As(err, &stepErr) {
			log.Error(ctx, "transient failed; reporting partial history",
				logging.Int("failed_step", stepErr.Step),
				logging.Int("completed_steps", len(res.PowerHistory)),
				logging.Err(err))
		} else {
			log.Warn(ctx, "transient interrupted",
				logging.Int("completed_steps", len(res.PowerHistory)),
				logging.Err(err))
		}
	}

	printSummary(res)
	if *outPath != "" {
		if werr := writeResult(*outPath, res); werr != nil {
			fatal(ctx, log, "write result", werr)
		}
		log.Info(ctx, "wrote result", logging.String("path", *outPath))
	}
	if err != nil {
		os.Exit(1)
	}
}

// snapshotLogger is the stand-in visualizer: it logs snapshot metadata on
// the render cadence instead of rasterizing the flux surface, which is
// external to this tool.
type snapshotLogger struct {
	log logging.Logger
}

func (v *snapshotLogger) RenderFlux(snap solver.FluxSnapshot) {
	v.log.Debug(context.Background(), "flux snapshot",
		logging.Int("step", snap.Step),
		logging.Float64("time", snap.Time),
		logging.Float64("leading_coefficient", snap.Flux.Leading(snap.Grid.Nx/2, snap.Grid.Ny/2)))
}

func printSummary(res solver.Result) {
	fmt.Printf("phase: %s, steps: %d\n", res.Phase, len(res.PowerHistory))
	if len(res.PowerHistory) == 0 {
		return
	}
	p0 := res.PowerHistory[0]
	last := res.PowerHistory[len(res.PowerHistory)-1]
	fmt.Printf("k_eff: first %.6f, last %.6f\n", res.Keff[0], res.Keff[len(res.Keff)-1])
	if p0 != 0 {
		fmt.Printf("relative power: last/first = %.6f\n", last/p0)
	}
}

type runOutput struct {
	Phase           string    `json:"phase"`
	PowerHistory    []float64 `json:"power_history"`
	NormalizedPower []float64 `json:"normalized_power,omitempty"`
	Keff            []float64 `json:"keff"`
}

func writeResult(path string, res solver.Result) error {
	out := runOutput{
		Phase:        res.Phase.String(),
		PowerHistory: res.PowerHistory,
		Keff:         res.Keff,
	}
	if len(res.PowerHistory) > 0 && res.PowerHistory[0] != 0 {
		out.NormalizedPower = make([]float64, len(res.PowerHistory))
		for i, p := range res.PowerHistory {
			out.NormalizedPower[i] = p / res.PowerHistory[0]
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func fatal(ctx context.Context, log logging.Logger, msg string, err error) {
	log.Error(ctx, msg, logging.Err(err))
	os.Exit(1)
}
