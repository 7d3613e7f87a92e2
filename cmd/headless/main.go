package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/lbmsim/config"
	"github.com/pthm-cable/lbmsim/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output field stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Steps between stats samples (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config)")
	maxSteps := flag.Int("max-steps", 0, "Stop after N steps (0 = unlimited)")
	stepsPerIter := flag.Int("steps-per-iter", 1, "Engine steps per loop iteration")

	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *seed != 0 {
		cfg.Derived.EngineParams.Seed = *seed
	}

	eng := cfg.NewEngine()
	defer eng.Close()

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to open output dir", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	statsEvery := *statsWindow
	if statsEvery <= 0 {
		statsEvery = int(cfg.Telemetry.StatsWindow)
	}
	if statsEvery <= 0 {
		statsEvery = 1
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	start := time.Now()

	slog.Info("starting headless simulation",
		"width", eng.Width(), "height", eng.Height(),
		"seed", cfg.Derived.EngineParams.Seed,
		"max_steps", *maxSteps,
		"steps_per_iter", *stepsPerIter,
	)

	var step int64
	for {
		perf.StartTick()
		eng.Step(*stepsPerIter)
		perf.EndTick()
		step += int64(*stepsPerIter)

		if step%int64(statsEvery) == 0 {
			stats := telemetry.SampleFieldStats(
				step, time.Since(start).Seconds(), eng.DataVersion(),
				eng.ViewDensity(), eng.ViewVelocityX(), eng.ViewVelocityY(),
				eng.ViewDye(), eng.ViewTemperature(), eng.ViewBarriers(),
				eng.CheckBarrierDirty(),
			)
			if *logStats {
				stats.LogStats()
			}
			if err := out.WriteTelemetry(stats); err != nil {
				slog.Warn("writing telemetry record", "error", err)
			}
			if err := out.WritePerf(perf.Stats(), int32(step)); err != nil {
				slog.Warn("writing perf record", "error", err)
			}
		}

		if *maxSteps > 0 && int(step) >= *maxSteps {
			slog.Info("max steps reached", "step", step)
			return
		}
	}
}
