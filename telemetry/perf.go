package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one stage of engine.Step's fixed per-tick pipeline (see
// engine/step.go). Every tick runs the same sequence in the same order, so
// phases are a small dense enum rather than an open string-keyed map.
type Phase int

const (
	PhaseMacroBoundary Phase = iota
	PhaseCollideStream
	PhaseOutflow
	PhaseAdvectDye
	PhaseAdvectTemp
	PhaseVorticity
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{
	PhaseMacroBoundary: "macro_boundary",
	PhaseCollideStream: "collide_stream",
	PhaseOutflow:       "outflow",
	PhaseAdvectDye:     "advect_dye",
	PhaseAdvectTemp:    "advect_temperature",
	PhaseVorticity:     "vorticity",
	PhaseTelemetry:     "telemetry",
}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// PerfSample holds timing data for a single engine.Step tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       [numPhases]time.Duration
}

// PerfCollector accumulates tick and phase timing over a rolling window,
// for cmd/headless's periodic throughput reporting. There is no frame
// timing here: this binary has no render loop, only a tick loop.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int

	tickStart  time.Time
	phaseStart time.Time
	current    PerfSample
	lastPhase  Phase
	inPhase    bool
}

// NewPerfCollector creates a collector averaging over the last windowSize
// ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
	}
}

// StartTick begins timing a new engine tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = PerfSample{}
	p.inPhase = false
}

// StartPhase closes out the previous phase, if any, and begins timing the
// named one.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	if p.inPhase {
		p.current.Phases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
	p.inPhase = true
}

// EndTick closes out the current phase and records the completed sample
// into the rolling window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.inPhase {
		p.current.Phases[p.lastPhase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
	p.current.TickDuration = now.Sub(p.tickStart)

	p.samples[p.writeIndex] = p.current
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated timing statistics over the collector's window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64

	TicksPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{}
	}

	var totalTick time.Duration
	var minTick, maxTick time.Duration
	var phaseSum [numPhases]time.Duration

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalTick += s.TickDuration

		if i == 0 || s.TickDuration < minTick {
			minTick = s.TickDuration
		}
		if s.TickDuration > maxTick {
			maxTick = s.TickDuration
		}

		for ph := Phase(0); ph < numPhases; ph++ {
			phaseSum[ph] += s.Phases[ph]
		}
	}

	avgTick := totalTick / time.Duration(p.sampleCount)

	var phaseAvg [numPhases]time.Duration
	var phasePct [numPhases]float64
	for ph := Phase(0); ph < numPhases; ph++ {
		phaseAvg[ph] = phaseSum[ph] / time.Duration(p.sampleCount)
		if avgTick > 0 {
			phasePct[ph] = float64(phaseAvg[ph]) / float64(avgTick) * 100
		}
	}

	var ticksPerSec float64
	if avgTick > 0 {
		ticksPerSec = float64(time.Second) / float64(avgTick)
	}

	return PerfStats{
		AvgTickDuration: avgTick,
		MinTickDuration: minTick,
		MaxTickDuration: maxTick,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		TicksPerSecond:  ticksPerSec,
	}
}

// LogStats logs performance statistics via the default slog logger.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}

	for ph := Phase(0); ph < numPhases; ph++ {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}

	for ph := Phase(0); ph < numPhases; ph++ {
		attrs = append(attrs, slog.Float64(ph.String()+"_pct", s.PhasePct[ph]))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd        int32   `csv:"window_end"`
	AvgTickUS        int64   `csv:"avg_tick_us"`
	MinTickUS        int64   `csv:"min_tick_us"`
	MaxTickUS        int64   `csv:"max_tick_us"`
	TicksPerSec      float64 `csv:"ticks_per_sec"`
	MacroBoundaryPct float64 `csv:"macro_boundary_pct"`
	CollideStreamPct float64 `csv:"collide_stream_pct"`
	OutflowPct       float64 `csv:"outflow_pct"`
	AdvectDyePct     float64 `csv:"advect_dye_pct"`
	AdvectTempPct    float64 `csv:"advect_temperature_pct"`
	VorticityPct     float64 `csv:"vorticity_pct"`
	TelemetryPct     float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:        windowEnd,
		AvgTickUS:        s.AvgTickDuration.Microseconds(),
		MinTickUS:        s.MinTickDuration.Microseconds(),
		MaxTickUS:        s.MaxTickDuration.Microseconds(),
		TicksPerSec:      s.TicksPerSecond,
		MacroBoundaryPct: s.PhasePct[PhaseMacroBoundary],
		CollideStreamPct: s.PhasePct[PhaseCollideStream],
		OutflowPct:       s.PhasePct[PhaseOutflow],
		AdvectDyePct:     s.PhasePct[PhaseAdvectDye],
		AdvectTempPct:    s.PhasePct[PhaseAdvectTemp],
		VorticityPct:     s.PhasePct[PhaseVorticity],
		TelemetryPct:     s.PhasePct[PhaseTelemetry],
	}
}
