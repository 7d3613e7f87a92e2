package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// FieldStats holds aggregated field diagnostics for one sampled step,
// the engine's equivalent of a window summary: no temporal window exists
// in the simulation itself, so each sample stands alone and callers
// decide how often to take one (spec.md §9 "Step timing diagnostics").
type FieldStats struct {
	Step        int64   `csv:"step"`
	SimTimeSec  float64 `csv:"sim_time"`
	DataVersion uint64  `csv:"data_version"`

	MeanDensity float64 `csv:"mean_density"`
	MeanSpeed   float64 `csv:"mean_speed"`
	MaxSpeed    float64 `csv:"max_speed"`

	SpeedP10 float64 `csv:"speed_p10"`
	SpeedP50 float64 `csv:"speed_p50"`
	SpeedP90 float64 `csv:"speed_p90"`

	TotalDye         float64 `csv:"total_dye"`
	TotalTemperature float64 `csv:"total_temperature"`

	BarrierCount int `csv:"barrier_count"`
	BarrierDirty bool `csv:"barrier_dirty"`
}

// Percentile calculates the p-th quantile (p in [0,1]) of a sorted slice by
// linear interpolation between the two closest ranks, at fractional index
// p*(n-1). It does not use gonum's stat.Quantile, whose LinInterp rule
// interpolates the empirical CDF and gives different values (2.5 rather
// than 3 for the median of 1..5).
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	idx := p * float64(n-1)
	lo := int(idx)
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*(idx-float64(lo))
}

// ComputeSpeedStats reduces a slice of per-cell speeds to mean, max, and
// the p10/p50/p90 quantiles used by FieldStats.
func ComputeSpeedStats(speeds []float64) (mean, max, p10, p50, p90 float64) {
	n := len(speeds)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}
	mean = stat.Mean(speeds, nil)
	sorted := make([]float64, n)
	copy(sorted, speeds)
	sort.Float64s(sorted)
	max = sorted[n-1]
	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	return mean, max, p10, p50, p90
}

// SampleFieldStats reduces the engine's live buffers into a FieldStats
// snapshot. The buffers are passed as separate slices (as the engine's
// View* accessors return them), so this function does not depend on the
// engine package's types.
func SampleFieldStats(step int64, simTime float64, dataVersion uint64, rho, ux, uy, dye, temperature []float32, barriers []uint8, barrierDirty bool) FieldStats {
	n := len(rho)
	s := FieldStats{Step: step, SimTimeSec: simTime, DataVersion: dataVersion, BarrierDirty: barrierDirty}
	if n == 0 {
		return s
	}

	speeds := make([]float64, 0, n)
	var densitySum, dyeSum, tempSum float64
	barrierCount := 0
	for i := 0; i < n; i++ {
		if barriers[i] != 0 {
			barrierCount++
			continue
		}
		densitySum += float64(rho[i])
		dyeSum += float64(dye[i])
		tempSum += float64(temperature[i])
		u, v := float64(ux[i]), float64(uy[i])
		speeds = append(speeds, u*u+v*v)
	}
	for i := range speeds {
		speeds[i] = math.Sqrt(speeds[i])
	}

	fluidCount := n - barrierCount
	if fluidCount > 0 {
		s.MeanDensity = densitySum / float64(fluidCount)
	}
	s.TotalDye = dyeSum
	s.TotalTemperature = tempSum
	s.BarrierCount = barrierCount
	s.MeanSpeed, s.MaxSpeed, s.SpeedP10, s.SpeedP50, s.SpeedP90 = ComputeSpeedStats(speeds)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s FieldStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("step", s.Step),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Uint64("data_version", s.DataVersion),
		slog.Float64("mean_density", s.MeanDensity),
		slog.Float64("mean_speed", s.MeanSpeed),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("total_dye", s.TotalDye),
		slog.Float64("total_temperature", s.TotalTemperature),
		slog.Int("barrier_count", s.BarrierCount),
		slog.Bool("barrier_dirty", s.BarrierDirty),
	)
}

// LogStats logs the field stats using slog.
func (s FieldStats) LogStats() {
	slog.Info("stats",
		"step", s.Step,
		"sim_time", s.SimTimeSec,
		"data_version", s.DataVersion,
		"mean_density", s.MeanDensity,
		"mean_speed", s.MeanSpeed,
		"max_speed", s.MaxSpeed,
		"speed_p10", s.SpeedP10,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"total_dye", s.TotalDye,
		"total_temperature", s.TotalTemperature,
		"barrier_count", s.BarrierCount,
		"barrier_dirty", s.BarrierDirty,
	)
}
