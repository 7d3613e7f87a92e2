package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeSpeedStats(t *testing.T) {
	speeds := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	mean, max, p10, p50, p90 := ComputeSpeedStats(speeds)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	if max != 1.0 {
		t.Errorf("max = %v, want 1.0", max)
	}
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
}

func TestComputeSpeedStatsEmpty(t *testing.T) {
	mean, max, p10, p50, p90 := ComputeSpeedStats(nil)
	if mean != 0 || max != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestSampleFieldStats(t *testing.T) {
	// 3 fluid cells + 1 barrier cell, laid out row-major.
	rho := []float32{1, 1, 1, 1}
	ux := []float32{0, 0.3, 0.4, 99}
	uy := []float32{0, 0.4, 0.3, 99}
	dye := []float32{0, 1, 2, 0}
	temp := []float32{0, 0, 0, 0}
	barriers := []uint8{0, 0, 0, 1}

	s := SampleFieldStats(7, 1.5, 42, rho, ux, uy, dye, temp, barriers, true)

	if s.Step != 7 || s.SimTimeSec != 1.5 || s.DataVersion != 42 {
		t.Fatalf("unexpected identity fields: %+v", s)
	}
	if s.BarrierCount != 1 {
		t.Errorf("BarrierCount = %d, want 1", s.BarrierCount)
	}
	if math.Abs(s.TotalDye-3) > 1e-6 {
		t.Errorf("TotalDye = %v, want 3", s.TotalDye)
	}
	if math.Abs(s.MaxSpeed-0.5) > 1e-6 {
		t.Errorf("MaxSpeed = %v, want 0.5", s.MaxSpeed)
	}
	if !s.BarrierDirty {
		t.Error("BarrierDirty should propagate true")
	}
}
