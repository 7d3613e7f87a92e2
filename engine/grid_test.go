package engine

import (
	"math"
	"testing"
)

func restParams() Params {
	p := DefaultParams()
	p.ApplyToEdgesAll(Periodic)
	p.Threads = 1
	return p
}

// ApplyToEdgesAll is a small test-only convenience, not part of the public
// API: it fills every edge of Params.Edges with the same boundary kind
// before an Engine exists to call SetBoundary on.
func (p *Params) ApplyToEdgesAll(kind BoundaryKind) {
	for e := Edge(0); e < numEdges; e++ {
		p.Edges[e] = kind
	}
}

func TestNewRestState(t *testing.T) {
	e := New(8, 8, restParams())
	defer e.Close()

	for i, r := range e.rho {
		if math.Abs(float64(r-1)) > 1e-6 {
			t.Fatalf("cell %d: expected rho=1 at construction, got %f", i, r)
		}
	}
	for i := range e.ux {
		if e.ux[i] != 0 || e.uy[i] != 0 {
			t.Fatalf("cell %d: expected zero velocity at construction, got (%f,%f)", i, e.ux[i], e.uy[i])
		}
	}
	if e.DataVersion() != 0 {
		t.Errorf("expected dataVersion=0 at construction, got %d", e.DataVersion())
	}
}

func TestResetBitExact(t *testing.T) {
	e := New(16, 16, restParams())
	defer e.Close()

	snapBefore := e.Snapshot()

	e.AddForce(4, 4, 0.1, 0.05)
	e.AddDensity(5, 5, 1.0)
	e.AddObstacle(8, 8, 2, 0, 1, ShapeEllipse, false)
	e.Step(3)

	e.Reset()
	snapAfter := e.Snapshot()

	if snapAfter.DataVersion != 0 {
		t.Errorf("expected dataVersion=0 after Reset, got %d", snapAfter.DataVersion)
	}
	for i := range snapBefore.Rho {
		if snapBefore.Rho[i] != snapAfter.Rho[i] {
			t.Fatalf("cell %d: rho not bit-exact after reset: before=%f after=%f", i, snapBefore.Rho[i], snapAfter.Rho[i])
		}
		if snapBefore.Barriers[i] != snapAfter.Barriers[i] {
			t.Fatalf("cell %d: barrier not bit-exact after reset", i)
		}
	}
	for k := range snapBefore.F {
		for i := range snapBefore.F[k] {
			if snapBefore.F[k][i] != snapAfter.F[k][i] {
				t.Fatalf("direction %d cell %d: f not bit-exact after reset", k, i)
			}
		}
	}
}

func TestSeedDeterminism(t *testing.T) {
	p := restParams()
	p.Seed = 77
	e1 := New(16, 16, p)
	defer e1.Close()
	e2 := New(16, 16, p)
	defer e2.Close()

	for i := 0; i < 5; i++ {
		e1.ApplyDimensionalBrush(8, 8, 3, 0, 1, ShapeEllipse, DimNoise, 0.1, FalloffSmoothstep, 0.5)
		e2.ApplyDimensionalBrush(8, 8, 3, 0, 1, ShapeEllipse, DimNoise, 0.1, FalloffSmoothstep, 0.5)
	}

	ux1, ux2 := e1.ViewVelocityX(), e2.ViewVelocityX()
	for i := range ux1 {
		if ux1[i] != ux2[i] {
			t.Fatalf("cell %d: same-seed engines diverged under identical noise brush sequence: %f vs %f", i, ux1[i], ux2[i])
		}
	}
}

func TestSetSeedReseeds(t *testing.T) {
	e := New(8, 8, restParams())
	defer e.Close()

	e.SetSeed(123)
	e.ApplyDimensionalBrush(4, 4, 2, 0, 1, ShapeEllipse, DimNoise, 0.1, FalloffSmoothstep, 0.5)
	first := append([]float32(nil), e.ViewVelocityX()...)

	e.Reset()
	e.SetSeed(123)
	e.ApplyDimensionalBrush(4, 4, 2, 0, 1, ShapeEllipse, DimNoise, 0.1, FalloffSmoothstep, 0.5)
	second := e.ViewVelocityX()

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cell %d: reseeding with the same value did not reproduce the same sequence", i)
		}
	}
}

func TestViscosityToOmegaRoundTrip(t *testing.T) {
	nu := float32(0.02)
	omega := ViscosityToOmega(nu)
	recovered := (1/omega - 0.5) / 3
	if math.Abs(float64(recovered-nu)) > 1e-5 {
		t.Errorf("expected nu round-trip through omega, got nu=%f back=%f", nu, recovered)
	}
}
