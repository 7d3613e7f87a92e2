package engine

import (
	"math"
	"testing"
)

func TestBarrierPinning(t *testing.T) {
	p := restParams()
	e := New(32, 32, p)
	defer e.Close()

	e.AddObstacle(16, 16, 3, 0, 1, ShapeEllipse, false)
	e.AddForce(10, 10, 0.1, 0)
	e.AddDensity(16, 16, 1.0)

	for n := 0; n < 10; n++ {
		e.Step(1)
		for i, b := range e.barriers {
			if b == 0 {
				continue
			}
			if math.Abs(float64(e.rho[i]-1)) > 1e-6 {
				t.Fatalf("step %d cell %d: expected rho=1 on barrier, got %f", n, i, e.rho[i])
			}
			if e.ux[i] != 0 || e.uy[i] != 0 {
				t.Fatalf("step %d cell %d: expected zero velocity on barrier, got (%f,%f)", n, i, e.ux[i], e.uy[i])
			}
			if e.dye[i] != 0 {
				t.Fatalf("step %d cell %d: expected dye=0 on barrier, got %f", n, i, e.dye[i])
			}
			if e.temperature[i] != 0 {
				t.Fatalf("step %d cell %d: expected temperature=0 on barrier, got %f", n, i, e.temperature[i])
			}
		}
	}
}

func TestRestEquilibriumIdempotence(t *testing.T) {
	e := New(32, 32, restParams())
	defer e.Close()

	for n := 1; n <= 20; n++ {
		e.Step(1)
		for i := range e.rho {
			if math.Abs(float64(e.rho[i]-1)) >= 1e-5 {
				t.Fatalf("step %d cell %d: expected |rho-1|<1e-5, got rho=%f", n, i, e.rho[i])
			}
			if math.Abs(float64(e.ux[i]))+math.Abs(float64(e.uy[i])) >= 1e-6 {
				t.Fatalf("step %d cell %d: expected negligible velocity, got (%f,%f)", n, i, e.ux[i], e.uy[i])
			}
		}
	}
}

func TestVelocityCap(t *testing.T) {
	p := restParams()
	p.MaxVelocity = 0.3
	e := New(24, 24, p)
	defer e.Close()

	e.AddForce(12, 12, 5.0, 5.0)
	for n := 0; n < 10; n++ {
		e.Step(1)
		ux, uy := e.ViewVelocityX(), e.ViewVelocityY()
		for i := range ux {
			speed := math.Sqrt(float64(ux[i]*ux[i] + uy[i]*uy[i]))
			if speed > float64(p.MaxVelocity)+1e-4 {
				t.Fatalf("step %d cell %d: speed %f exceeds maxVelocity %f", n, i, speed, p.MaxVelocity)
			}
		}
	}
}

func TestMassConservationPeriodic(t *testing.T) {
	p := restParams()
	p.Decay = 0
	e := New(32, 32, p)
	defer e.Close()

	e.AddForce(16, 16, 0.2, 0.1)

	sumBefore := totalRho(e)
	e.Step(100)
	sumAfter := totalRho(e)

	limit := 1e-4 * float64(e.w*e.h)
	if math.Abs(sumAfter-sumBefore) >= limit {
		t.Fatalf("expected |sum(rho) change| < %e over 100 periodic steps, got %e (before=%f after=%f)",
			limit, sumAfter-sumBefore, sumBefore, sumAfter)
	}
}

func totalRho(e *Engine) float64 {
	var sum float64
	for _, r := range e.rho {
		sum += float64(r)
	}
	return sum
}
