package engine

import (
	"math"
	"testing"
)

// TestDyeAdvectionChannel is spec scenario 3: a channel flow advects an
// injected dye patch downstream while barrier cells stay dye-free.
func TestDyeAdvectionChannel(t *testing.T) {
	p := DefaultParams()
	p.ApplyToEdgesAll(NoSlip)
	p.Edges[Left] = EquilInflow
	p.Edges[Right] = NeumannOutflow
	p.Decay = 0.0
	p.Threads = 1
	w, h := 64, 16
	e := New(w, h, p)
	defer e.Close()

	e.SetInflow(Left, 1.0, 0.1, 0)
	e.AddDensity(5, 8, 1.0)

	initialCOM := dyeCenterOfMassX(e)

	for n := 0; n < 50; n++ {
		e.Step(1)
	}

	finalCOM := dyeCenterOfMassX(e)
	moved := finalCOM - initialCOM

	if moved <= 0 {
		t.Fatalf("expected dye center of mass to move downstream, moved=%f", moved)
	}
	// The flow needs time to establish before dye that hasn't decayed yet
	// meaningfully advects; allow a generous band around the spec's ~4.5
	// cell estimate rather than pinning to it exactly.
	if moved < 0.5 || moved > 20 {
		t.Errorf("expected downstream dye displacement in a plausible range, got %f cells", moved)
	}

	dye := e.ViewDye()
	for i, b := range e.barriers {
		if b != 0 && dye[i] != 0 {
			t.Errorf("cell %d: expected dye=0 on barrier cell, got %f", i, dye[i])
		}
	}
}

func dyeCenterOfMassX(e *Engine) float64 {
	dye := e.ViewDye()
	var weighted, total float64
	for y := 0; y < e.h; y++ {
		for x := 0; x < e.w; x++ {
			v := float64(dye[e.idx(x, y)])
			weighted += v * float64(x)
			total += v
		}
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

func TestAdvectionBarrierSamplesAsZero(t *testing.T) {
	e := New(16, 16, restParams())
	defer e.Close()

	e.AddObstacle(8, 8, 2, 0, 1, ShapeEllipse, false)
	e.AddDensity(6, 8, 1.0)
	e.AddForce(6, 8, 0.1, 0)

	for n := 0; n < 5; n++ {
		e.Step(1)
	}

	dye := e.ViewDye()
	for i, b := range e.barriers {
		if b != 0 && dye[i] != 0 {
			t.Errorf("cell %d: barrier should never accumulate dye, got %f", i, dye[i])
		}
	}
}

func TestBFECCMatchesPlainOnZeroVelocity(t *testing.T) {
	p := restParams()
	p.BFECC = false
	e1 := New(16, 16, p)
	defer e1.Close()

	p2 := restParams()
	p2.BFECC = true
	e2 := New(16, 16, p2)
	defer e2.Close()

	e1.AddDensity(8, 8, 1.0)
	e2.AddDensity(8, 8, 1.0)

	e1.Step(3)
	e2.Step(3)

	d1, d2 := e1.ViewDye(), e2.ViewDye()
	for i := range d1 {
		if math.Abs(float64(d1[i]-d2[i])) > 1e-3 {
			t.Errorf("cell %d: BFECC and plain semi-Lagrangian diverged with zero velocity: %f vs %f", i, d1[i], d2[i])
		}
	}
}
