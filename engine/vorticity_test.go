package engine

import (
	"math"
	"testing"
)

func TestVorticityDisabledZeroesForce(t *testing.T) {
	p := restParams()
	p.VorticityConfinement = 0
	e := New(16, 16, p)
	defer e.Close()

	e.forceX[e.idx(4, 4)] = 1
	e.forceY[e.idx(4, 4)] = 1

	e.updateVorticityForces()

	for i := range e.forceX {
		if e.forceX[i] != 0 || e.forceY[i] != 0 {
			t.Fatalf("cell %d: expected confinement disabled to zero force, got (%f,%f)", i, e.forceX[i], e.forceY[i])
		}
	}
}

// TestVortexBrushRotation is spec scenario 5: a vortex brush should leave
// behind a velocity field whose circulation around it is positive.
func TestVortexBrushRotation(t *testing.T) {
	p := restParams()
	e := New(64, 64, p)
	defer e.Close()

	e.ApplyDimensionalBrush(32, 32, 8, 0, 1, ShapeEllipse, DimVortex, 0.02, FalloffGaussian, 0.5)
	e.Step(1)

	circulation := lineIntegralAroundCircle(e, 32, 32, 6, 64)
	if circulation <= 0.1 {
		t.Errorf("expected positive circulation (>0.1) around the vortex brush, got %f", circulation)
	}
}

// lineIntegralAroundCircle approximates the closed line integral of u.dl
// around a circle of the given radius centered at (cx,cy), using nearest-
// cell velocity samples at n evenly spaced points.
func lineIntegralAroundCircle(e *Engine, cx, cy, radius float32, n int) float64 {
	var total float64
	dtheta := 2 * math.Pi / float64(n)
	arcLen := float64(radius) * dtheta
	for i := 0; i < n; i++ {
		theta := float64(i) * dtheta
		px := cx + radius*float32(math.Cos(theta))
		py := cy + radius*float32(math.Sin(theta))
		xi, yi := int(px+0.5), int(py+0.5)
		if !e.inBounds(xi, yi) {
			continue
		}
		idx := e.idx(xi, yi)
		ux, uy := float64(e.ux[idx]), float64(e.uy[idx])
		tx := -math.Sin(theta)
		ty := math.Cos(theta)
		total += (ux*tx + uy*ty) * arcLen
	}
	return total
}
