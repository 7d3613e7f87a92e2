package engine

import "math"

// updateVorticityForces recomputes the discrete curl and the vorticity
// confinement body force for the *next* step (spec.md §4.5, §2 step 6).
// When confinement is disabled, forceX/forceY are zeroed so the next
// step's body-force stage adds nothing.
func (e *Engine) updateVorticityForces() {
	eps := e.params.VorticityConfinement
	if eps <= 0 {
		for i := range e.forceX {
			e.forceX[i] = 0
			e.forceY[i] = 0
		}
		return
	}

	w, h := e.w, e.h

	e.pool.parallelFor(1, h-1, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 1; x < w-1; x++ {
				i := e.idx(x, y)
				if e.barriers[i] != 0 {
					e.curl[i] = 0
					continue
				}
				e.curl[i] = e.uy[e.idx(x+1, y)] - e.uy[e.idx(x-1, y)] -
					(e.ux[e.idx(x, y+1)] - e.ux[e.idx(x, y-1)])
			}
		}
	})
	for x := 0; x < w; x++ {
		e.curl[e.idx(x, 0)] = 0
		e.curl[e.idx(x, h-1)] = 0
	}
	for y := 0; y < h; y++ {
		e.curl[e.idx(0, y)] = 0
		e.curl[e.idx(w-1, y)] = 0
	}

	e.pool.parallelFor(1, h-1, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 1; x < w-1; x++ {
				i := e.idx(x, y)
				if e.barriers[i] != 0 {
					e.forceX[i] = 0
					e.forceY[i] = 0
					continue
				}
				gx := (absf(e.curl[e.idx(x+1, y)]) - absf(e.curl[e.idx(x-1, y)])) * 0.5
				gy := (absf(e.curl[e.idx(x, y+1)]) - absf(e.curl[e.idx(x, y-1)])) * 0.5
				mag := float32(math.Sqrt(float64(gx*gx + gy*gy)))
				if mag < 1e-6 {
					e.forceX[i] = 0
					e.forceY[i] = 0
					continue
				}
				nx := gx / mag
				ny := gy / mag
				e.forceX[i] = eps * ny * e.curl[i]
				e.forceY[i] = -eps * nx * e.curl[i]
			}
		}
	})

	for x := 0; x < w; x++ {
		e.forceX[e.idx(x, 0)] = 0
		e.forceY[e.idx(x, 0)] = 0
		e.forceX[e.idx(x, h-1)] = 0
		e.forceY[e.idx(x, h-1)] = 0
	}
	for y := 0; y < h; y++ {
		e.forceX[e.idx(0, y)] = 0
		e.forceY[e.idx(0, y)] = 0
		e.forceX[e.idx(w-1, y)] = 0
		e.forceY[e.idx(w-1, y)] = 0
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
