package engine

import (
	"math"

	"gonum.org/v1/gonum/blas/blas32"
)

// advectDye and advectTemperature run semi-Lagrangian advection on the two
// passive scalar fields (spec.md §4.4, §2 steps 4-5). They are independent
// passes: dye never reads temperature and vice versa. Each keeps its own
// distinct scratch buffer and swaps it in after the full pass, per
// spec.md §4.4.
func (e *Engine) advectDye() {
	p := &e.params
	if p.BFECC {
		e.bfeccAdvect(e.dye, e.dyeNew, p.Decay, true)
	} else {
		e.semiLagrangian(e.dye, e.dyeNew, p.Dt, p.Decay, true)
	}
	e.dye, e.dyeNew = e.dyeNew, e.dye
}

func (e *Engine) advectTemperature() {
	p := &e.params
	if p.BFECC {
		e.bfeccAdvect(e.temperature, e.temperatureNew, p.ThermalDiffusivity, false)
	} else {
		e.semiLagrangian(e.temperature, e.temperatureNew, p.Dt, p.ThermalDiffusivity, false)
	}
	e.temperature, e.temperatureNew = e.temperatureNew, e.temperature
}

// semiLagrangian back-traces dst[i] = decay-scaled bilinear sample of src
// at (x - ux*dt, y - uy*dt), for every non-barrier cell (spec.md §4.4).
// Barrier cells are forced to 0, and a barrier neighbor contributes 0 to
// the bilinear blend.
func (e *Engine) semiLagrangian(src, dst []float32, dt, decayRate float32, clampNonNegative bool) {
	w, h := e.w, e.h
	e.pool.parallelFor(0, h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				i := e.idx(x, y)
				if e.barriers[i] != 0 {
					dst[i] = 0
					continue
				}
				v := e.sampleBacktrace(src, float32(x), float32(y), e.ux[i], e.uy[i], dt)
				v *= 1 - decayRate
				if clampNonNegative && v < 0 {
					v = 0
				}
				dst[i] = v
			}
		}
	})
}

// sampleBacktrace bilinearly samples src at (x-ux*dt, y-uy*dt), clamped
// into the valid interpolation range and treating barrier neighbors as 0.
func (e *Engine) sampleBacktrace(src []float32, x, y, ux, uy, dt float32) float32 {
	w, h := e.w, e.h
	xp := x - ux*dt
	yp := y - uy*dt

	xp = clampf(xp, 0.5, float32(w)-1.5)
	yp = clampf(yp, 0.5, float32(h)-1.5)

	ix := int(math.Floor(float64(xp)))
	iy := int(math.Floor(float64(yp)))
	fx := xp - float32(ix)
	fy := yp - float32(iy)

	s00 := e.sampleOrZero(src, ix, iy, w, h)
	s10 := e.sampleOrZero(src, ix+1, iy, w, h)
	s01 := e.sampleOrZero(src, ix, iy+1, w, h)
	s11 := e.sampleOrZero(src, ix+1, iy+1, w, h)

	top := s00 + (s10-s00)*fx
	bot := s01 + (s11-s01)*fx
	return top + (bot-top)*fy
}

func (e *Engine) sampleOrZero(src []float32, x, y, w, h int) float32 {
	if x < 0 || x >= w || y < 0 || y >= h {
		return 0
	}
	i := e.idx(x, y)
	if e.barriers[i] != 0 {
		return 0
	}
	return src[i]
}

// bfeccAdvect implements the Back and Forth Error Compensation and
// Correction scheme (spec.md §4.4 "BFECC option"): forward-advect with
// +dt, back-advect the result with -dt, form the corrected field
// 1.5*s - 0.5*s2, then forward-advect the corrected field with +dt and the
// field's decay. The 1.5/-0.5 combine is exactly the linear-combination
// pattern the teacher's simd_bench_test.go vectorizes with blas32.
func (e *Engine) bfeccAdvect(src, dst []float32, decayRate float32, clampNonNegative bool) {
	dt := e.params.Dt

	e.semiLagrangian(src, e.tmpBFECC1, dt, 0, false)   // s -> s1 (forward)
	e.semiLagrangianFixedVel(e.tmpBFECC1, e.tmpBFECC2, -dt, false) // s1 -> s2 (backward)

	corr := e.tmpBFECC2 // reuse as the corrected field buffer
	vSrc := blas32.Vector{N: len(src), Inc: 1, Data: src} // Axpy only reads x, so src needs no copy
	vS2 := blas32.Vector{N: len(e.tmpBFECC2), Inc: 1, Data: corr}
	blas32.Scal(-0.5, vS2)
	blas32.Axpy(1.5, vSrc, vS2)
	if clampNonNegative {
		for i, v := range corr {
			if v < 0 {
				corr[i] = 0
			}
		}
	}

	e.semiLagrangian(corr, dst, dt, decayRate, clampNonNegative) // s_corr -> s_new (forward, with decay)
}

// semiLagrangianFixedVel is semiLagrangian's back-advection pass, with no
// decay. It uses the current velocity field unchanged; bfeccAdvect calls it
// with -dt (the velocity is not negated), matching spec.md §4.4's
// "back-advect s1 -> s2 with -dt".
func (e *Engine) semiLagrangianFixedVel(src, dst []float32, dt float32, clampNonNegative bool) {
	e.semiLagrangian(src, dst, dt, 0, clampNonNegative)
}
