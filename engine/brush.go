package engine

import (
	"math"

	"github.com/pthm-cable/lbmsim/lattice"
)

// Shape selects the brush's distance metric (spec.md §4.6).
type Shape int

const (
	ShapeEllipse Shape = iota
	ShapeSquare
	ShapeDiamond
)

// FalloffMode selects how brush weight decays with distance (spec.md §4.6).
type FalloffMode int

const (
	FalloffSmoothstep FalloffMode = iota
	FalloffGaussian
)

// DimMode selects the dimensional brush's velocity pattern (spec.md §4.6).
type DimMode int

const (
	DimVortex DimMode = iota
	DimDivergence
	DimNoise
	DimDrag
)

func smoothstep(t float32) float32 {
	t = clampf(t, 0, 1)
	return t * t * (3 - 2*t)
}

// brushSample is one masked cell inside a brush's affine-transformed
// region: its grid index, its raw (unrotated) offset from the brush
// center, and its falloff weight.
type brushSample struct {
	i      int
	dx, dy float32
	weight float32
}

// forEachBrushCell iterates every in-bounds, non-barrier cell within the
// affine-transformed region around (cx,cy) (spec.md §4.6): rotate by
// angle, squash the rotated y by aspectRatio, measure distance by shape,
// skip if beyond radius, and compute a falloff weight. radius<=0 and
// aspect<=0 are clamped to >=0.01 (spec.md §7).
func (e *Engine) forEachBrushCell(cx, cy, radius, angle, aspect float32, shape Shape, falloff FalloffMode, falloffParam float32, fn func(brushSample)) {
	if radius <= 0 {
		radius = 0.01
	}
	if aspect <= 0 {
		aspect = 0.01
	}

	extent := radius * aspect
	if radius > extent {
		extent = radius
	}
	half := int(math.Ceil(float64(extent))) + 1

	x0, x1 := int(cx)-half, int(cx)+half
	y0, y1 := int(cy)-half, int(cy)+half
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 >= e.w {
		x1 = e.w - 1
	}
	if y1 >= e.h {
		y1 = e.h - 1
	}

	ca := float32(math.Cos(float64(angle)))
	sa := float32(math.Sin(float64(angle)))

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := e.idx(x, y)
			if e.barriers[i] != 0 {
				continue
			}
			dx := float32(x) - cx
			dy := float32(y) - cy
			rx := dx*ca + dy*sa
			ry := (-dx*sa + dy*ca) / aspect

			var dist float32
			switch shape {
			case ShapeSquare:
				dist = maxf(absf(rx), absf(ry))
			case ShapeDiamond:
				dist = (absf(rx) + absf(ry)) * 0.70710678
			default:
				dist = float32(math.Sqrt(float64(rx*rx + ry*ry)))
			}
			if dist > radius {
				continue
			}
			d := dist / radius

			var weight float32
			switch falloff {
			case FalloffGaussian:
				weight = float32(math.Exp(float64(-d * d * falloffParam)))
			default:
				p := falloffParam
				weight = (1 - p) + p*smoothstep(1-d)
			}

			fn(brushSample{i: i, dx: dx, dy: dy, weight: weight})
		}
	}
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// cellAt floors (x,y) to a grid index, reporting false if out of range or
// on a barrier — the shared guard every point-injection method in spec.md
// §6/§7 needs ("Out-of-range brush/force/density coordinates: silently
// no-op", "Barrier cells: all injection methods early-return").
func (e *Engine) cellAt(x, y float32) (int, bool) {
	xi, yi := int(math.Floor(float64(x))), int(math.Floor(float64(y)))
	if !e.inBounds(xi, yi) {
		return 0, false
	}
	i := e.idx(xi, yi)
	if e.barriers[i] != 0 {
		return 0, false
	}
	return i, true
}

// AddForce is the single-point force injection of spec.md §6
// (addForce(x,y,fx,fy)): it nudges the velocity at one cell, clamps, and
// resets that cell's distribution to equilibrium at the new velocity. For
// a shaped, falloff-weighted region use ApplyGenericBrush.
func (e *Engine) AddForce(x, y, fx, fy float32) {
	i, ok := e.cellAt(x, y)
	if !ok {
		return
	}
	dt := e.params.Dt
	nux, nuy := clampVelocity(e.ux[i]+fx*dt, e.uy[i]+fy*dt, e.params.MaxVelocity)
	e.ux[i] = nux
	e.uy[i] = nuy
	var feq [lattice.Q]float32
	equilibrium(e.rho[i], nux, nuy, &feq)
	for k := 0; k < lattice.Q; k++ {
		e.f[k][i] = feq[k]
	}
	e.bumpVersion()
}

// AddDensity is the single-point dye injection of spec.md §6
// (addDensity(x,y,amount)).
func (e *Engine) AddDensity(x, y, amount float32) {
	i, ok := e.cellAt(x, y)
	if !ok {
		return
	}
	e.dye[i] += amount
	if e.dye[i] < 0 {
		e.dye[i] = 0
	}
	e.bumpVersion()
}

// AddTemperature is the single-point temperature injection of spec.md §6
// (addTemperature(x,y,amount)).
func (e *Engine) AddTemperature(x, y, amount float32) {
	i, ok := e.cellAt(x, y)
	if !ok {
		return
	}
	e.temperature[i] += amount
	e.bumpVersion()
}

// ClearRegion zeroes dye and temperature within a hard-edged round region
// of the given radius, leaving velocity and barriers untouched (spec.md
// §6 clearRegion(x,y,r)).
func (e *Engine) ClearRegion(x, y, radius float32) {
	e.forEachBrushCell(x, y, radius, 0, 1, ShapeEllipse, FalloffSmoothstep, 1, func(s brushSample) {
		e.dye[s.i] = 0
		e.temperature[s.i] = 0
	})
	e.bumpVersion()
}

// AddObstacle sets or clears the barrier flag within a shaped brush
// region (spec.md §4.6 "Obstacle brush"). Setting a barrier resets that
// cell to rest equilibrium and latches barriersDirty.
func (e *Engine) AddObstacle(x, y, radius, angle, aspect float32, shape Shape, remove bool) {
	changed := false
	e.forEachBrushCellIncludingBarriers(x, y, radius, angle, aspect, shape, func(i int) {
		if remove {
			if e.barriers[i] != 0 {
				e.barriers[i] = 0
				e.rho[i] = 1
				e.ux[i] = 0
				e.uy[i] = 0
				for k := 0; k < lattice.Q; k++ {
					e.f[k][i] = lattice.Weights[k]
				}
				changed = true
			}
			return
		}
		if e.barriers[i] == 0 {
			e.barriers[i] = 1
			e.rho[i] = 1
			e.ux[i] = 0
			e.uy[i] = 0
			e.dye[i] = 0
			e.temperature[i] = 0
			for k := 0; k < lattice.Q; k++ {
				e.f[k][i] = lattice.Weights[k]
			}
			changed = true
		}
	})
	if changed {
		e.barrierDirty.Store(true)
	}
	e.bumpVersion()
}

// forEachBrushCellIncludingBarriers is forEachBrushCell's shape mask
// without the "skip barrier cells" rule, needed by AddObstacle which must
// be able to both set AND clear barrier cells.
func (e *Engine) forEachBrushCellIncludingBarriers(cx, cy, radius, angle, aspect float32, shape Shape, fn func(i int)) {
	if radius <= 0 {
		radius = 0.01
	}
	if aspect <= 0 {
		aspect = 0.01
	}
	extent := radius * aspect
	if radius > extent {
		extent = radius
	}
	half := int(math.Ceil(float64(extent))) + 1

	x0, x1 := int(cx)-half, int(cx)+half
	y0, y1 := int(cy)-half, int(cy)+half
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 >= e.w {
		x1 = e.w - 1
	}
	if y1 >= e.h {
		y1 = e.h - 1
	}

	ca := float32(math.Cos(float64(angle)))
	sa := float32(math.Sin(float64(angle)))

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float32(x) - cx
			dy := float32(y) - cy
			rx := dx*ca + dy*sa
			ry := (-dx*sa + dy*ca) / aspect

			var dist float32
			switch shape {
			case ShapeSquare:
				dist = maxf(absf(rx), absf(ry))
			case ShapeDiamond:
				dist = (absf(rx) + absf(ry)) * 0.70710678
			default:
				dist = float32(math.Sqrt(float64(rx*rx + ry*ry)))
			}
			if dist > radius {
				continue
			}
			fn(e.idx(x, y))
		}
	}
}

// ApplyDimensionalBrush implements the vortex/divergence/noise/drag
// velocity patterns of spec.md §4.6. Each touched cell's distribution is
// reset to equilibrium at its new velocity, so the change survives the
// next Step.
func (e *Engine) ApplyDimensionalBrush(x, y, radius, angle, aspect float32, shape Shape, mode DimMode, strength float32, falloff FalloffMode, falloffParam float32) {
	dt := e.params.Dt
	maxV := e.params.MaxVelocity
	e.forEachBrushCell(x, y, radius, angle, aspect, shape, falloff, falloffParam, func(s brushSample) {
		i := s.i
		switch mode {
		case DimVortex:
			e.ux[i] += -s.dy * strength * s.weight * dt
			e.uy[i] += s.dx * strength * s.weight * dt
		case DimDivergence:
			e.ux[i] += s.dx * strength * s.weight * dt
			e.uy[i] += s.dy * strength * s.weight * dt
		case DimNoise:
			e.ux[i] += (e.rng.Float32()*2 - 1) * strength * s.weight * dt
			e.uy[i] += (e.rng.Float32()*2 - 1) * strength * s.weight * dt
		case DimDrag:
			factor := 1 - strength*s.weight*dt
			if factor < 0 {
				factor = 0
			}
			e.ux[i] *= factor
			e.uy[i] *= factor
		}
		e.ux[i], e.uy[i] = clampVelocity(e.ux[i], e.uy[i], maxV)
		var feq [lattice.Q]float32
		equilibrium(e.rho[i], e.ux[i], e.uy[i], &feq)
		for k := 0; k < lattice.Q; k++ {
			e.f[k][i] = feq[k]
		}
	})
	e.bumpVersion()
}

// ApplyGenericBrush is the host-facing entry point for the generic force
// brush (spec.md §6 applyGenericBrush), including optional dye/temperature
// injection in the same pass.
func (e *Engine) ApplyGenericBrush(x, y, fx, fy float32, radius, angle, aspect float32, shape Shape, falloff FalloffMode, falloffParam float32, dyeAmount, tempAmount float32) {
	dt := e.params.Dt
	maxV := e.params.MaxVelocity
	applied := false
	e.forEachBrushCell(x, y, radius, angle, aspect, shape, falloff, falloffParam, func(s brushSample) {
		i := s.i
		if fx != 0 || fy != 0 {
			nux := e.ux[i] + fx*s.weight*dt
			nuy := e.uy[i] + fy*s.weight*dt
			nux, nuy = clampVelocity(nux, nuy, maxV)
			e.ux[i] = nux
			e.uy[i] = nuy
			applied = true
		}
		if dyeAmount != 0 {
			e.dye[i] += dyeAmount * s.weight
			if e.dye[i] < 0 {
				e.dye[i] = 0
			}
		}
		if tempAmount != 0 {
			e.temperature[i] += tempAmount * s.weight
		}
		if applied {
			var feq [lattice.Q]float32
			equilibrium(e.rho[i], e.ux[i], e.uy[i], &feq)
			for k := 0; k < lattice.Q; k++ {
				e.f[k][i] = feq[k]
			}
		}
	})
	e.bumpVersion()
}

// ApplyPorosityBrush raises (strength>0) or lowers (strength<0) porosity
// within a shaped region, clamped to [0,1] (spec.md §4.6 "Porosity
// brush").
func (e *Engine) ApplyPorosityBrush(x, y, radius, angle, aspect float32, shape Shape, falloff FalloffMode, falloffParam float32, strength float32) {
	e.forEachBrushCell(x, y, radius, angle, aspect, shape, falloff, falloffParam, func(s brushSample) {
		e.porosity[s.i] = clampf(e.porosity[s.i]+strength*s.weight, 0, 1)
	})
	e.bumpVersion()
}

// CheckBarrierDirty reads and clears the latched barrier-dirty flag
// (spec.md §6 checkBarrierDirty).
func (e *Engine) CheckBarrierDirty() bool {
	return e.barrierDirty.Swap(false)
}

// DataVersion returns the monotonic mutation counter (spec.md §6
// getDataVersion).
func (e *Engine) DataVersion() uint64 {
	return e.dataVersion.Load()
}
