package engine

import (
	"math"

	"github.com/pthm-cable/lbmsim/lattice"
)

// collideAndStream performs spec.md §4.2 for every non-barrier cell:
// macroscopic reduction, body forces with drag/sponge damping, the
// closure-adjusted relaxation rate, BGK collision, and scatter-push
// streaming with full boundary dispatch. Barrier cells are pinned. Rows
// are processed independently and in parallel; the f/f_new swap happens
// once, after every row has finished, in Step.
func (e *Engine) collideAndStream() {
	p := &e.params
	e.pool.parallelFor(0, e.h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			e.collideRow(y, p)
		}
	})
}

func (e *Engine) collideRow(y int, p *Params) {
	w := e.w
	closuresActive := p.TempViscK != 0 || p.PowerLawK != 0 || p.SmagorinskyC != 0
	needStrainRate := p.PowerLawK != 0 || p.SmagorinskyC != 0

	var f, feq [lattice.Q]float32

	for x := 0; x < w; x++ {
		i := e.idx(x, y)

		if e.barriers[i] != 0 {
			e.rho[i] = 1
			e.ux[i] = 0
			e.uy[i] = 0
			for k := 0; k < lattice.Q; k++ {
				e.fNew[k][i] = lattice.Weights[k]
			}
			continue
		}

		for k := 0; k < lattice.Q; k++ {
			f[k] = e.f[k][i]
		}

		rho := f[0] + f[1] + f[2] + f[3] + f[4] + f[5] + f[6] + f[7] + f[8]
		var ux, uy float32
		if rho > 0 {
			ux = ((f[1] - f[3]) + (f[5] - f[7]) + (f[8] - f[6])) / rho
			uy = ((f[2] - f[4]) + (f[5] - f[7]) + (f[6] - f[8])) / rho
		}

		ux += (p.GravityX + e.forceX[i]) * p.Dt
		uy += (p.GravityY + e.forceY[i]) * p.Dt
		if p.ThermalExpansion != 0 {
			uy += p.GravityY * p.ThermalExpansion * (e.temperature[i] - p.ThermalRef) * p.Dt
		}

		dragFactor := 1 - (p.GlobalDrag + p.PorosityDrag*(1-e.porosity[i]))
		if dragFactor < 0 {
			dragFactor = 0
		}
		ux *= dragFactor
		uy *= dragFactor

		if sf := e.spongeFactor(x, y); sf != 1 {
			ux *= sf
			uy *= sf
		}

		ux, uy = clampVelocity(ux, uy, p.MaxVelocity)

		equilibrium(rho, ux, uy, &feq)

		omegaEff := p.Omega
		if closuresActive {
			nu := (1/p.Omega - 0.5) / 3
			if p.TempViscK != 0 {
				nu = nu / (1 + p.TempViscK*e.temperature[i])
			}
			var absS float32
			if needStrainRate {
				var qxx, qxy, qyy float32
				for k := 0; k < lattice.Q; k++ {
					neq := f[k] - feq[k]
					qxx += lattice.Cxf[k] * lattice.Cxf[k] * neq
					qxy += lattice.Cxf[k] * lattice.Cyf[k] * neq
					qyy += lattice.Cyf[k] * lattice.Cyf[k] * neq
				}
				absS = float32(math.Sqrt(float64(qxx*qxx+2*qxy*qxy+qyy*qyy))) * 1.5 * p.Omega
			}
			if p.PowerLawK != 0 {
				nu *= 1 + p.PowerLawK*float32(math.Pow(float64(absS), float64(p.PowerLawN-1)))
			}
			if p.SmagorinskyC != 0 {
				nu += p.SmagorinskyC * p.SmagorinskyC * absS
			}
			omegaEff = 1 / (3*nu + 0.5)
			omegaEff = clampf(omegaEff, 0.05, 1.95)
		}

		var fpost [lattice.Q]float32
		for k := 0; k < lattice.Q; k++ {
			fpost[k] = f[k]*(1-omegaEff) + feq[k]*omegaEff
		}

		e.streamCell(x, y, i, fpost[:])

		e.rho[i] = rho
		e.ux[i] = ux
		e.uy[i] = uy
	}
}

// streamCell dispatches the nine post-collision populations of cell (x,y)
// to their streaming destinations (spec.md §4.2 step 5).
func (e *Engine) streamCell(x, y, i int, fpost []float32) {
	p := &e.params
	w, h := e.w, e.h

	for k := 0; k < lattice.Q; k++ {
		tx := x + int(lattice.Cx[k])
		ty := y + int(lattice.Cy[k])

		if tx >= 0 && tx < w && ty >= 0 && ty < h {
			ti := e.idx(tx, ty)
			if e.barriers[ti] == 0 {
				e.fNew[k][ti] = fpost[k]
			} else {
				e.fNew[lattice.Opp[k]][i] = fpost[k]
			}
			continue
		}

		horiz, vert, hasHoriz, hasVert := edgesCrossed(tx, ty, w, h)

		wrapX, wrapY := tx, ty
		wrapHoriz, wrapVert := false, false
		if hasHoriz && p.Edges[horiz] == Periodic {
			wrapX = ((tx % w) + w) % w
			wrapHoriz = true
		}
		if hasVert && p.Edges[vert] == Periodic {
			wrapY = ((ty % h) + h) % h
			wrapVert = true
		}

		if (!hasHoriz || wrapHoriz) && (!hasVert || wrapVert) {
			ti := e.idx(wrapX, wrapY)
			if e.barriers[ti] == 0 {
				e.fNew[k][ti] = fpost[k]
			} else {
				e.fNew[lattice.Opp[k]][i] = fpost[k]
			}
			continue
		}

		switch {
		case hasHoriz && !wrapHoriz && hasVert && !wrapVert:
			destK := cornerDest(k)
			val := fpost[k]
			if p.Edges[horiz] == MovingWall {
				val += movingWallExtra(k, e.rho[i], p.WallVel[horiz])
			}
			if p.Edges[vert] == MovingWall {
				val += movingWallExtra(k, e.rho[i], p.WallVel[vert])
			}
			e.fNew[destK][i] = val

		case hasHoriz && !wrapHoriz:
			destK := singleEdgeDest(horiz, p.Edges[horiz], k)
			val := fpost[k]
			if p.Edges[horiz] == MovingWall {
				val += movingWallExtra(k, e.rho[i], p.WallVel[horiz])
			}
			e.fNew[destK][i] = val

		case hasVert && !wrapVert:
			destK := singleEdgeDest(vert, p.Edges[vert], k)
			val := fpost[k]
			if p.Edges[vert] == MovingWall {
				val += movingWallExtra(k, e.rho[i], p.WallVel[vert])
			}
			e.fNew[destK][i] = val
		}
	}
}

// spongeFactor returns the velocity damping multiplier for (x,y) from the
// nearest active sponge edge (spec.md §4.7). 1 means no damping.
func (e *Engine) spongeFactor(x, y int) float32 {
	s := &e.params.Sponge
	if s.Width <= 0 || s.Strength == 0 {
		return 1
	}
	minD := float32(-1)
	if s.Enabled[Left] {
		d := float32(x)
		if d < s.Width && (minD < 0 || d < minD) {
			minD = d
		}
	}
	if s.Enabled[Right] {
		d := float32(e.w - 1 - x)
		if d < s.Width && (minD < 0 || d < minD) {
			minD = d
		}
	}
	if s.Enabled[Top] {
		d := float32(y)
		if d < s.Width && (minD < 0 || d < minD) {
			minD = d
		}
	}
	if s.Enabled[Bottom] {
		d := float32(e.h - 1 - y)
		if d < s.Width && (minD < 0 || d < minD) {
			minD = d
		}
	}
	if minD < 0 {
		return 1
	}
	r := 1 - minD/s.Width
	factor := 1 - s.Strength*r*r
	return clampf(factor, 0, 1)
}

// swapF swaps the f and f_new direction buffers, direction by direction
// (spec.md §4.2 "After all cells, swap f <-> f_new").
func (e *Engine) swapF() {
	for k := 0; k < lattice.Q; k++ {
		e.f[k], e.fNew[k] = e.fNew[k], e.f[k]
	}
}
