package engine

import "github.com/pthm-cable/lbmsim/lattice"

// LegacyPreset is the single-enum boundary convenience spec.md §4.3
// requires as a compatibility factory over the four per-edge selectors.
type LegacyPreset int

const (
	PresetPeriodic LegacyPreset = iota
	PresetNoSlipBox
	PresetChannels // periodic left/right, no-slip top/bottom
	PresetSlipBox
	PresetSlipChannel
)

// ApplyLegacyPreset configures all four edges from one of the five legacy
// presets. PresetChannels is a horizontal channel only; there is no
// vertical-channel preset (no-slip left/right, periodic top/bottom).
// The per-edge model is the implementation's source of truth
// (spec.md §9 Open Questions); this is purely a convenience factory, not a
// second code path — it only ever writes into e.params.Edges.
func (e *Engine) ApplyLegacyPreset(p LegacyPreset) {
	switch p {
	case PresetPeriodic:
		e.SetBoundary(Left, Periodic)
		e.SetBoundary(Right, Periodic)
		e.SetBoundary(Top, Periodic)
		e.SetBoundary(Bottom, Periodic)
	case PresetNoSlipBox:
		e.SetBoundary(Left, NoSlip)
		e.SetBoundary(Right, NoSlip)
		e.SetBoundary(Top, NoSlip)
		e.SetBoundary(Bottom, NoSlip)
	case PresetChannels:
		e.SetBoundary(Left, Periodic)
		e.SetBoundary(Right, Periodic)
		e.SetBoundary(Top, NoSlip)
		e.SetBoundary(Bottom, NoSlip)
	case PresetSlipBox:
		e.SetBoundary(Left, FreeSlip)
		e.SetBoundary(Right, FreeSlip)
		e.SetBoundary(Top, FreeSlip)
		e.SetBoundary(Bottom, FreeSlip)
	case PresetSlipChannel:
		e.SetBoundary(Left, Periodic)
		e.SetBoundary(Right, Periodic)
		e.SetBoundary(Top, FreeSlip)
		e.SetBoundary(Bottom, FreeSlip)
	}
	e.bumpVersion()
}

// SetBoundary sets the boundary policy of one edge.
func (e *Engine) SetBoundary(edge Edge, kind BoundaryKind) {
	e.params.Edges[edge] = kind
	e.bumpVersion()
}

// SetInflow configures the (rho, u, v) an EquilInflow edge rewrites to.
func (e *Engine) SetInflow(edge Edge, rho, u, v float32) {
	e.params.Inflow[edge] = InflowState{Rho: rho, U: u, V: v}
	e.bumpVersion()
}

// SetWallVelocity configures the velocity a MovingWall edge imparts.
func (e *Engine) SetWallVelocity(edge Edge, u, v float32) {
	e.params.WallVel[edge] = WallVelocity{U: u, V: v}
	e.bumpVersion()
}

// applyMacroBoundaries rewrites f at EquilInflow edges before collision
// (spec.md §4.3 code 4, §2 step 1).
func (e *Engine) applyMacroBoundaries() {
	for edge := Edge(0); edge < numEdges; edge++ {
		if e.params.Edges[edge] != EquilInflow {
			continue
		}
		in := e.params.Inflow[edge]
		e.forEachEdgeCell(edge, func(i int) {
			if e.barriers[i] != 0 {
				return
			}
			var feq [lattice.Q]float32
			equilibrium(in.Rho, in.U, in.V, &feq)
			for k := 0; k < lattice.Q; k++ {
				e.f[k][i] = feq[k]
			}
		})
	}
}

// applyNeumannOutflow copies the interior-adjacent cell's full population
// into each NeumannOutflow edge cell, after streaming (spec.md §4.3 code
// 5, §2 step 3).
func (e *Engine) applyNeumannOutflow() {
	for edge := Edge(0); edge < numEdges; edge++ {
		if e.params.Edges[edge] != NeumannOutflow {
			continue
		}
		e.forEachEdgeCellPaired(edge, func(dst, src int) {
			if e.barriers[dst] != 0 {
				return
			}
			for k := 0; k < lattice.Q; k++ {
				e.f[k][dst] = e.f[k][src]
			}
		})
	}
}

// forEachEdgeCell invokes fn(idx) for every cell on the given edge.
func (e *Engine) forEachEdgeCell(edge Edge, fn func(i int)) {
	switch edge {
	case Left:
		for y := 0; y < e.h; y++ {
			fn(e.idx(0, y))
		}
	case Right:
		for y := 0; y < e.h; y++ {
			fn(e.idx(e.w-1, y))
		}
	case Top:
		for x := 0; x < e.w; x++ {
			fn(e.idx(x, 0))
		}
	case Bottom:
		for x := 0; x < e.w; x++ {
			fn(e.idx(x, e.h-1))
		}
	}
}

// forEachEdgeCellPaired invokes fn(edgeIdx, interiorNeighborIdx) for every
// cell on the given edge, paired with its single interior-adjacent cell.
func (e *Engine) forEachEdgeCellPaired(edge Edge, fn func(dst, src int)) {
	switch edge {
	case Left:
		for y := 0; y < e.h; y++ {
			fn(e.idx(0, y), e.idx(min1(e.w-1, 1), y))
		}
	case Right:
		for y := 0; y < e.h; y++ {
			fn(e.idx(e.w-1, y), e.idx(maxi(e.w-2, 0), y))
		}
	case Top:
		for x := 0; x < e.w; x++ {
			fn(e.idx(x, 0), e.idx(x, min1(e.h-1, 1)))
		}
	case Bottom:
		for x := 0; x < e.w; x++ {
			fn(e.idx(x, e.h-1), e.idx(x, maxi(e.h-2, 0)))
		}
	}
}

func min1(max, v int) int {
	if v > max {
		return max
	}
	return v
}

func maxi(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}

// singleEdgeDest resolves the destination direction for a population
// exiting through exactly one non-periodic edge (spec.md §4.3 codes 1-3).
// EquilInflow/NeumannOutflow edges have no "during streaming" entry in the
// boundary table — spec.md §4.3 defines them only as a pre-collision
// rewrite and a post-stream copy respectively, so the population that
// would otherwise leave through them is left in place (destK = k) rather
// than reflected. This does not fill every f_new slot of the edge cell:
// the slots for populations that would enter from outside the grid are not
// written, and the kept slot is also written by the interior neighbor
// streaming toward the edge. The inflow rewrite and the outflow copy
// replace the edge cell's whole f before the next collision reads it
// (see DESIGN.md).
func singleEdgeDest(edge Edge, kind BoundaryKind, k int) int {
	switch kind {
	case NoSlip, MovingWall:
		return lattice.Opp[k]
	case FreeSlip:
		if edge == Left || edge == Right {
			return lattice.SlipV[k]
		}
		return lattice.SlipH[k]
	default: // EquilInflow, NeumannOutflow
		return k
	}
}

// movingWallExtra computes the momentum correction added to f_post[k]
// before it is stored at dest_k (spec.md §4.2 step 5): 6*w[k]*rho*(cx[k]*uw
// + cy[k]*vw), using the outgoing direction's own weight and components.
func movingWallExtra(k int, rho float32, wall WallVelocity) float32 {
	return 6 * lattice.Weights[k] * rho * (lattice.Cxf[k]*wall.U + lattice.Cyf[k]*wall.V)
}

// cornerDest resolves the destination direction for a population exiting
// through two non-periodic edges simultaneously. Composing two free-slip
// reflections (flip cx, then flip cy) is algebraically identical to one
// full reversal, so every non-periodic corner combination collapses to
// the same rule: full bounce-back, with the moving-wall momentum term
// added once per edge that is actually a moving wall (spec.md §4.3 "Free
// slip ... corners combining two slip edges fall back to full
// bounce-back").
func cornerDest(k int) int {
	return lattice.Opp[k]
}

// edgesCrossed reports which of the four edges the given out-of-bounds
// target coordinate crosses, relative to a grid of width w and height h.
// A corner crossing returns both edges; callers use this to detect the
// free-slip corner fallback to full bounce-back (spec.md §4.3 code 2).
func edgesCrossed(tx, ty, w, h int) (horiz, vert Edge, hasHoriz, hasVert bool) {
	if tx < 0 {
		horiz, hasHoriz = Left, true
	} else if tx >= w {
		horiz, hasHoriz = Right, true
	}
	if ty < 0 {
		vert, hasVert = Top, true
	} else if ty >= h {
		vert, hasVert = Bottom, true
	}
	return
}
