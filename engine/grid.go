// Package engine implements the D2Q9 lattice-Boltzmann simulation core:
// grid storage, the collide-and-stream update, boundary handling, scalar
// advection, vorticity confinement and the row-stripe parallel executor
// that drives them. The package has no rendering or I/O dependencies —
// callers mutate state through brush/configuration methods, call Step,
// and read back buffers through the View* accessors.
package engine

import (
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/pthm-cable/lbmsim/lattice"
)

// Edge identifies one of the four grid boundaries.
type Edge int

const (
	Left Edge = iota
	Right
	Top
	Bottom
	numEdges
)

// BoundaryKind is the per-edge boundary policy (spec §4.3).
type BoundaryKind int

const (
	Periodic BoundaryKind = iota
	NoSlip
	FreeSlip
	MovingWall
	EquilInflow
	NeumannOutflow
)

// WallVelocity holds the tangential/normal velocity components used by a
// MovingWall edge.
type WallVelocity struct {
	U, V float32
}

// InflowState is the (rho, u, v) triple an EquilInflow edge rewrites its
// row/column to, pre-collision.
type InflowState struct {
	Rho, U, V float32
}

// SpongeConfig is the absorbing-frame configuration of §4.7.
type SpongeConfig struct {
	Strength float32
	Width    float32
	Enabled  [numEdges]bool
}

// Params bundles every scalar configuration value from spec §6. Viscosity
// is stored as the derived relaxation rate Omega; use ViscosityToOmega to
// convert from kinematic viscosity the way the teacher's collide step did.
type Params struct {
	Omega float32 // 1/(3*nu+0.5), BGK relaxation rate
	Decay float32 // dye decay per step
	Dt    float32

	GravityX, GravityY float32

	Edges    [numEdges]BoundaryKind
	Inflow   [numEdges]InflowState
	WallVel  [numEdges]WallVelocity

	ThermalExpansion   float32
	ThermalRef         float32
	ThermalDiffusivity float32

	VorticityConfinement float32
	MaxVelocity          float32

	SmagorinskyC float32
	TempViscK    float32
	PowerLawN    float32
	PowerLawK    float32

	GlobalDrag    float32
	PorosityDrag  float32

	Sponge SpongeConfig

	BFECC bool

	Threads int

	// Seed drives the engine's private PRNG (spec.md §9 "deterministic,
	// seedable"). Zero means unseeded default (1), not a system-random seed,
	// so that DefaultParams() stays reproducible.
	Seed int64
}

// DefaultParams returns the conservative defaults spec.md §3/§9 recommend:
// periodic box, no body forces, BFECC off, single-threaded.
func DefaultParams() Params {
	return Params{
		Omega:       1.0 / (3.0*0.02 + 0.5),
		Decay:       0.01,
		Dt:          1.0,
		MaxVelocity: 0.57,
		Threads:     1,
	}
}

// ViscosityToOmega converts kinematic viscosity nu to the BGK relaxation
// rate omega = 1/(3*nu + 0.5).
func ViscosityToOmega(nu float32) float32 {
	return 1.0 / (3.0*nu + 0.5)
}

// Engine holds the full simulation state. All buffers are allocated once,
// at construction, and never reallocated — host code may hold stable views
// into them for the engine's lifetime (spec.md §9 "Host view buffers").
type Engine struct {
	w, h int

	f    [lattice.Q][]float32
	fNew [lattice.Q][]float32

	rho    []float32
	ux, uy []float32

	barriers []uint8
	porosity []float32

	dye, dyeNew                 []float32
	temperature, temperatureNew []float32

	forceX, forceY []float32
	curl           []float32

	tmpBFECC1, tmpBFECC2 []float32

	params Params

	rng *rand.Rand

	dataVersion  atomic.Uint64
	barrierDirty atomic.Bool

	pool *executor
}

// New constructs an Engine for a w x h grid, initializes every cell to rest
// equilibrium (rho=1, u=0), and starts the row-stripe worker pool described
// in spec.md §4.8.
func New(w, h int, params Params) *Engine {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	n := w * h
	e := &Engine{
		w: w, h: h,
		rho:             make([]float32, n),
		ux:              make([]float32, n),
		uy:              make([]float32, n),
		barriers:        make([]uint8, n),
		porosity:        make([]float32, n),
		dye:             make([]float32, n),
		dyeNew:          make([]float32, n),
		temperature:     make([]float32, n),
		temperatureNew:  make([]float32, n),
		forceX:          make([]float32, n),
		forceY:          make([]float32, n),
		curl:            make([]float32, n),
		tmpBFECC1:       make([]float32, n),
		tmpBFECC2:       make([]float32, n),
		params:          params,
		rng:             rand.New(rand.NewSource(seedOrDefault(params.Seed))),
	}
	for k := 0; k < lattice.Q; k++ {
		e.f[k] = make([]float32, n)
		e.fNew[k] = make([]float32, n)
	}
	if params.Threads < 1 {
		params.Threads = 1
		e.params.Threads = 1
	}
	e.pool = newExecutor(params.Threads)
	e.Reset()
	return e
}

func seedOrDefault(seed int64) int64 {
	if seed == 0 {
		return 1
	}
	return seed
}

// SetSeed reseeds the engine's private PRNG, used by the noise brush and any
// stochastic closure. It does not touch field state.
func (e *Engine) SetSeed(seed int64) {
	e.rng = rand.New(rand.NewSource(seedOrDefault(seed)))
	e.params.Seed = seed
}

// Close tears down the worker pool. Safe to call once; not required if the
// engine simply becomes unreachable, since no goroutine is leaked into
// other objects, but callers that construct many engines should call it
// (spec.md §5 "the pool is torn down only on engine destruction").
func (e *Engine) Close() {
	e.pool.stop()
}

// Width and Height report grid dimensions.
func (e *Engine) Width() int  { return e.w }
func (e *Engine) Height() int { return e.h }

// idx converts a (x,y) cell coordinate to the flat buffer index.
func (e *Engine) idx(x, y int) int { return y*e.w + x }

// inBounds reports whether (x,y) is a valid grid cell.
func (e *Engine) inBounds(x, y int) bool {
	return x >= 0 && x < e.w && y >= 0 && y < e.h
}

// Reset restores the post-construction state: every porosity cell at 1,
// every barrier cleared, every distribution at rest equilibrium (rho=1,
// u=0), scalar fields at zero, and the data version/barrier-dirty latches
// cleared. This is bit-exact with the state New() produces (spec.md §8
// "reset() restores bit-exact the post-construction state").
func (e *Engine) Reset() {
	n := e.w * e.h
	for i := 0; i < n; i++ {
		e.barriers[i] = 0
		e.porosity[i] = 1
		e.rho[i] = 1
		e.ux[i] = 0
		e.uy[i] = 0
		e.dye[i] = 0
		e.dyeNew[i] = 0
		e.temperature[i] = 0
		e.temperatureNew[i] = 0
		e.forceX[i] = 0
		e.forceY[i] = 0
		e.curl[i] = 0
	}
	for k := 0; k < lattice.Q; k++ {
		w := lattice.Weights[k]
		fk := e.f[k]
		fnk := e.fNew[k]
		for i := 0; i < n; i++ {
			fk[i] = w
			fnk[i] = w
		}
	}
	e.dataVersion.Store(0)
	e.barrierDirty.Store(false)
}

// Snapshot is a deep copy of the engine's state buffers (f, rho, velocity,
// barriers, porosity, dye, temperature, force), used by round-trip tests.
// Scratch buffers (f_new, the *New scalar fields, curl, BFECC) are not
// copied. The original engine exposes an equivalent full-field dump for
// diagnostics (see SPEC_FULL.md "Field readback snapshotting").
type Snapshot struct {
	Width, Height int
	F             [lattice.Q][]float32
	Rho, Ux, Uy   []float32
	Barriers      []uint8
	Porosity      []float32
	Dye           []float32
	Temperature   []float32
	ForceX, ForceY []float32
	DataVersion   uint64
}

// Snapshot copies the state buffers into a fresh Snapshot.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Width: e.w, Height: e.h,
		Rho:         append([]float32(nil), e.rho...),
		Ux:          append([]float32(nil), e.ux...),
		Uy:          append([]float32(nil), e.uy...),
		Barriers:    append([]uint8(nil), e.barriers...),
		Porosity:    append([]float32(nil), e.porosity...),
		Dye:         append([]float32(nil), e.dye...),
		Temperature: append([]float32(nil), e.temperature...),
		ForceX:      append([]float32(nil), e.forceX...),
		ForceY:      append([]float32(nil), e.forceY...),
		DataVersion: e.dataVersion.Load(),
	}
	for k := 0; k < lattice.Q; k++ {
		s.F[k] = append([]float32(nil), e.f[k]...)
	}
	return s
}

// bumpVersion marks the engine as mutated; called by every brush/config
// method that changes host-visible state.
func (e *Engine) bumpVersion() {
	e.dataVersion.Add(1)
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampVelocity(ux, uy, maxV float32) (float32, float32) {
	s2 := ux*ux + uy*uy
	maxV2 := maxV * maxV
	if s2 > maxV2 && s2 > 0 {
		scale := float32(math.Sqrt(float64(maxV2 / s2)))
		return ux * scale, uy * scale
	}
	return ux, uy
}
