package engine

// The View* accessors return the engine's live buffers directly, not
// copies (spec.md §6 "Execution & readout" — host code reads these between
// Step calls). Callers must not retain them across a call to Close, and
// must not mutate them; use the brush/config methods to mutate state.

// ViewDensity returns the per-cell macroscopic density field.
func (e *Engine) ViewDensity() []float32 { return e.rho }

// ViewVelocityX returns the per-cell x velocity component.
func (e *Engine) ViewVelocityX() []float32 { return e.ux }

// ViewVelocityY returns the per-cell y velocity component.
func (e *Engine) ViewVelocityY() []float32 { return e.uy }

// ViewDye returns the per-cell passive dye concentration.
func (e *Engine) ViewDye() []float32 { return e.dye }

// ViewTemperature returns the per-cell passive temperature field.
func (e *Engine) ViewTemperature() []float32 { return e.temperature }

// ViewPorosity returns the per-cell porosity coefficient (1 = open).
func (e *Engine) ViewPorosity() []float32 { return e.porosity }

// ViewBarriers returns the per-cell barrier flags (0 = fluid, 1 = solid).
func (e *Engine) ViewBarriers() []uint8 { return e.barriers }

// ViewCurl returns the per-cell discrete curl computed by the last
// vorticity-confinement update; all zero when confinement is disabled.
func (e *Engine) ViewCurl() []float32 { return e.curl }

// SetPorosity sets the porosity coefficient of a single cell, clamped to
// [0,1], for host code configuring static porous regions. The porosity
// brush writes the field directly and does not call it.
func (e *Engine) SetPorosity(x, y int, value float32) {
	if !e.inBounds(x, y) {
		return
	}
	e.porosity[e.idx(x, y)] = clampf(value, 0, 1)
	e.bumpVersion()
}
