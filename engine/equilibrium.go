package engine

import "github.com/pthm-cable/lbmsim/lattice"

// equilibrium computes the 9-component Maxwell-Boltzmann equilibrium
// distribution for (rho, u, v) into out (spec.md §4.1). Pure, branch-free,
// and cheap enough to call per-cell per-step; it is unrolled by hand since
// the direction count is a compile-time constant.
func equilibrium(rho, u, v float32, out *[lattice.Q]float32) {
	u2 := u*u + v*v
	base := 1 - 1.5*u2
	wr0 := lattice.Weights[0] * rho
	wr1 := lattice.Weights[1] * rho
	wr5 := lattice.Weights[5] * rho
	cu5, cu6 := u+v, v-u
	out[0] = wr0 * base
	out[1] = wr1 * (base + 3*u + 4.5*u*u)
	out[2] = wr1 * (base + 3*v + 4.5*v*v)
	out[3] = wr1 * (base - 3*u + 4.5*u*u)
	out[4] = wr1 * (base - 3*v + 4.5*v*v)
	out[5] = wr5 * (base + 3*cu5 + 4.5*cu5*cu5)
	out[6] = wr5 * (base + 3*cu6 + 4.5*cu6*cu6)
	out[7] = wr5 * (base - 3*cu5 + 4.5*cu5*cu5)
	out[8] = wr5 * (base - 3*cu6 + 4.5*cu6*cu6)
}

// equilibriumAt is the single-direction form, used where only one
// component of f_eq is needed (e.g. boundary rewrites).
func equilibriumAt(k int, rho, u, v float32) float32 {
	u2 := u*u + v*v
	cu := lattice.Cxf[k]*u + lattice.Cyf[k]*v
	return lattice.Weights[k] * rho * (1 - 1.5*u2 + 3*cu + 4.5*cu*cu)
}
