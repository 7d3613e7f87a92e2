// Package lattice defines the D2Q9 velocity set shared by every stage of
// the collide-and-stream pipeline: direction vectors, weights, and the
// reflection tables used by the boundary engine.
package lattice

// Q is the number of discrete velocities in the D2Q9 lattice.
const Q = 9

// Cx and Cy are the lattice velocity components, indexed by direction.
// Direction 0 is the rest particle; 1-4 are axial; 5-8 are diagonal.
var (
	Cx = [Q]int32{0, 1, 0, -1, 0, 1, -1, -1, 1}
	Cy = [Q]int32{0, 0, 1, 0, -1, 1, 1, -1, -1}
)

// Cxf and Cyf are Cx/Cy pre-converted to float32 for the hot numeric paths.
var (
	Cxf = [Q]float32{0, 1, 0, -1, 0, 1, -1, -1, 1}
	Cyf = [Q]float32{0, 0, 1, 0, -1, 1, 1, -1, -1}
)

// Weights are the D2Q9 equilibrium weights: rest, 4x axial, 4x diagonal.
var Weights = [Q]float32{
	4.0 / 9.0,
	1.0 / 9.0, 1.0 / 9.0, 1.0 / 9.0, 1.0 / 9.0,
	1.0 / 36.0, 1.0 / 36.0, 1.0 / 36.0, 1.0 / 36.0,
}

// Opp maps each direction to its 180-degree reflection, used by no-slip
// bounce-back and moving-wall boundaries.
var Opp = [Q]int{0, 3, 4, 1, 2, 7, 8, 5, 6}

// SlipH maps each direction to its reflection across the x-axis (cy flips),
// used by free-slip top/bottom edges.
var SlipH = [Q]int{0, 1, 4, 3, 2, 8, 7, 6, 5}

// SlipV maps each direction to its reflection across the y-axis (cx flips),
// used by free-slip left/right edges.
var SlipV = [Q]int{0, 3, 2, 1, 4, 6, 5, 8, 7}
