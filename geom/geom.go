// Package geom addresses and manipulates axis-aligned regions of a
// two-dimensional integer lattice. It is pure geometry: no storage, no
// residency, no field data. The patch package builds its overlap-copy
// machinery on top of these operations.
package geom

import "fmt"

// Axis selects one of the two lattice axes.
type Axis int

// Lattice axes. I is the first (outer) axis, J the second (inner) axis.
const (
	AxisI Axis = iota
	AxisJ
)

func (a Axis) String() string {
	switch a {
	case AxisI:
		return "i"
	case AxisJ:
		return "j"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Rectangle is the half-open lattice region [I0,I1) x [J0,J1).
// A Rectangle identifies which points a patch covers; it carries no data.
//
// Invariant: I0 <= I1 and J0 <= J1. Constructors enforce this; a
// Rectangle built directly with a negative extent will panic on first
// use through an IndexSpace.
type Rectangle struct {
	I0, I1 int64
	J0, J1 int64
}

// Di returns the extent along the I axis.
func (r Rectangle) Di() int64 { return r.I1 - r.I0 }

// Dj returns the extent along the J axis.
func (r Rectangle) Dj() int64 { return r.J1 - r.J0 }

// NumPoints returns the number of lattice points covered.
func (r Rectangle) NumPoints() int64 { return r.Di() * r.Dj() }

func (r Rectangle) String() string {
	return fmt.Sprintf("[%d..%d) x [%d..%d)", r.I0, r.I1, r.J0, r.J1)
}

func (r Rectangle) check() {
	if r.I1 < r.I0 || r.J1 < r.J0 {
		panic(fmt.Sprintf("geom: rectangle with negative extent: %v", r))
	}
}
