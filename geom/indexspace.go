package geom

import "fmt"

// IndexSpace is a view over a Rectangle supporting iteration, overlap
// queries and buffer addressing. Iteration order is fixed: the I axis is
// outer, the J axis inner, both ascending. Every function-sampled fill
// and host-contiguous view in this module uses that order, so it must
// never change.
type IndexSpace struct {
	rect Rectangle
}

// Space wraps a Rectangle in an IndexSpace.
func Space(r Rectangle) IndexSpace {
	r.check()
	return IndexSpace{rect: r}
}

// Range2 builds the index space [i0,i1) x [j0,j1).
func Range2(i0, i1, j0, j1 int64) IndexSpace {
	return Space(Rectangle{I0: i0, I1: i1, J0: j0, J1: j1})
}

// Rect returns the underlying rectangle.
func (s IndexSpace) Rect() Rectangle { return s.rect }

// Di returns the extent along the I axis.
func (s IndexSpace) Di() int64 { return s.rect.Di() }

// Dj returns the extent along the J axis.
func (s IndexSpace) Dj() int64 { return s.rect.Dj() }

// Len returns the number of lattice points in the space.
func (s IndexSpace) Len() int { return int(s.rect.NumPoints()) }

// Empty reports whether the space contains no points.
func (s IndexSpace) Empty() bool { return s.rect.NumPoints() == 0 }

func (s IndexSpace) String() string { return s.rect.String() }

// Contains reports whether the point (i, j) lies inside the space.
func (s IndexSpace) Contains(i, j int64) bool {
	return i >= s.rect.I0 && i < s.rect.I1 && j >= s.rect.J0 && j < s.rect.J1
}

// ContainsSpace reports whether other lies fully inside this space.
// An empty space is contained in anything.
func (s IndexSpace) ContainsSpace(other IndexSpace) bool {
	if other.Empty() {
		return true
	}
	return other.rect.I0 >= s.rect.I0 && other.rect.I1 <= s.rect.I1 &&
		other.rect.J0 >= s.rect.J0 && other.rect.J1 <= s.rect.J1
}

// Intersect returns the overlap of the two spaces. ok is false when they
// do not overlap; that is a legitimate outcome, not an error.
func (s IndexSpace) Intersect(other IndexSpace) (IndexSpace, bool) {
	r := Rectangle{
		I0: max64(s.rect.I0, other.rect.I0),
		I1: min64(s.rect.I1, other.rect.I1),
		J0: max64(s.rect.J0, other.rect.J0),
		J1: min64(s.rect.J1, other.rect.J1),
	}
	if r.I1 <= r.I0 || r.J1 <= r.J0 {
		return IndexSpace{}, false
	}
	return IndexSpace{rect: r}, true
}

// ExtendAll pads the space by n points in every axis direction. Used to
// grow a patch interior by its guard margin. Panics if shrinking by a
// negative n would leave a negative extent.
func (s IndexSpace) ExtendAll(n int64) IndexSpace {
	return Space(Rectangle{
		I0: s.rect.I0 - n,
		I1: s.rect.I1 + n,
		J0: s.rect.J0 - n,
		J1: s.rect.J1 + n,
	})
}

// KeepLower returns the strip of width n at the lower edge of the given
// axis, spanning the full extent of the other axis. Panics if n is
// negative or exceeds the extent along that axis.
func (s IndexSpace) KeepLower(n int64, axis Axis) IndexSpace {
	s.checkStrip(n, axis)
	r := s.rect
	switch axis {
	case AxisI:
		r.I1 = r.I0 + n
	case AxisJ:
		r.J1 = r.J0 + n
	}
	return IndexSpace{rect: r}
}

// KeepUpper returns the strip of width n at the upper edge of the given
// axis, spanning the full extent of the other axis. Panics if n is
// negative or exceeds the extent along that axis.
func (s IndexSpace) KeepUpper(n int64, axis Axis) IndexSpace {
	s.checkStrip(n, axis)
	r := s.rect
	switch axis {
	case AxisI:
		r.I0 = r.I1 - n
	case AxisJ:
		r.J0 = r.J1 - n
	}
	return IndexSpace{rect: r}
}

func (s IndexSpace) checkStrip(n int64, axis Axis) {
	extent := s.Di()
	if axis == AxisJ {
		extent = s.Dj()
	}
	if n < 0 || n > extent {
		panic(fmt.Sprintf("geom: strip width %d outside extent %d along axis %v of %v",
			n, extent, axis, s))
	}
}

// Each calls fn once per point of the space in the fixed iteration
// order: I outer, J inner, ascending.
func (s IndexSpace) Each(fn func(i, j int64)) {
	for i := s.rect.I0; i < s.rect.I1; i++ {
		for j := s.rect.J0; j < s.rect.J1; j++ {
			fn(i, j)
		}
	}
}

// MemRegion describes where a sub-space sits inside a buffer shaped like
// its containing space: the start offset of the sub-space relative to the
// container's origin, the container's full shape, and the copy extent,
// all in lattice points per axis. Source and target patches generally
// have different bounding rectangles, so the same overlap yields a
// distinct MemRegion on each side.
type MemRegion struct {
	Start [2]int64
	Shape [2]int64
	Count [2]int64
}

// MemRegionIn computes this space's memory region within a buffer shaped
// like container. Panics if the space is not contained; that is a
// defect in the caller, not a recoverable state.
func (s IndexSpace) MemRegionIn(container IndexSpace) MemRegion {
	if !container.ContainsSpace(s) {
		panic(fmt.Sprintf("geom: %v is not contained in %v", s, container))
	}
	return MemRegion{
		Start: [2]int64{s.rect.I0 - container.rect.I0, s.rect.J0 - container.rect.J0},
		Shape: [2]int64{container.Di(), container.Dj()},
		Count: [2]int64{s.Di(), s.Dj()},
	}
}

// RowZone returns the zone index (point offset, not element offset) of
// the first point in row a of the region, 0 <= a < Count[0]. A row is
// Count[1] contiguous zones in the containing buffer.
func (r MemRegion) RowZone(a int64) int64 {
	return (r.Start[0]+a)*r.Shape[1] + r.Start[1]
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
