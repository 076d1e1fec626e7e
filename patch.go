package patch

import (
	"fmt"

	"github.com/gridflow/patch/backend"
	"github.com/gridflow/patch/geom"
)

// Patch is a rectangular block of simulation field data defined over a
// spatial index space. Its storage holds numFields values per lattice
// point in point-major order: the group of values belonging to one point
// (its "zone") is contiguous. Storage resides either in host memory or
// on one accelerator device, and is exclusively owned by the patch.
type Patch struct {
	// rect is the region of index space covered by this patch.
	rect geom.Rectangle

	// numFields is the number of values stored at each zone.
	numFields int

	// data is the backing storage, host or device resident.
	data buffer
}

// buffer is the runtime storage variant. Exactly two implementations
// exist: hostBuffer and deviceBuffer. All geometry and overlap logic is
// generic over this contract; residency-specific code lives in the
// backend transfer primitives.
type buffer interface {
	length() int
}

// hostBuffer is host-resident contiguous storage.
type hostBuffer []float64

func (b hostBuffer) length() int { return len(b) }

// deviceBuffer is a device-resident allocation tagged with its device
// identity through the backend handle.
type deviceBuffer struct {
	buf backend.DeviceBuffer
}

func (b deviceBuffer) length() int { return b.buf.Len() }

// Zeros generates a host-resident patch of zeros over the given index
// space.
func Zeros(numFields int, space geom.IndexSpace) *Patch {
	if numFields <= 0 {
		panic(fmt.Sprintf("patch: non-positive field count %d", numFields))
	}
	return &Patch{
		rect:      space.Rect(),
		numFields: numFields,
		data:      make(hostBuffer, space.Len()*numFields),
	}
}

// FromSliceFunction generates a host-resident patch covering the given
// space, with values defined by a function operating on zone slices. The
// function is called exactly once per point, in the space's fixed
// iteration order, and must fill the slice it is handed with the point's
// numFields values.
func FromSliceFunction(space geom.IndexSpace, numFields int, fn func(i, j int64, zone []float64)) *Patch {
	p := Zeros(numFields, space)
	data := p.data.(hostBuffer)

	next := 0
	space.Each(func(i, j int64) {
		fn(i, j, data[next:next+numFields])
		next += numFields
	})
	return p
}

// FromScalarFunction generates a single-field host-resident patch with
// values defined by a point function.
func FromScalarFunction(space geom.IndexSpace, fn func(i, j int64) float64) *Patch {
	return FromSliceFunction(space, 1, func(i, j int64, zone []float64) {
		zone[0] = fn(i, j)
	})
}

// Space returns the index space covered by this patch.
func (p *Patch) Space() geom.IndexSpace { return geom.Space(p.rect) }

// Rect returns the rectangle covered by this patch.
func (p *Patch) Rect() geom.Rectangle { return p.rect }

// NumFields returns the number of values stored at each zone.
func (p *Patch) NumFields() int { return p.numFields }

// Len returns the total element count of the patch storage:
// point count times field count.
func (p *Patch) Len() int { return p.data.length() }

// Device returns the device holding the patch storage. ok is false when
// the patch is host-resident.
func (p *Patch) Device() (backend.Device, bool) {
	if d, ok := p.data.(deviceBuffer); ok {
		return d.buf.Device(), true
	}
	return backend.Device{}, false
}

// AsSlice returns the underlying data when it lives on the host. ok is
// false for device-resident patches. The slice aliases the patch
// storage; writes through it mutate the patch.
func (p *Patch) AsSlice() ([]float64, bool) {
	if b, ok := p.data.(hostBuffer); ok {
		return b, true
	}
	return nil, false
}

// DeviceData returns the underlying device allocation when the patch is
// device-resident. ok is false for host patches. External kernels reach
// the raw storage handle through DeviceBuffer.Raw.
func (p *Patch) DeviceData() (backend.DeviceBuffer, bool) {
	if d, ok := p.data.(deviceBuffer); ok {
		return d.buf, true
	}
	return nil, false
}

// ZoneAt returns the zone slice of point (i, j) for in-place reads and
// writes. The patch must be host-resident and the point inside its
// space; violations are programmer faults.
func (p *Patch) ZoneAt(i, j int64) []float64 {
	data, ok := p.data.(hostBuffer)
	if !ok {
		panic("patch: ZoneAt on a device-resident patch")
	}
	if !p.Space().Contains(i, j) {
		panic(fmt.Sprintf("patch: point (%d, %d) outside %v", i, j, p.Space()))
	}
	z := int((i-p.rect.I0)*p.rect.Dj() + (j - p.rect.J0))
	return data[z*p.numFields : (z+1)*p.numFields]
}

// MapMut overwrites the part of the patch covered by subset with values
// from the function, evaluated once per point of subset. This is the
// mechanism for applying boundary conditions to an arbitrary sub-region;
// it works on host and device-resident patches alike.
func (p *Patch) MapMut(subset geom.IndexSpace, fn func(i, j int64, zone []float64)) {
	FromSliceFunction(subset, p.numFields, fn).CopyInto(p)
}

func (p *Patch) String() string {
	where := "host"
	if d, ok := p.Device(); ok {
		where = d.String()
	}
	return fmt.Sprintf("Patch(%v, %d fields, %s)", p.rect, p.numFields, where)
}
