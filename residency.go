package patch

import (
	"fmt"

	"github.com/gridflow/patch/backend"
	"github.com/gridflow/patch/geom"
)

// Residency operations. Consuming migrations (IntoDevice, IntoHost, On)
// take ownership of the receiver: they free its device storage when a
// transfer is required and return the patch that now owns the data. The
// receiver must not be used afterwards, so no two patches ever point at
// the same storage.

// allocOn allocates zero-filled device storage for a patch shape,
// converting allocation failure into a fault: in a batch simulation an
// out-of-memory device is not a recoverable state.
func allocOn(d backend.Device, n int) backend.DeviceBuffer {
	buf, err := backend.AllocOn(d, n)
	if err != nil {
		panic(fmt.Sprintf("patch: device allocation of %d elements on %v failed: %v", n, d, err))
	}
	return buf
}

// ToDevice makes a deep copy of this patch on the given device. The
// receiver may reside on the host or on any device and is left intact.
// Panics if the device is not enumerated by the active compute backend,
// a configuration fault rather than a per-call runtime error.
func (p *Patch) ToDevice(d backend.Device) *Patch {
	buf := allocOn(d, p.Len())

	switch data := p.data.(type) {
	case hostBuffer:
		buf.Upload(0, data)
	case deviceBuffer:
		// Cross-device transfer is staged through host memory; there is
		// no peer-copy primitive in the capability layer.
		staging := make([]float64, p.Len())
		data.buf.Download(0, staging)
		buf.Upload(0, staging)
	}

	return &Patch{rect: p.rect, numFields: p.numFields, data: deviceBuffer{buf: buf}}
}

// IntoDevice consumes this patch and returns one resident on the given
// device. When the patch already lives there no transfer or copy takes
// place and the patch itself is returned.
func (p *Patch) IntoDevice(d backend.Device) *Patch {
	if cur, ok := p.Device(); ok && cur == d {
		return p
	}
	moved := p.ToDevice(d)
	p.release()
	return moved
}

// ToHost makes a deep copy of this patch in host memory. The receiver
// may reside on the host or on any device and is left intact.
func (p *Patch) ToHost() *Patch {
	data := make(hostBuffer, p.Len())

	switch src := p.data.(type) {
	case hostBuffer:
		copy(data, src)
	case deviceBuffer:
		src.buf.Download(0, data)
	}

	return &Patch{rect: p.rect, numFields: p.numFields, data: data}
}

// IntoHost consumes this patch and returns one resident in host memory.
// When the patch is already host-resident no copy takes place and the
// patch itself is returned.
func (p *Patch) IntoHost() *Patch {
	if _, ok := p.data.(hostBuffer); ok {
		return p
	}
	moved := p.ToHost()
	p.release()
	return moved
}

// On consumes this patch and ensures it resides on the given device, or
// in host memory when d is nil.
func (p *Patch) On(d *backend.Device) *Patch {
	if d != nil {
		return p.IntoDevice(*d)
	}
	return p.IntoHost()
}

// Extract returns a new patch covering subset, with storage residing in
// the same location as this patch. Panics if subset is not fully
// contained within this patch's space.
func (p *Patch) Extract(subset geom.IndexSpace) *Patch {
	if !p.Space().ContainsSpace(subset) {
		panic(fmt.Sprintf("patch: extract of %v out of bounds of %v", subset, p.Space()))
	}
	if subset.Empty() {
		return Zeros(p.numFields, subset)
	}

	var out *Patch
	switch data := p.data.(type) {
	case hostBuffer:
		out = Zeros(p.numFields, subset)
	case deviceBuffer:
		buf := allocOn(data.buf.Device(), subset.Len()*p.numFields)
		out = &Patch{rect: subset.Rect(), numFields: p.numFields, data: deviceBuffer{buf: buf}}
	}
	p.CopyInto(out)
	return out
}

// release frees the patch storage after a consuming migration. Host
// storage is left to the garbage collector; device storage is returned
// to its backend.
func (p *Patch) release() {
	if d, ok := p.data.(deviceBuffer); ok {
		d.buf.Free()
	}
	p.data = nil
}
