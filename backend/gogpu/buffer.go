package gogpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gogpu/gpu/types"

	"github.com/gridflow/patch/backend"
)

// gpuBuffer is a device allocation: a GPU storage buffer plus its
// write-through host shadow. The shadow is authoritative for host reads;
// the GPU buffer is refreshed on every mutation, so kernels and host
// observers always agree.
type gpuBuffer struct {
	owner  *Backend
	id     backend.Device
	buffer types.Buffer
	shadow []float64
}

// Device returns the identity of the owning GPU device.
func (g *gpuBuffer) Device() backend.Device { return g.id }

// Len returns the element count of the allocation.
func (g *gpuBuffer) Len() int { return len(g.shadow) }

// Upload copies src into the buffer at the element offset and pushes the
// changed range to the GPU.
func (g *gpuBuffer) Upload(offset int, src []float64) {
	copy(g.shadow[offset:offset+len(src)], src)
	g.flush(offset, len(src))
}

// Download copies out of the host shadow, which queue-write ordering
// keeps current.
func (g *gpuBuffer) Download(offset int, dst []float64) {
	copy(dst, g.shadow[offset:offset+len(dst)])
}

// CopyFrom performs the strided block copy on the shadows and pushes the
// destination's touched rows to the GPU.
func (g *gpuBuffer) CopyFrom(src backend.DeviceBuffer, srcStart, srcShape, dstStart, dstShape, count [3]int64, fields int) {
	from, ok := src.(*gpuBuffer)
	if !ok || from.owner != g.owner {
		panic(fmt.Sprintf("gogpu: strided copy across devices: %v -> %v",
			src.Device(), g.Device()))
	}

	nq := int64(fields)
	for a := int64(0); a < count[0]; a++ {
		for b := int64(0); b < count[1]; b++ {
			for c := int64(0); c < count[2]; c++ {
				so := (((srcStart[0]+a)*srcShape[1]+(srcStart[1]+b))*srcShape[2] + (srcStart[2] + c)) * nq
				do := (((dstStart[0]+a)*dstShape[1]+(dstStart[1]+b))*dstShape[2] + (dstStart[2] + c)) * nq
				copy(g.shadow[do:do+nq], from.shadow[so:so+nq])
			}
		}
		// One flush per row of the outer axis: the inner extent is
		// contiguous only when the copy spans full rows, so flush the
		// row's bounding range.
		lo := (((dstStart[0]+a)*dstShape[1]+dstStart[1])*dstShape[2] + dstStart[2]) * nq
		hi := (((dstStart[0]+a)*dstShape[1]+(dstStart[1]+count[1]-1))*dstShape[2] + (dstStart[2] + count[2] - 1) + 1) * nq
		g.flush(int(lo), int(hi-lo))
	}
}

// Raw returns the types.Buffer handle for binding the allocation to a
// compute pipeline.
func (g *gpuBuffer) Raw() any { return g.buffer }

// Free releases the GPU buffer and the shadow.
func (g *gpuBuffer) Free() {
	g.owner.mu.RLock()
	defer g.owner.mu.RUnlock()

	if g.owner.initialized && g.buffer != 0 {
		g.owner.gpuBackend.ReleaseBuffer(g.buffer)
	}
	g.buffer = 0
	g.shadow = nil
}

// flush writes n shadow elements starting at offset to the GPU buffer.
func (g *gpuBuffer) flush(offset, n int) {
	if n == 0 {
		return
	}
	g.owner.mu.RLock()
	defer g.owner.mu.RUnlock()

	if !g.owner.initialized || g.buffer == 0 {
		return
	}
	g.owner.gpuBackend.WriteBuffer(g.owner.queue, g.buffer, uint64(offset)*8, floatBytes(g.shadow[offset:offset+n]))
}

// floatBytes reinterprets a float64 slice as its raw bytes without
// copying, for the byte-oriented queue write.
func floatBytes(data []float64) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*8)
}
