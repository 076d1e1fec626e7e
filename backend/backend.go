package backend

import "fmt"

// Device identifies one accelerator exposed by a registered compute
// backend. Devices compare by identity: two values are the same device
// only when both the backend name and the ordinal match. The zero value
// does not name any device.
type Device struct {
	// Backend is the name of the compute backend that owns the device.
	Backend string

	// Index is the device ordinal within its backend, starting at 0.
	Index int
}

func (d Device) String() string {
	return fmt.Sprintf("%s:%d", d.Backend, d.Index)
}

// DeviceBuffer is a device-resident allocation of float64 elements.
// A buffer is exclusively owned by whoever allocated it; Free releases
// the storage and the buffer must not be used afterwards.
//
// Transfers are synchronous relative to the caller unless the backend
// queues them internally, in which case Download and Compute.Sync act as
// read barriers: any transfer issued before them is visible after.
type DeviceBuffer interface {
	// Device returns the identity of the device holding the storage.
	Device() Device

	// Len returns the element count of the allocation.
	Len() int

	// Upload copies len(src) elements from host memory into the buffer
	// starting at the given element offset.
	Upload(offset int, src []float64)

	// Download copies len(dst) elements from the buffer starting at the
	// given element offset into host memory.
	Download(offset int, dst []float64)

	// CopyFrom performs a strided 3-dimensional block copy from another
	// buffer on the same device. Start offsets and container shapes are
	// independent per side; count is the shared copy extent. Each
	// addressed cell is a contiguous group of fields elements. Panics if
	// src resides on a different device.
	CopyFrom(src DeviceBuffer, srcStart, srcShape, dstStart, dstShape, count [3]int64, fields int)

	// Raw returns the backend-specific storage handle, for handing the
	// allocation to an external compute kernel. The dynamic type depends
	// on the backend; callers must not retain it past the buffer's life.
	Raw() any

	// Free releases the allocation.
	Free()
}

// Compute is a compute-capability backend: it enumerates accelerator
// devices and allocates storage on them. Backends register themselves
// via Register and are selected at runtime; a backend reporting zero
// devices is how "no accelerator support" manifests in this design.
// There is no build-time gate.
type Compute interface {
	// Name returns the backend identifier (e.g. "emulator", "gogpu").
	Name() string

	// Init prepares the backend. It must be called before enumeration
	// or allocation and is idempotent.
	Init() error

	// Close releases all backend resources.
	Close()

	// Devices returns the accelerators this backend exposes. The slice
	// is stable for the life of the initialized backend.
	Devices() []Device

	// Alloc creates a zero-filled buffer of n elements on the device.
	// Freshly allocated storage is never left uninitialized.
	Alloc(d Device, n int) (DeviceBuffer, error)

	// Sync blocks until all transfers previously issued against the
	// device are complete and host-visible.
	Sync(d Device) error
}
