package backend

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/eapache/queue"
	"go.uber.org/zap"
)

// Emulator is a software compute backend exposing a configurable number
// of emulated accelerator devices backed by host memory. It keeps every
// residency-dispatch path of the patch layer exercisable on machines
// without GPU hardware, including cross-device staging between two
// distinct devices.
//
// On-device block copies are queued per device and executed when the
// queue is drained; Sync and Download drain before returning, so a
// transfer's effects are always visible to the next host-side reader.
// Host-to-device uploads complete synchronously.
type Emulator struct {
	mu          sync.Mutex
	devices     []*emuDevice
	count       int
	initialized bool
}

// init registers the emulator backend on package import, mirroring the
// always-available software fallback of the rendering stack this layer
// is modeled on.
func init() {
	Register(BackendEmulator, func() Compute {
		return NewEmulator(2)
	})
}

// NewEmulator creates an emulator backend with n emulated devices.
// The backend must be initialized with Init before use.
func NewEmulator(n int) *Emulator {
	if n < 0 {
		n = 0
	}
	return &Emulator{count: n}
}

// Name returns the backend identifier.
func (e *Emulator) Name() string { return BackendEmulator }

// Init creates the emulated devices. Idempotent.
func (e *Emulator) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return nil
	}
	e.devices = make([]*emuDevice, e.count)
	for i := range e.devices {
		e.devices[i] = &emuDevice{
			id:       Device{Backend: BackendEmulator, Index: i},
			commands: queue.New(),
		}
	}
	e.initialized = true
	return nil
}

// Close releases all devices. Buffers allocated on them must not be
// used afterwards.
func (e *Emulator) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.devices = nil
	e.initialized = false
}

// Devices returns the emulated devices.
func (e *Emulator) Devices() []Device {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]Device, len(e.devices))
	for i, d := range e.devices {
		ids[i] = d.id
	}
	return ids
}

// Alloc creates a zero-filled buffer of n elements on the device.
func (e *Emulator) Alloc(d Device, n int) (DeviceBuffer, error) {
	dev, err := e.lookup(d)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("emulator: negative allocation size %d", n)
	}
	return &emuBuffer{dev: dev, data: make([]float64, n)}, nil
}

// Sync drains the device's command queue.
func (e *Emulator) Sync(d Device) error {
	dev, err := e.lookup(d)
	if err != nil {
		return err
	}
	dev.drain()
	return nil
}

func (e *Emulator) lookup(d Device) (*emuDevice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil, ErrNotInitialized
	}
	if d.Backend != BackendEmulator || d.Index < 0 || d.Index >= len(e.devices) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownDevice, d)
	}
	return e.devices[d.Index], nil
}

// emuDevice is one emulated accelerator: an identity plus a FIFO of
// pending on-device copies.
type emuDevice struct {
	id Device

	mu       sync.Mutex
	commands *queue.Queue
}

func (d *emuDevice) enqueue(cmd func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands.Add(cmd)
}

func (d *emuDevice) drain() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.commands.Length() > 0 {
		d.commands.Remove().(func())()
	}
}

// emuBuffer is a device allocation backed by host memory.
type emuBuffer struct {
	dev  *emuDevice
	data []float64
}

// Device returns the identity of the owning emulated device.
func (b *emuBuffer) Device() Device { return b.dev.id }

// Len returns the element count of the allocation.
func (b *emuBuffer) Len() int { return len(b.data) }

// Upload copies src into the buffer at the element offset. Completes
// before returning.
func (b *emuBuffer) Upload(offset int, src []float64) {
	copy(b.data[offset:offset+len(src)], src)
}

// Download drains pending device copies, then copies out of the buffer.
func (b *emuBuffer) Download(offset int, dst []float64) {
	b.dev.drain()
	copy(dst, b.data[offset:offset+len(dst)])
}

// CopyFrom enqueues a strided 3-dimensional block copy from another
// buffer on the same emulated device. The copy executes when the device
// queue is drained.
func (b *emuBuffer) CopyFrom(src DeviceBuffer, srcStart, srcShape, dstStart, dstShape, count [3]int64, fields int) {
	from, ok := src.(*emuBuffer)
	if !ok || from.dev != b.dev {
		panic(fmt.Sprintf("emulator: strided copy across devices: %v -> %v",
			src.Device(), b.Device()))
	}
	log().Debug("emulated block copy",
		zap.Stringer("device", b.dev.id),
		zap.Int64s("count", count[:]),
		zap.Int("fields", fields))

	// Capture the storage now: the command must stay valid even if the
	// source buffer is freed before the queue drains.
	src3, dst3 := from.data, b.data
	b.dev.enqueue(func() {
		copyStrided3D(dst3, src3, srcStart, srcShape, dstStart, dstShape, count, fields)
	})
}

// Raw returns the host address of the emulated storage as a uintptr,
// the form an external kernel binding consumes. Valid only while the
// buffer is live.
func (b *emuBuffer) Raw() any {
	if len(b.data) == 0 {
		return uintptr(0)
	}
	b.dev.drain()
	return uintptr(unsafe.Pointer(&b.data[0]))
}

// Free releases the allocation.
func (b *emuBuffer) Free() {
	b.data = nil
}

// copyStrided3D is the shared strided-copy core: for every cell of the
// count extent, one contiguous group of fields elements moves from src
// to dst, each side addressed through its own start offset and container
// shape.
func copyStrided3D(dst, src []float64, srcStart, srcShape, dstStart, dstShape, count [3]int64, fields int) {
	nq := int64(fields)
	for a := int64(0); a < count[0]; a++ {
		for b := int64(0); b < count[1]; b++ {
			for c := int64(0); c < count[2]; c++ {
				so := (((srcStart[0]+a)*srcShape[1]+(srcStart[1]+b))*srcShape[2] + (srcStart[2] + c)) * nq
				do := (((dstStart[0]+a)*dstShape[1]+(dstStart[1]+b))*dstShape[2] + (dstStart[2] + c)) * nq
				copy(dst[do:do+nq], src[so:so+nq])
			}
		}
	}
}
