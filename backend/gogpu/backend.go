// Package gogpu provides a GPU compute backend for the patch memory
// subsystem using the gogpu/gogpu framework.
//
// This backend uses gogpu's gpu.Backend interface, which supports both
// Rust (wgpu-native) and Pure Go (gogpu/wgpu) implementations. Users can
// select the underlying GPU backend by importing the appropriate package:
//
//	import _ "github.com/gogpu/gogpu/gpu/backend/rust"   // Rust backend
//	import _ "github.com/gogpu/gogpu/gpu/backend/native" // Pure Go backend
package gogpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gogpu/gpu"
	"github.com/gogpu/gogpu/gpu/types"

	"github.com/gridflow/patch/backend"
)

// Backend is a GPU compute backend using gogpu/gogpu. It exposes one
// device per created logical GPU device (currently a single adapter).
//
// gpu.Backend does not yet expose buffer readback, so every device
// buffer keeps a write-through host shadow: mutations update the shadow
// and push the changed range to the GPU through the queue, and Download
// reads the shadow. The GPU copy of the data is therefore always current
// for kernels, and host reads are exact without a readback path. When
// buffer mapping lands in gpu.Backend the shadow can be dropped.
type Backend struct {
	mu sync.RWMutex

	gpuBackend gpu.Backend
	instance   types.Instance
	adapter    types.Adapter
	device     types.Device
	queue      types.Queue

	initialized bool
}

// NewBackend creates a new gogpu compute backend.
// The backend must be initialized with Init() before use.
func NewBackend() *Backend {
	return &Backend{}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendGoGPU
}

// Init initializes the backend by creating GPU resources:
// the active gogpu backend (Rust or Pure Go), a WebGPU instance, an
// adapter, a logical device and its command queue.
//
// Returns an error if GPU initialization fails; the caller then falls
// through to the next registered compute backend.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	gpuBackend := gpu.GetBackend()
	if gpuBackend == nil {
		if err := gpu.InitDefaultBackend(); err != nil {
			return fmt.Errorf("%w: %w", ErrNoGPUBackend, err)
		}
		gpuBackend = gpu.GetBackend()
	}
	if gpuBackend == nil {
		return ErrNoGPUBackend
	}
	b.gpuBackend = gpuBackend

	instance, err := gpuBackend.CreateInstance()
	if err != nil {
		return fmt.Errorf("instance creation failed: %w", err)
	}
	b.instance = instance

	adapter, err := gpuBackend.RequestAdapter(instance, &types.AdapterOptions{
		PowerPreference: types.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoGPUBackend, err)
	}
	b.adapter = adapter

	device, err := gpuBackend.RequestDevice(adapter, &types.DeviceOptions{
		Label: "patch-compute-device",
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceCreationFailed, err)
	}
	b.device = device
	b.queue = gpuBackend.GetQueue(device)

	b.initialized = true
	return nil
}

// Close releases all backend resources.
// The backend should not be used after Close is called.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Handles are managed by the gogpu backend; nothing to release
	// individually here.
	b.gpuBackend = nil
	b.initialized = false
}

// Devices returns the GPU devices this backend exposes. A single logical
// device is created per adapter, so the list has one entry once Init
// succeeded.
func (b *Backend) Devices() []backend.Device {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.initialized {
		return nil
	}
	return []backend.Device{{Backend: backend.BackendGoGPU, Index: 0}}
}

// Alloc creates a zero-filled storage buffer of n float64 elements on
// the device.
func (b *Backend) Alloc(d backend.Device, n int) (backend.DeviceBuffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.initialized {
		return nil, ErrNotInitialized
	}
	if d.Backend != backend.BackendGoGPU || d.Index != 0 {
		return nil, fmt.Errorf("%w: %v", backend.ErrUnknownDevice, d)
	}
	if n < 0 {
		return nil, fmt.Errorf("gogpu: negative allocation size %d", n)
	}

	desc := &types.BufferDescriptor{
		Label: "patch-storage",
		Size:  uint64(n) * 8,
		Usage: types.BufferUsageStorage | types.BufferUsageCopySrc | types.BufferUsageCopyDst,
	}
	buf, err := b.gpuBackend.CreateBuffer(b.device, desc)
	if err != nil {
		return nil, fmt.Errorf("buffer creation failed: %w", err)
	}

	gb := &gpuBuffer{
		owner:  b,
		id:     d,
		buffer: buf,
		shadow: make([]float64, n),
	}
	// The shadow starts zeroed; push the zero fill so the GPU copy
	// matches from the first kernel launch. Written directly since the
	// backend lock is already held.
	if n > 0 {
		b.gpuBackend.WriteBuffer(b.queue, buf, 0, floatBytes(gb.shadow))
	}
	return gb, nil
}

// Sync waits for pending transfers. Queue writes through gpu.Backend are
// complete once submitted, so this is a no-op.
func (b *Backend) Sync(d backend.Device) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.initialized {
		return ErrNotInitialized
	}
	if d.Backend != backend.BackendGoGPU || d.Index != 0 {
		return fmt.Errorf("%w: %v", backend.ErrUnknownDevice, d)
	}
	return nil
}
