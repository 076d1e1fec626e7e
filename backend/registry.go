package backend

import (
	"sync"

	"go.uber.org/zap"
)

// Factory creates a new backend instance.
type Factory func() Compute

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	// Real hardware beats the software emulator.
	backendPriority = []string{BackendGoGPU, BackendEmulator}

	logger = zap.NewNop()
)

// Backend name constants.
const (
	// BackendEmulator is the name of the software-emulated device backend.
	BackendEmulator = "emulator"
	// BackendGoGPU is the name of the GPU backend (gogpu/gogpu).
	BackendGoGPU = "gogpu"
)

// SetLogger installs a logger for backend diagnostics (device discovery,
// allocations, transfer volumes). The default is a no-op logger.
func SetLogger(l *zap.Logger) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

func log() *zap.Logger {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return logger
}

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns a list of registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) Compute {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := backends[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the highest-priority backend that initializes with at
// least one device. Returns nil if no backend qualifies.
func Default() Compute {
	registryMu.RLock()
	ordered := make([]Factory, 0, len(backends))
	for _, name := range backendPriority {
		if factory, ok := backends[name]; ok {
			ordered = append(ordered, factory)
		}
	}
	for name, factory := range backends {
		if !inPriority(name) {
			ordered = append(ordered, factory)
		}
	}
	registryMu.RUnlock()

	for _, factory := range ordered {
		b := factory()
		if b == nil {
			continue
		}
		if err := b.Init(); err != nil {
			log().Debug("backend init failed", zap.String("backend", b.Name()), zap.Error(err))
			continue
		}
		if len(b.Devices()) == 0 {
			b.Close()
			continue
		}
		return b
	}
	return nil
}

func inPriority(name string) bool {
	for _, p := range backendPriority {
		if p == name {
			return true
		}
	}
	return false
}

// active is the process-wide compute backend the patch layer allocates
// against. It is chosen lazily by Active and can be overridden with
// SetActive.
var (
	activeMu sync.Mutex
	active   Compute
	resolved bool
)

// Active returns the process-wide compute backend, selecting the default
// one on first use. Returns nil when no backend exposes any device; the
// caller treats that as "no accelerator support".
func Active() Compute {
	activeMu.Lock()
	defer activeMu.Unlock()

	if !resolved {
		active = Default()
		resolved = true
		if active != nil {
			log().Info("compute backend selected",
				zap.String("backend", active.Name()),
				zap.Int("devices", len(active.Devices())))
		} else {
			log().Info("no compute backend available")
		}
	}
	return active
}

// SetActive installs c as the process-wide compute backend, initializing
// it first. Passing nil resets selection so the next Active call runs
// discovery again. The previous backend, if any, is closed.
func SetActive(c Compute) error {
	if c != nil {
		if err := c.Init(); err != nil {
			return err
		}
	}

	activeMu.Lock()
	defer activeMu.Unlock()
	if active != nil && active != c {
		active.Close()
	}
	active = c
	resolved = c != nil
	return nil
}

// Devices enumerates the accelerators of the active backend. An empty
// result means device residency is unsupported in this process.
func Devices() []Device {
	c := Active()
	if c == nil {
		return nil
	}
	return c.Devices()
}

// AllocOn allocates a zero-filled buffer of n elements on the device,
// dispatching to the active backend.
func AllocOn(d Device, n int) (DeviceBuffer, error) {
	c := Active()
	if c == nil || c.Name() != d.Backend {
		return nil, ErrUnknownDevice
	}
	log().Debug("device alloc", zap.Stringer("device", d), zap.Int("elements", n))
	return c.Alloc(d, n)
}

// SyncDevice drains all pending transfers on the device.
func SyncDevice(d Device) error {
	c := Active()
	if c == nil || c.Name() != d.Backend {
		return ErrUnknownDevice
	}
	return c.Sync(d)
}
