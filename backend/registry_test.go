package backend

import (
	"testing"
)

// stubCompute is a minimal backend for registry tests.
type stubCompute struct {
	name    string
	devices int
	inited  bool
	closed  bool
}

func (s *stubCompute) Name() string      { return s.name }
func (s *stubCompute) Init() error       { s.inited = true; return nil }
func (s *stubCompute) Close()            { s.closed = true }
func (s *stubCompute) Sync(Device) error { return nil }

func (s *stubCompute) Devices() []Device {
	out := make([]Device, s.devices)
	for i := range out {
		out[i] = Device{Backend: s.name, Index: i}
	}
	return out
}

func (s *stubCompute) Alloc(d Device, n int) (DeviceBuffer, error) {
	return nil, ErrNotInitialized
}

func TestRegisterAndGet(t *testing.T) {
	Register("stub", func() Compute { return &stubCompute{name: "stub", devices: 1} })
	defer Unregister("stub")

	if !IsRegistered("stub") {
		t.Fatal("stub not registered")
	}
	b := Get("stub")
	if b == nil || b.Name() != "stub" {
		t.Fatalf("Get returned %v", b)
	}
}

func TestUnregister(t *testing.T) {
	Register("stub", func() Compute { return &stubCompute{name: "stub"} })
	Unregister("stub")

	if IsRegistered("stub") {
		t.Error("stub still registered after Unregister")
	}
	if Get("stub") != nil {
		t.Error("Get returned an unregistered backend")
	}
}

func TestEmulatorAlwaysAvailable(t *testing.T) {
	if !IsRegistered(BackendEmulator) {
		t.Fatal("emulator backend not registered on import")
	}
	for _, name := range Available() {
		if name == BackendEmulator {
			return
		}
	}
	t.Error("emulator missing from Available()")
}

func TestDefaultPrefersHigherPriorityBackend(t *testing.T) {
	// A registered gogpu backend with devices outranks the emulator.
	Register(BackendGoGPU, func() Compute { return &stubCompute{name: BackendGoGPU, devices: 1} })
	defer Unregister(BackendGoGPU)

	b := Default()
	if b == nil {
		t.Fatal("Default returned nil")
	}
	defer b.Close()
	if b.Name() != BackendGoGPU {
		t.Errorf("Default = %q, want %q", b.Name(), BackendGoGPU)
	}
}

func TestDefaultSkipsBackendsWithoutDevices(t *testing.T) {
	// A higher-priority backend that enumerates nothing is passed over
	// in favor of the emulator.
	Register(BackendGoGPU, func() Compute { return &stubCompute{name: BackendGoGPU, devices: 0} })
	defer Unregister(BackendGoGPU)

	b := Default()
	if b == nil {
		t.Fatal("Default returned nil")
	}
	defer b.Close()
	if b.Name() != BackendEmulator {
		t.Errorf("Default = %q, want %q", b.Name(), BackendEmulator)
	}
}

func TestSetActiveAndDevices(t *testing.T) {
	if err := SetActive(NewEmulator(3)); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := SetActive(nil); err != nil {
			t.Fatal(err)
		}
	})

	devices := Devices()
	if len(devices) != 3 {
		t.Fatalf("enumerated %d devices, want 3", len(devices))
	}
	for i, d := range devices {
		if d.Backend != BackendEmulator || d.Index != i {
			t.Errorf("device %d = %v", i, d)
		}
	}

	buf, err := AllocOn(devices[1], 64)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Free()
	if buf.Device() != devices[1] {
		t.Errorf("allocated on %v, want %v", buf.Device(), devices[1])
	}
	if err := SyncDevice(devices[1]); err != nil {
		t.Errorf("SyncDevice: %v", err)
	}
}

func TestAllocOnForeignDevice(t *testing.T) {
	if err := SetActive(NewEmulator(1)); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := SetActive(nil); err != nil {
			t.Fatal(err)
		}
	})

	if _, err := AllocOn(Device{Backend: "elsewhere", Index: 0}, 8); err == nil {
		t.Error("expected an error for a device of an inactive backend")
	}
}

func TestDeviceIdentity(t *testing.T) {
	a := Device{Backend: BackendEmulator, Index: 0}
	b := Device{Backend: BackendEmulator, Index: 1}
	c := Device{Backend: BackendGoGPU, Index: 0}

	if a == b || a == c {
		t.Error("distinct devices compare equal")
	}
	if a != (Device{Backend: BackendEmulator, Index: 0}) {
		t.Error("identical devices compare unequal")
	}
	if a.String() != "emulator:0" {
		t.Errorf("String = %q", a.String())
	}
}
