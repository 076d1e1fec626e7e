package patch

import (
	"testing"

	"github.com/gridflow/patch/backend"
	"github.com/gridflow/patch/geom"
)

func TestRoundTripThroughEveryDevice(t *testing.T) {
	space := geom.Range2(0, 24, 0, 24)
	original := FromSliceFunction(space, 2, func(i, j int64, zone []float64) {
		zone[0] = float64(i) / 7
		zone[1] = float64(j) * 1.5
	})
	want, _ := original.AsSlice()

	for _, device := range backend.Devices() {
		t.Run(device.String(), func(t *testing.T) {
			back := original.ToDevice(device).ToHost()

			got, ok := back.AsSlice()
			if !ok {
				t.Fatal("ToHost result is not host-resident")
			}
			for k := range want {
				if got[k] != want[k] {
					t.Fatalf("element %d = %v, want %v", k, got[k], want[k])
				}
			}
		})
	}

	// The source must be intact: ToDevice copies, it does not consume.
	after, _ := original.AsSlice()
	for k := range want {
		if after[k] != want[k] {
			t.Fatalf("source element %d changed to %v", k, after[k])
		}
	}
}

func TestToDeviceResidency(t *testing.T) {
	for _, device := range backend.Devices() {
		t.Run(device.String(), func(t *testing.T) {
			p := Zeros(1, geom.Range2(0, 8, 0, 8)).IntoDevice(device)

			d, onDevice := p.Device()
			if !onDevice || d != device {
				t.Fatalf("Device = %v/%v, want %v/true", d, onDevice, device)
			}
			if _, ok := p.AsSlice(); ok {
				t.Error("AsSlice available on a device patch")
			}
			if buf, ok := p.DeviceData(); !ok || buf.Device() != device {
				t.Error("DeviceData not available or on wrong device")
			}
		})
	}
}

func TestIntoDeviceIsNoOpWhenResident(t *testing.T) {
	devices := backend.Devices()
	if len(devices) == 0 {
		t.Skip("no devices")
	}
	d := devices[0]

	p := Zeros(1, geom.Range2(0, 8, 0, 8)).IntoDevice(d)
	q := p.IntoDevice(d)

	if q != p {
		t.Error("IntoDevice on an already-resident patch did not return the patch itself")
	}
}

func TestIntoHostIsNoOpWhenResident(t *testing.T) {
	p := Zeros(1, geom.Range2(0, 8, 0, 8))
	if q := p.IntoHost(); q != p {
		t.Error("IntoHost on a host patch did not return the patch itself")
	}
}

func TestOn(t *testing.T) {
	p := Zeros(1, geom.Range2(0, 8, 0, 8))
	if q := p.On(nil); q != p {
		t.Error("On(nil) did not keep the patch on host")
	}

	devices := backend.Devices()
	if len(devices) == 0 {
		t.Skip("no devices")
	}
	q := p.On(&devices[0])
	if d, ok := q.Device(); !ok || d != devices[0] {
		t.Errorf("On(device) residency = %v/%v", d, ok)
	}
}

func TestExtractOnDevice(t *testing.T) {
	for _, device := range backend.Devices() {
		t.Run(device.String(), func(t *testing.T) {
			p := FromScalarFunction(geom.Range2(0, 12, 0, 12), func(i, j int64) float64 {
				return float64(i - j)
			}).IntoDevice(device)

			sub := geom.Range2(3, 9, 3, 9)
			q := p.Extract(sub)

			if d, ok := q.Device(); !ok || d != device {
				t.Fatalf("extract residency = %v/%v, want %v", d, ok, device)
			}
			host := q.IntoHost()
			sub.Each(func(i, j int64) {
				if got := host.ZoneAt(i, j)[0]; got != float64(i-j) {
					t.Errorf("ZoneAt(%d, %d) = %v, want %v", i, j, got, float64(i-j))
				}
			})
		})
	}
}

func TestDeviceRequestWithoutSupportPanics(t *testing.T) {
	// Pin a backend with zero devices to model a build without
	// accelerator support, then restore discovery.
	if err := backend.SetActive(backend.NewEmulator(0)); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := backend.SetActive(nil); err != nil {
			t.Fatal(err)
		}
	})

	if n := len(backend.Devices()); n != 0 {
		t.Fatalf("enumerated %d devices, want 0", n)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when requesting an unavailable device")
		}
	}()
	Zeros(1, geom.Range2(0, 4, 0, 4)).IntoDevice(backend.Device{Backend: backend.BackendEmulator, Index: 0})
}
