// Package backend provides the pluggable compute-capability layer the
// patch package allocates device storage through.
//
// A compute backend enumerates accelerator devices and implements the
// transfer primitives the overlap copy relies on: allocation, linear
// host/device copies, and a same-device strided block copy. Backends are
// registered at runtime and selected by priority; there is no build-time
// gate. A process without accelerator hardware simply enumerates zero
// devices (or falls back to the software emulator when that is
// registered), so one binary behaves correctly everywhere.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The emulator backend is automatically registered on import. To enable
// real GPU devices, import the gogpu backend:
//
//	import _ "github.com/gridflow/patch/backend/gogpu"
//
// # Backend Selection
//
// The patch layer uses the process-wide active backend:
//
//	for _, d := range backend.Devices() {
//		// d is usable with patch.ToDevice / patch.On
//	}
//
// Use SetActive to pin a specific backend, e.g. an emulator with a
// chosen device count:
//
//	if err := backend.SetActive(backend.NewEmulator(4)); err != nil {
//		log.Fatal(err)
//	}
//
// # Available Backends
//
// - "emulator": software devices backed by host memory (always available)
// - "gogpu": GPU devices via gogpu/gogpu (import the subpackage)
package backend
