package gogpu

import (
	"github.com/gridflow/patch/backend"
)

// init registers the gogpu backend on package import.
// This enables automatic selection when the registry resolves the
// process-wide compute backend.
//
// To use GPU devices, import this package:
//
//	import _ "github.com/gridflow/patch/backend/gogpu"
//
// The gogpu backend requires a GPU backend to be registered with gogpu.
// Import one of the following to enable GPU support:
//
//	import _ "github.com/gogpu/gogpu/gpu/backend/rust"   // Rust (wgpu-native)
//	import _ "github.com/gogpu/gogpu/gpu/backend/native" // Pure Go
func init() {
	backend.Register(backend.BackendGoGPU, func() backend.Compute {
		return NewBackend()
	})
}
