// Package patch implements the patch memory subsystem of a structured-
// mesh finite-volume solver: a rectangular, field-indexed array whose
// backing storage lives in host memory or on a compute accelerator, and
// a geometry-aware copy that moves only the overlapping region between
// two patches regardless of where each resides.
//
// A patch is built over an index space (zero-filled or sampled from a
// function), optionally migrated between residencies, and exchanged with
// neighboring patches via CopyInto, the mechanism that refreshes guard
// regions between sub-domains on every simulation sub-step. Accelerator
// devices are enumerated at runtime through the backend package; a
// process without devices simply has none, there is no build-time gate.
//
// The package performs no internal synchronization: the surrounding
// solver loop serializes sub-stages so no two operations mutate the same
// patch concurrently. Programmer faults (out-of-bounds extraction,
// mismatched field counts, an explicit copy with no overlap) and
// allocation failure panic; nothing in this package retries.
package patch
