package backend

import "errors"

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrUnknownDevice is returned when a device does not belong to the backend.
	ErrUnknownDevice = errors.New("backend: unknown device")

	// ErrNoDevices is returned when a backend initialized but found no devices.
	ErrNoDevices = errors.New("backend: no devices")
)
