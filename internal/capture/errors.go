package capture

import "errors"

// ErrDeviceUnavailable indicates no usable audio device or recorder binary
// was found when a session was requested.
var ErrDeviceUnavailable = errors.New("audio device unavailable")

// ErrPermissionDenied indicates the audio device exists but cannot be
// accessed.
var ErrPermissionDenied = errors.New("audio device access denied")

// ErrBusy indicates a toggle arrived while a session transition was already
// in flight.
var ErrBusy = errors.New("capture session busy")
