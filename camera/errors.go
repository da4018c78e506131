package camera

import "errors"

var (
	ErrCapsUnsupported = errors.New("camera: requested capabilities not supported by backend")
	ErrUnknownDriver   = errors.New("camera: unknown capture driver")
	ErrUnsupported     = errors.New("camera: capture not supported on this platform")
)
