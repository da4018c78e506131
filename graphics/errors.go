package graphics

import "errors"

var (
	ErrUnknownDriver  = errors.New("graphics: unknown context driver")
	ErrAPIUnsupported = errors.New("graphics: rendering API not supported by backend")
	ErrAPINotBound    = errors.New("graphics: no rendering API bound")
	ErrDestroyed      = errors.New("graphics: driver already destroyed")
	ErrNotInitialized = errors.New("graphics: driver not initialized")
)
