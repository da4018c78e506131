//go:build !linux

package egl

// Load reports ErrUnsupported: the EGL backends are only wired up on linux.
func Load() (Library, error) {
	return nil, ErrUnsupported
}
