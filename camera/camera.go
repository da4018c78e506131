// Package camera defines the capture driver contract and the registry the
// host picks backends from.
//
// A capture driver is opened with a capability request. The request is
// checked against what the backend can feed before anything is allocated;
// an unsatisfiable request costs nothing. Once started, the host polls the
// driver once per frame and receives at most one frame per poll, on exactly
// one of the two channels.
package camera

// RawFrameFunc receives a frame in host memory. pix holds height rows of
// pitch bytes, BGRA ordered. pix is only valid for the duration of the call.
type RawFrameFunc func(pix []byte, width, height, pitch int)

// TextureFrameFunc receives a frame already uploaded to a graphics texture,
// with the 3x3 affine transform to apply when sampling it.
type TextureFrameFunc func(texture, target uint32, affine [9]float32)

// Request is what the host asks of a backend.
type Request struct {
	Device string
	Caps   Caps
	Width  int
	Height int
	// Executable overrides the capture program for backends that drive
	// an external tool.
	Executable string
}

// Driver is one open capture session. Calls must come from a single
// goroutine.
type Driver interface {
	// Start begins capture. A backend may always refuse; the host then
	// carries on without camera input.
	Start() error
	Stop()
	// Poll delivers at most one frame through raw or tex and reports
	// whether it did. It never blocks and never calls both.
	Poll(raw RawFrameFunc, tex TextureFrameFunc) bool
	// Close stops capture and releases the session.
	Close()
}

// Free closes d. Safe on a nil interface; backends make Close safe on a
// nil receiver, which covers typed nils.
func Free(d Driver) {
	if d == nil {
		return
	}
	d.Close()
}
