package camera

import "sync"

// Frame is a raw BGRA image in host memory.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
	Pitch  int
}

// Deliver hands f to raw. It returns false when there is nothing to hand.
func (f *Frame) Deliver(raw RawFrameFunc) bool {
	if f == nil || raw == nil || len(f.Pix) == 0 {
		return false
	}
	raw(f.Pix, f.Width, f.Height, f.Pitch)
	return true
}

// Capture backends produce a frame per poll at full resolution, so buffers
// are recycled instead of leaving each one to the collector.
var framePool sync.Pool // stores *Frame

// AcquireFrame returns a frame sized to width x height with a tight pitch.
// Its contents are undefined.
func AcquireFrame(width, height int) *Frame {
	if width <= 0 || height <= 0 {
		return &Frame{Width: width, Height: height}
	}
	needed := width * height * 4
	var f *Frame
	if v := framePool.Get(); v != nil {
		f = v.(*Frame)
	}
	if f == nil || cap(f.Pix) < needed {
		f = &Frame{Pix: make([]byte, needed)}
	}
	f.Pix = f.Pix[:needed]
	f.Width, f.Height, f.Pitch = width, height, width*4
	return f
}

// RecycleFrame returns f to the pool. f must not be used afterwards.
func RecycleFrame(f *Frame) {
	if f == nil || f.Pix == nil {
		return
	}
	framePool.Put(f)
}
