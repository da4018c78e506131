package host

import (
	"github.com/richinsley/gfxdriver"
	"github.com/richinsley/gfxdriver/camera"
)

// Camera is a started capture driver. A nil *Camera is valid and means the
// application runs without camera input.
type Camera struct {
	Driver camera.Driver
	Name   string

	frames uint64
}

// OpenCamera opens and starts the named backend. Any refusal is logged and
// yields nil.
func OpenCamera(name string, req camera.Request) *Camera {
	d, err := camera.Open(name, req)
	if err != nil {
		gfxdriver.Logger().Warn("no camera", "driver", name, "error", err)
		return nil
	}
	if err := d.Start(); err != nil {
		gfxdriver.Logger().Warn("no camera", "driver", name, "error", err)
		camera.Free(d)
		return nil
	}
	return &Camera{Driver: d, Name: name}
}

// Poll polls the driver once and counts delivered frames.
func (c *Camera) Poll(raw camera.RawFrameFunc, tex camera.TextureFrameFunc) bool {
	if c == nil {
		return false
	}
	if !c.Driver.Poll(raw, tex) {
		return false
	}
	c.frames++
	return true
}

// Frames returns the number of frames delivered so far.
func (c *Camera) Frames() uint64 {
	if c == nil {
		return 0
	}
	return c.frames
}

// Close stops and frees the driver.
func (c *Camera) Close() {
	if c == nil || c.Driver == nil {
		return
	}
	c.Driver.Stop()
	camera.Free(c.Driver)
	c.Driver = nil
}
