// Package nullcamera is the capture backend for platforms without camera
// support. It accepts raw framebuffer requests and then refuses to start,
// which hosts treat as having no camera.
package nullcamera

import (
	"github.com/richinsley/gfxdriver"
	"github.com/richinsley/gfxdriver/camera"
)

// Name is the registry name of this backend.
const Name = "null"

// Supported is the channel set this backend admits.
const Supported = camera.CapsRawFramebuffer

func init() {
	camera.Register(camera.Backend{
		Name:      Name,
		Supported: Supported,
		New: func(req camera.Request) (camera.Driver, error) {
			d, err := New(req)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
		Devices: Devices,
	})
}

// Driver never captures.
type Driver struct {
	req camera.Request
}

// New gates req and returns a driver that will refuse to start.
func New(req camera.Request) (*Driver, error) {
	if err := camera.Check(Supported, req); err != nil {
		return nil, err
	}
	return &Driver{req: req}, nil
}

func (d *Driver) Start() error {
	gfxdriver.Logger().Debug("camera start refused", "driver", Name)
	return camera.ErrUnsupported
}

func (d *Driver) Stop() {}

func (d *Driver) Poll(camera.RawFrameFunc, camera.TextureFrameFunc) bool { return false }

func (d *Driver) Close() {}

// Devices reports no devices.
func Devices() ([]string, error) { return []string{}, nil }
