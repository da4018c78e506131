// Package screencam is a capture backend that treats the desktop as a
// camera. Each poll grabs the capture rectangle from the screen, which
// makes it useful for testing camera consumers on machines without a video
// device.
package screencam

import (
	"image"

	"github.com/vova616/screenshot"

	"github.com/richinsley/gfxdriver"
	"github.com/richinsley/gfxdriver/camera"
)

// Name is the registry name of this backend.
const Name = "screen"

// Supported is the channel set this backend admits.
const Supported = camera.CapsRawFramebuffer

// DeviceName is the only device this backend lists.
const DeviceName = "screen"

var (
	screenRect  = screenshot.ScreenRect
	captureRect = screenshot.CaptureRect
)

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

// Driver grabs the screen on every poll.
type Driver struct {
	req     camera.Request
	rect    image.Rectangle
	started bool
}

// New gates req. The screen is not touched until Start.
func New(req camera.Request) (*Driver, error) {
	if err := camera.Check(Supported, req); err != nil {
		return nil, err
	}
	return &Driver{req: req}, nil
}

// captureArea anchors a width x height rectangle at the screen origin and
// clips it to the screen. A zero dimension takes the full screen extent.
func captureArea(screen image.Rectangle, width, height int) image.Rectangle {
	if width <= 0 {
		width = screen.Dx()
	}
	if height <= 0 {
		height = screen.Dy()
	}
	r := image.Rect(0, 0, width, height).Add(screen.Min)
	return r.Intersect(screen)
}

func (d *Driver) Start() error {
	screen, err := screenRect()
	if err != nil {
		return err
	}
	rect := captureArea(screen, d.req.Width, d.req.Height)
	if rect.Empty() {
		return camera.ErrUnsupported
	}
	d.rect = rect
	d.started = true
	gfxdriver.Logger().Info("camera capture started", "driver", Name, "rect", rect)
	return nil
}

func (d *Driver) Stop() {
	d.started = false
}

// Poll grabs the screen and delivers it as a raw BGRA frame.
func (d *Driver) Poll(raw camera.RawFrameFunc, _ camera.TextureFrameFunc) bool {
	if !d.started || raw == nil {
		return false
	}
	img, err := captureRect(d.rect)
	if err != nil {
		gfxdriver.Logger().Debug("screen grab failed", "driver", Name, "error", err)
		return false
	}
	f := camera.AcquireFrame(img.Rect.Dx(), img.Rect.Dy())
	defer camera.RecycleFrame(f)
	toBGRA(f, img)
	return f.Deliver(raw)
}

// toBGRA copies img into f, swapping red and blue.
func toBGRA(f *camera.Frame, img *image.RGBA) {
	for y := 0; y < f.Height; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+f.Width*4]
		dst := f.Pix[y*f.Pitch : y*f.Pitch+f.Width*4]
		for x := 0; x < len(src); x += 4 {
			dst[x+0] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x+0]
			dst[x+3] = src[x+3]
		}
	}
}

func (d *Driver) Close() {
	if d == nil {
		return
	}
	d.Stop()
}

// Devices lists the screen when it can be read.
func Devices() ([]string, error) {
	if r, err := screenRect(); err != nil || r.Empty() {
		return []string{}, nil
	}
	return []string{DeviceName}, nil
}
