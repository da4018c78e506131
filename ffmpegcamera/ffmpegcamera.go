// Package ffmpegcamera captures frames from a local video device through
// an ffmpeg child process. ffmpeg decodes the device into BGRA rawvideo on
// its stdout; a reader goroutine keeps the newest frame for Poll to pick up
// so Poll never waits on the device.
package ffmpegcamera

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/richinsley/gfxdriver"
	"github.com/richinsley/gfxdriver/camera"
)

// Name is the registry name of this backend.
const Name = "ffmpeg"

// Supported is the channel set this backend admits.
const Supported = camera.CapsRawFramebuffer

const (
	defaultWidth  = 640
	defaultHeight = 480
)

// Executable is the ffmpeg binary used when a request does not name one.
var Executable = "ffmpeg"

// stopDelay bounds how long Stop waits on the child after it is killed.
const stopDelay = 2 * time.Second

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

// Driver is one capture session.
type Driver struct {
	req           camera.Request
	width, height int

	cmd    *exec.Cmd
	stdout io.ReadCloser
	done   chan struct{}

	mu     sync.Mutex
	latest *camera.Frame
}

// New gates req. Nothing is started until Start.
func New(req camera.Request) (*Driver, error) {
	if err := camera.Check(Supported, req); err != nil {
		return nil, err
	}
	d := &Driver{req: req, width: req.Width, height: req.Height}
	if d.width <= 0 || d.height <= 0 {
		d.width, d.height = defaultWidth, defaultHeight
	}
	return d, nil
}

// deviceInput returns the ffmpeg input and demuxer options for a device on
// goos.
func deviceInput(goos, device string, width, height int) (string, ffmpeg.KwArgs, error) {
	args := ffmpeg.KwArgs{
		"video_size": fmt.Sprintf("%dx%d", width, height),
		"fflags":     "nobuffer",
	}
	switch goos {
	case "linux":
		args["f"] = "v4l2"
		if device == "" {
			device = "/dev/video0"
		}
	case "darwin":
		args["f"] = "avfoundation"
		args["framerate"] = "30"
		if device == "" {
			device = "0"
		}
	case "windows":
		args["f"] = "dshow"
		if device == "" {
			return "", nil, errors.New("dshow needs a device name")
		}
		device = "video=" + device
	default:
		return "", nil, fmt.Errorf("%w: %s", camera.ErrUnsupported, goos)
	}
	return device, args, nil
}

func (d *Driver) stream(goos string) (*ffmpeg.Stream, error) {
	input, inputArgs, err := deviceInput(goos, d.req.Device, d.width, d.height)
	if err != nil {
		return nil, err
	}
	s := ffmpeg.Input(input, inputArgs).Output("pipe:", ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "bgra",
		"s":       fmt.Sprintf("%dx%d", d.width, d.height),
	})
	path := d.req.Executable
	if path == "" {
		path = Executable
	}
	return s.SetFfmpegPath(path).Silent(true), nil
}

// Start launches ffmpeg. Calling Start on a running session is a no-op.
func (d *Driver) Start() error {
	if d.cmd != nil {
		return nil
	}
	s, err := d.stream(runtime.GOOS)
	if err != nil {
		return err
	}
	cmd := s.Compile()
	cmd.WaitDelay = stopDelay
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: start: %w", Name, err)
	}
	d.cmd = cmd
	d.stdout = stdout
	d.done = make(chan struct{})
	go d.readFrames(stdout)
	gfxdriver.Logger().Info("camera capture started", "driver", Name, "args", cmd.Args)
	return nil
}

// readFrames copies whole frames off r until it fails, replacing the
// pending frame each time.
func (d *Driver) readFrames(r io.Reader) {
	defer close(d.done)
	for {
		f := camera.AcquireFrame(d.width, d.height)
		if _, err := io.ReadFull(r, f.Pix); err != nil {
			camera.RecycleFrame(f)
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, os.ErrClosed) {
				gfxdriver.Logger().Debug("camera stream ended", "driver", Name, "error", err)
			}
			return
		}
		d.mu.Lock()
		old := d.latest
		d.latest = f
		d.mu.Unlock()
		camera.RecycleFrame(old)
	}
}

// Poll hands over the newest frame not yet delivered.
func (d *Driver) Poll(raw camera.RawFrameFunc, _ camera.TextureFrameFunc) bool {
	if raw == nil {
		return false
	}
	d.mu.Lock()
	f := d.latest
	d.latest = nil
	d.mu.Unlock()
	if f == nil {
		return false
	}
	defer camera.RecycleFrame(f)
	return f.Deliver(raw)
}

// Stop kills ffmpeg and drops any pending frame. The pipe is closed on our
// side too, since a wrapper's children can hold its write end open.
func (d *Driver) Stop() {
	if d.cmd == nil {
		return
	}
	if d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	d.stdout.Close()
	<-d.done
	d.cmd.Wait()
	d.cmd = nil
	d.stdout = nil

	d.mu.Lock()
	camera.RecycleFrame(d.latest)
	d.latest = nil
	d.mu.Unlock()
	gfxdriver.Logger().Info("camera capture stopped", "driver", Name)
}

func (d *Driver) Close() {
	if d == nil {
		return
	}
	d.Stop()
}
