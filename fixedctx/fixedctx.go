// Package fixedctx is an EGL context backend for displays with a single,
// fixed video mode, such as handheld consoles and embedded panels. Whatever
// size the host asks for, the drawable is always the panel's native size.
package fixedctx

import (
	"fmt"
	"unsafe"

	"github.com/richinsley/gfxdriver"
	"github.com/richinsley/gfxdriver/egl"
	"github.com/richinsley/gfxdriver/graphics"
)

// Name is the registry name of this backend.
const Name = "egl-fixed"

// Mode is a display mode.
type Mode struct {
	Width       int
	Height      int
	RefreshRate float32
}

// DefaultMode is the 960x544 60Hz panel this backend was first written for.
var DefaultMode = Mode{Width: 960, Height: 544, RefreshRate: 60}

// Config selects the panel and the native handles the surface binds to.
type Config struct {
	Mode          Mode
	NativeDisplay egl.NativeDisplay
	NativeWindow  egl.NativeWindow
}

// Candidate EGL configs, best first.
var configAttribs = [][]int32{
	{
		egl.RedSize, 8, egl.GreenSize, 8, egl.BlueSize, 8, egl.AlphaSize, 8,
		egl.DepthSize, 32, egl.StencilSize, 8,
		egl.SurfaceType, egl.WindowBit | egl.PbufferBit,
		egl.RenderableType, egl.OpenGLES2Bit,
	},
	{
		egl.RedSize, 8, egl.GreenSize, 8, egl.BlueSize, 8, egl.AlphaSize, 8,
		egl.DepthSize, 24, egl.StencilSize, 8,
		egl.SurfaceType, egl.WindowBit | egl.PbufferBit,
		egl.RenderableType, egl.OpenGLES2Bit,
	},
}

func init() {
	graphics.Register(Name, func(host graphics.Host) (graphics.ContextDriver, error) {
		lib, err := egl.Load()
		if err != nil {
			return nil, err
		}
		d, err := New(lib, Config{
			NativeDisplay: egl.NativeDisplay(host.NativeDisplay),
			NativeWindow:  egl.NativeWindow(host.NativeWindow),
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}

// Driver is the fixed-mode context driver.
type Driver struct {
	egl   *egl.Handle
	cfg   Config
	state graphics.State

	api          graphics.API
	major, minor int

	width, height int
	refreshRate   float32
	resize        bool
}

var _ graphics.ContextDriver = (*Driver)(nil)

// New connects to the EGL display and picks a config. No window is needed
// yet. On failure nothing is left open.
func New(lib egl.Library, cfg Config) (*Driver, error) {
	if cfg.Mode == (Mode{}) {
		cfg.Mode = DefaultMode
	}
	d := &Driver{
		egl: egl.NewHandle(lib),
		cfg: cfg,
		api: graphics.APIOpenGLES,
	}
	if err := d.egl.Init(cfg.NativeDisplay, configAttribs...); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	d.state = graphics.StateInitialized
	return d, nil
}

func (d *Driver) Name() string { return Name }

// State returns the lifecycle stage.
func (d *Driver) State() graphics.State { return d.state }

// API always reports OpenGL ES, the only family this backend drives.
func (d *Driver) API() graphics.API { return graphics.APIOpenGLES }

// BindAPI accepts OpenGL ES only.
func (d *Driver) BindAPI(api graphics.API, major, minor int) error {
	if !d.state.CanBind() {
		return d.stateErr()
	}
	if api != graphics.APIOpenGLES {
		gfxdriver.Logger().Warn("api refused", "driver", Name, "api", api)
		return fmt.Errorf("%w: %s", graphics.ErrAPIUnsupported, api)
	}
	if err := d.egl.BindAPI(egl.OpenGLESAPI); err != nil {
		return fmt.Errorf("%w: %v", graphics.ErrAPIUnsupported, err)
	}
	d.api, d.major, d.minor = api, major, minor
	if d.state == graphics.StateInitialized {
		d.state = graphics.StateAPIBound
	}
	return nil
}

// stateErr maps a refused state to its error. A zero-value driver was
// never built by its constructor and reports ErrNotInitialized.
func (d *Driver) stateErr() error {
	switch d.state {
	case graphics.StateDestroyed:
		return graphics.ErrDestroyed
	case graphics.StateUninitialized:
		return graphics.ErrNotInitialized
	}
	return graphics.ErrAPINotBound
}

// SetVideoMode creates the context and the window surface. The requested
// size is ignored: the panel mode always wins.
func (d *Driver) SetVideoMode(width, height int, fullscreen bool) (err error) {
	if d.state != graphics.StateAPIBound && d.state != graphics.StateActive {
		return d.stateErr()
	}
	if d.state == graphics.StateActive {
		d.egl.DestroyContext()
		d.width, d.height = 0, 0
		d.state = graphics.StateAPIBound
	}

	major := d.major
	if major < 2 {
		major = 2
	}
	if err = d.egl.CreateContext([]int32{egl.ContextClientVersion, int32(major)}); err != nil {
		return fmt.Errorf("%s: create context: %w", Name, err)
	}
	defer func() {
		if err != nil {
			d.egl.DestroyContext()
		}
	}()
	if err = d.egl.CreateWindowSurface(d.cfg.NativeWindow); err != nil {
		return fmt.Errorf("%s: create surface: %w", Name, err)
	}

	d.width, d.height = d.cfg.Mode.Width, d.cfg.Mode.Height
	d.refreshRate = d.cfg.Mode.RefreshRate
	d.state = graphics.StateActive
	gfxdriver.Logger().Info("video mode set", "driver", Name,
		"requested_width", width, "requested_height", height,
		"width", d.width, "height", d.height, "refresh", d.refreshRate)
	return nil
}

func (d *Driver) SwapInterval(interval int) {
	if d.state == graphics.StateDestroyed {
		return
	}
	d.egl.SetSwapInterval(interval)
}

func (d *Driver) SwapBuffers() {
	if d.state != graphics.StateActive {
		return
	}
	if err := d.egl.SwapBuffers(); err != nil {
		gfxdriver.Logger().Error("swap failed", "driver", Name, "error", err)
	}
}

// CheckWindow compares the panel size against the cached size. The panel
// never asks to quit.
func (d *Driver) CheckWindow() graphics.WindowStatus {
	st := graphics.WindowStatus{Width: d.width, Height: d.height}
	if d.state != graphics.StateActive {
		return st
	}
	if w, h := d.cfg.Mode.Width, d.cfg.Mode.Height; w != d.width || h != d.height {
		d.width, d.height = w, h
		d.resize = true
	}
	st.Resize, d.resize = d.resize, false
	st.Width, st.Height = d.width, d.height
	return st
}

func (d *Driver) VideoSize() (int, int) { return d.width, d.height }

func (d *Driver) RefreshRate() float32 { return d.refreshRate }

func (d *Driver) BindHWRender(enable bool) {
	if d.state == graphics.StateUninitialized || d.state == graphics.StateDestroyed {
		return
	}
	d.egl.BindHWRender(enable)
}

func (d *Driver) Flags() graphics.Flags { return graphics.FlagShadersGLSL }

func (d *Driver) SetFlags(flags graphics.Flags) {
	gfxdriver.Logger().Debug("set flags ignored", "driver", Name, "flags", flags)
}

// The panel is always focused, has no screensaver and no cursor.
func (d *Driver) HasFocus() bool                { return true }
func (d *Driver) SuppressScreensaver(bool) bool { return false }
func (d *Driver) ShowMouse(bool)                {}
func (d *Driver) HasWindowed() bool             { return false }

func (d *Driver) ProcAddress(name string) unsafe.Pointer {
	return d.egl.ProcAddress(name)
}

// Destroy releases surface, context and display. Safe on nil and when
// called again.
func (d *Driver) Destroy() {
	if d == nil || d.state == graphics.StateDestroyed {
		return
	}
	d.egl.Terminate()
	d.resize = false
	d.state = graphics.StateDestroyed
	gfxdriver.Logger().Info("context driver destroyed", "driver", Name)
}
