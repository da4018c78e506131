// Package headless is an EGL context backend that renders into an
// off-screen pbuffer. It needs no window system, which makes it the backend
// of choice for recording, CI and GPU containers.
package headless

import (
	"fmt"
	"unsafe"

	"github.com/richinsley/gfxdriver"
	"github.com/richinsley/gfxdriver/egl"
	"github.com/richinsley/gfxdriver/graphics"
)

// Name is the registry name of this backend.
const Name = "egl-headless"

const defaultRefreshRate = 60

// Config tunes the backend. The zero value uses the default display and a
// nominal 60Hz refresh rate.
type Config struct {
	NativeDisplay egl.NativeDisplay
	RefreshRate   float32
}

// Candidate configs, widest API coverage first.
var configAttribs = [][]int32{
	{
		egl.SurfaceType, egl.PbufferBit,
		egl.RedSize, 8, egl.GreenSize, 8, egl.BlueSize, 8, egl.AlphaSize, 8,
		egl.DepthSize, 24,
		egl.RenderableType, egl.OpenGLBit | egl.OpenGLES3Bit,
	},
	{
		egl.SurfaceType, egl.PbufferBit,
		egl.RedSize, 8, egl.GreenSize, 8, egl.BlueSize, 8, egl.AlphaSize, 8,
		egl.DepthSize, 24,
		egl.RenderableType, egl.OpenGLES3Bit,
	},
	{
		egl.SurfaceType, egl.PbufferBit,
		egl.RedSize, 8, egl.GreenSize, 8, egl.BlueSize, 8,
		egl.RenderableType, egl.OpenGLES2Bit,
	},
}

func init() {
	graphics.Register(Name, func(host graphics.Host) (graphics.ContextDriver, error) {
		lib, err := egl.Load()
		if err != nil {
			return nil, err
		}
		h, err := NewHeadless(lib, Config{NativeDisplay: egl.NativeDisplay(host.NativeDisplay)})
		if err != nil {
			return nil, err
		}
		return h, nil
	})
}

// Headless is the pbuffer context driver.
type Headless struct {
	egl   *egl.Handle
	cfg   Config
	state graphics.State

	api          graphics.API
	major, minor int
	flags        graphics.Flags

	width, height int
	refreshRate   float32
}

var _ graphics.ContextDriver = (*Headless)(nil)

// NewHeadless connects to the display and picks a pbuffer capable config.
func NewHeadless(lib egl.Library, cfg Config) (*Headless, error) {
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = defaultRefreshRate
	}
	h := &Headless{
		egl:   egl.NewHandle(lib),
		cfg:   cfg,
		flags: graphics.FlagShadersGLSL,
	}
	if err := h.egl.Init(cfg.NativeDisplay, configAttribs...); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	h.state = graphics.StateInitialized
	return h, nil
}

func (h *Headless) Name() string { return Name }

// State returns the lifecycle stage.
func (h *Headless) State() graphics.State { return h.state }

// API returns the bound family, OpenGL ES when nothing is bound yet.
func (h *Headless) API() graphics.API {
	if h.api == graphics.APINone {
		return graphics.APIOpenGLES
	}
	return h.api
}

// BindAPI accepts desktop OpenGL and OpenGL ES 2 or 3.
func (h *Headless) BindAPI(api graphics.API, major, minor int) error {
	if !h.state.CanBind() {
		return h.stateErr()
	}
	var eglAPI uint32
	switch api {
	case graphics.APIOpenGL:
		eglAPI = egl.OpenGLAPI
	case graphics.APIOpenGLES:
		if major > 3 {
			return fmt.Errorf("%w: %s %d.%d", graphics.ErrAPIUnsupported, api, major, minor)
		}
		eglAPI = egl.OpenGLESAPI
	default:
		return fmt.Errorf("%w: %s", graphics.ErrAPIUnsupported, api)
	}
	if err := h.egl.BindAPI(eglAPI); err != nil {
		return fmt.Errorf("%w: %v", graphics.ErrAPIUnsupported, err)
	}
	h.api, h.major, h.minor = api, major, minor
	if h.state == graphics.StateInitialized {
		h.state = graphics.StateAPIBound
	}
	return nil
}

// stateErr maps a refused state to its error. A zero-value driver was
// never built by its constructor and reports ErrNotInitialized.
func (h *Headless) stateErr() error {
	switch h.state {
	case graphics.StateDestroyed:
		return graphics.ErrDestroyed
	case graphics.StateUninitialized:
		return graphics.ErrNotInitialized
	}
	return graphics.ErrAPINotBound
}

func (h *Headless) contextAttribs() []int32 {
	if h.api == graphics.APIOpenGLES {
		major := h.major
		if major < 2 {
			major = 3
		}
		return []int32{egl.ContextClientVersion, int32(major)}
	}
	if h.major == 0 {
		return nil
	}
	return []int32{
		egl.ContextMajorVersion, int32(h.major),
		egl.ContextMinorVersion, int32(h.minor),
	}
}

// SetVideoMode creates a context and a pbuffer of the requested size.
// Fullscreen has no meaning off-screen and is ignored.
func (h *Headless) SetVideoMode(width, height int, fullscreen bool) (err error) {
	if h.state != graphics.StateAPIBound && h.state != graphics.StateActive {
		return h.stateErr()
	}
	if h.state == graphics.StateActive {
		h.egl.DestroyContext()
		h.width, h.height = 0, 0
		h.state = graphics.StateAPIBound
	}
	width, height = max(width, 1), max(height, 1)

	if err = h.egl.CreateContext(h.contextAttribs()); err != nil {
		return fmt.Errorf("%s: create context: %w", Name, err)
	}
	defer func() {
		if err != nil {
			h.egl.DestroyContext()
		}
	}()
	if err = h.egl.CreatePbufferSurface(width, height); err != nil {
		return fmt.Errorf("%s: create pbuffer: %w", Name, err)
	}

	h.width, h.height = width, height
	h.refreshRate = h.cfg.RefreshRate
	h.state = graphics.StateActive
	gfxdriver.Logger().Info("video mode set", "driver", Name, "api", h.api, "width", width, "height", height)
	return nil
}

func (h *Headless) SwapInterval(interval int) {
	if h.state == graphics.StateDestroyed {
		return
	}
	h.egl.SetSwapInterval(interval)
}

func (h *Headless) SwapBuffers() {
	if h.state != graphics.StateActive {
		return
	}
	if err := h.egl.SwapBuffers(); err != nil {
		gfxdriver.Logger().Error("swap failed", "driver", Name, "error", err)
	}
}

// CheckWindow reads the pbuffer size back from EGL and reports a resize
// once per change.
func (h *Headless) CheckWindow() graphics.WindowStatus {
	st := graphics.WindowStatus{Width: h.width, Height: h.height}
	if h.state != graphics.StateActive {
		return st
	}
	w, hh, err := h.egl.QuerySize()
	if err != nil {
		gfxdriver.Logger().Debug("surface size query failed", "driver", Name, "error", err)
		return st
	}
	if w != h.width || hh != h.height {
		h.width, h.height = w, hh
		st.Resize = true
		st.Width, st.Height = w, hh
	}
	return st
}

func (h *Headless) VideoSize() (int, int) { return h.width, h.height }

func (h *Headless) RefreshRate() float32 { return h.refreshRate }

func (h *Headless) BindHWRender(enable bool) {
	if h.state == graphics.StateUninitialized || h.state == graphics.StateDestroyed {
		return
	}
	h.egl.BindHWRender(enable)
}

func (h *Headless) Flags() graphics.Flags { return h.flags }

func (h *Headless) SetFlags(flags graphics.Flags) { h.flags = flags }

func (h *Headless) HasFocus() bool                { return false }
func (h *Headless) SuppressScreensaver(bool) bool { return false }
func (h *Headless) ShowMouse(bool)                {}
func (h *Headless) HasWindowed() bool             { return false }

func (h *Headless) ProcAddress(name string) unsafe.Pointer {
	return h.egl.ProcAddress(name)
}

// Destroy releases the pbuffer, context and display. Safe on nil and when
// called again.
func (h *Headless) Destroy() {
	if h == nil || h.state == graphics.StateDestroyed {
		return
	}
	h.egl.Terminate()
	h.state = graphics.StateDestroyed
	gfxdriver.Logger().Info("context driver destroyed", "driver", Name)
}
