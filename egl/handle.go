package egl

import (
	"errors"
	"unsafe"

	"github.com/richinsley/gfxdriver"
)

var (
	errNoDisplay     = errors.New("egl: display not initialized")
	errNoContext     = errors.New("egl: no context")
	errNoSurface     = errors.New("egl: no surface")
	errContextExists = errors.New("egl: context already created")
	errSurfaceExists = errors.New("egl: surface already created")
	errDisplayExists = errors.New("egl: display already initialized")
	errNoConfigMatch = errors.New("egl: no config matches")
	errNoConfigGiven = errors.New("egl: no config attributes given")
)

// Handle owns one EGL display connection, the context created on it, an
// optional shared context for hardware rendering, and the surface the context
// draws into. Resources are released in reverse order of acquisition:
// surface, hardware context, context, display.
//
// A surface only exists while a context exists.
type Handle struct {
	lib       Library
	display   Display
	config    Config
	context   Context
	hwContext Context
	surface   Surface

	major, minor int32
	ctxAttribs   []int32
	interval     int32
	useHW        bool
}

// NewHandle returns an empty handle bound to lib.
func NewHandle(lib Library) *Handle {
	return &Handle{lib: lib, interval: 1}
}

// Init connects to the native display, initializes EGL on it and picks the
// first config matching one of the candidate attribute lists. On failure the
// display is terminated before returning.
func (h *Handle) Init(native NativeDisplay, candidates ...[]int32) error {
	if h.display != NoDisplay {
		return errDisplayExists
	}
	if len(candidates) == 0 {
		return errNoConfigGiven
	}
	log := gfxdriver.Logger()

	dpy := h.lib.GetDisplay(native)
	if dpy == NoDisplay {
		err := newError(h.lib, "eglGetDisplay")
		log.Error("egl display unavailable", "error", err)
		return err
	}
	major, minor, ok := h.lib.Initialize(dpy)
	if !ok {
		err := newError(h.lib, "eglInitialize")
		log.Error("egl initialize failed", "error", err)
		return err
	}

	var cfg Config
	for i, attribs := range candidates {
		if c, ok := h.lib.ChooseConfig(dpy, attribs); ok {
			cfg = c
			break
		}
		log.Debug("egl config candidate rejected", "candidate", i, "code", ErrorName(h.lib.GetError()))
	}
	if cfg == 0 {
		h.lib.Terminate(dpy)
		log.Error("egl config selection failed", "candidates", len(candidates))
		return errNoConfigMatch
	}

	h.display, h.config = dpy, cfg
	h.major, h.minor = major, minor
	log.Info("egl initialized", "version_major", major, "version_minor", minor)
	return nil
}

// Version returns the EGL version reported by eglInitialize.
func (h *Handle) Version() (major, minor int) {
	return int(h.major), int(h.minor)
}

// BindAPI selects the client API for subsequent context creation.
func (h *Handle) BindAPI(api uint32) error {
	if !h.lib.BindAPI(api) {
		err := newError(h.lib, "eglBindAPI")
		gfxdriver.Logger().Error("egl bind api failed", "api", api, "error", err)
		return err
	}
	return nil
}

// CreateContext creates the rendering context, and the shared hardware
// render context when hardware rendering is enabled. Nothing is left behind
// on failure.
func (h *Handle) CreateContext(attribs []int32) error {
	if h.display == NoDisplay {
		return errNoDisplay
	}
	if h.context != NoContext {
		return errContextExists
	}
	ctx := h.lib.CreateContext(h.display, h.config, NoContext, attribs)
	if ctx == NoContext {
		err := newError(h.lib, "eglCreateContext")
		gfxdriver.Logger().Error("egl context creation failed", "error", err)
		return err
	}
	if h.useHW {
		hw := h.lib.CreateContext(h.display, h.config, ctx, attribs)
		if hw == NoContext {
			err := newError(h.lib, "eglCreateContext(shared)")
			h.lib.DestroyContext(h.display, ctx)
			gfxdriver.Logger().Error("egl hw render context creation failed", "error", err)
			return err
		}
		h.hwContext = hw
	}
	h.context = ctx
	h.ctxAttribs = append([]int32(nil), attribs...)
	return nil
}

// CreateWindowSurface creates an on-screen surface for win and makes the
// context current on it.
func (h *Handle) CreateWindowSurface(win NativeWindow) error {
	if err := h.canCreateSurface(); err != nil {
		return err
	}
	surf := h.lib.CreateWindowSurface(h.display, h.config, win, nil)
	if surf == NoSurface {
		err := newError(h.lib, "eglCreateWindowSurface")
		gfxdriver.Logger().Error("egl window surface creation failed", "error", err)
		return err
	}
	return h.attachSurface(surf)
}

// CreatePbufferSurface creates an off-screen surface of the given size and
// makes the context current on it.
func (h *Handle) CreatePbufferSurface(width, height int) error {
	if err := h.canCreateSurface(); err != nil {
		return err
	}
	surf := h.lib.CreatePbufferSurface(h.display, h.config, []int32{
		Width, int32(width),
		Height, int32(height),
	})
	if surf == NoSurface {
		err := newError(h.lib, "eglCreatePbufferSurface")
		gfxdriver.Logger().Error("egl pbuffer surface creation failed", "error", err)
		return err
	}
	return h.attachSurface(surf)
}

func (h *Handle) canCreateSurface() error {
	if h.context == NoContext {
		return errNoContext
	}
	if h.surface != NoSurface {
		return errSurfaceExists
	}
	return nil
}

func (h *Handle) attachSurface(surf Surface) error {
	h.surface = surf
	if err := h.makeCurrent(); err != nil {
		h.DestroySurface()
		return err
	}
	h.applySwapInterval()
	return nil
}

func (h *Handle) currentContext() Context {
	if h.useHW && h.hwContext != NoContext {
		return h.hwContext
	}
	return h.context
}

func (h *Handle) makeCurrent() error {
	if !h.lib.MakeCurrent(h.display, h.surface, h.surface, h.currentContext()) {
		err := newError(h.lib, "eglMakeCurrent")
		gfxdriver.Logger().Error("egl make current failed", "error", err)
		return err
	}
	return nil
}

// QuerySize returns the current size of the surface as reported by EGL.
func (h *Handle) QuerySize() (width, height int, err error) {
	if h.surface == NoSurface {
		return 0, 0, errNoSurface
	}
	w, ok := h.lib.QuerySurface(h.display, h.surface, Width)
	if !ok {
		return 0, 0, newError(h.lib, "eglQuerySurface(EGL_WIDTH)")
	}
	hh, ok := h.lib.QuerySurface(h.display, h.surface, Height)
	if !ok {
		return 0, 0, newError(h.lib, "eglQuerySurface(EGL_HEIGHT)")
	}
	return int(w), int(hh), nil
}

// SwapBuffers presents the surface.
func (h *Handle) SwapBuffers() error {
	if h.surface == NoSurface {
		return errNoSurface
	}
	if !h.lib.SwapBuffers(h.display, h.surface) {
		return newError(h.lib, "eglSwapBuffers")
	}
	return nil
}

// SetSwapInterval records the interval and applies it if a surface is
// current. The stored value is re-applied whenever a surface is created.
func (h *Handle) SetSwapInterval(interval int) {
	h.interval = int32(interval)
	h.applySwapInterval()
}

// SwapIntervalValue returns the stored swap interval.
func (h *Handle) SwapIntervalValue() int { return int(h.interval) }

func (h *Handle) applySwapInterval() {
	if h.display == NoDisplay || h.context == NoContext || h.surface == NoSurface {
		return
	}
	if !h.lib.SwapInterval(h.display, h.interval) {
		gfxdriver.Logger().Warn("egl swap interval rejected", "interval", h.interval, "code", ErrorName(h.lib.GetError()))
	}
}

// BindHWRender switches the current context between the main context and
// the shared hardware render context, creating the latter on first use.
// Before a context exists only the preference is recorded.
func (h *Handle) BindHWRender(enable bool) {
	h.useHW = enable
	if h.display == NoDisplay || h.context == NoContext {
		return
	}
	if enable && h.hwContext == NoContext {
		hw := h.lib.CreateContext(h.display, h.config, h.context, h.ctxAttribs)
		if hw == NoContext {
			gfxdriver.Logger().Error("egl hw render context creation failed", "error", newError(h.lib, "eglCreateContext(shared)"))
			h.useHW = false
			return
		}
		h.hwContext = hw
	}
	if h.surface == NoSurface {
		return
	}
	if err := h.makeCurrent(); err != nil && enable {
		h.useHW = false
		h.makeCurrent()
	}
}

// HWRender reports whether the hardware render context is selected.
func (h *Handle) HWRender() bool { return h.useHW }

// ProcAddress resolves an entry point of the bound client API.
func (h *Handle) ProcAddress(name string) unsafe.Pointer {
	return h.lib.GetProcAddress(name)
}

func (h *Handle) Display() Display { return h.display }
func (h *Handle) Context() Context { return h.context }
func (h *Handle) Surface() Surface { return h.surface }

// DestroySurface releases the surface, unbinding it first. No-op without one.
func (h *Handle) DestroySurface() {
	if h.surface == NoSurface {
		return
	}
	h.lib.MakeCurrent(h.display, NoSurface, NoSurface, NoContext)
	h.lib.DestroySurface(h.display, h.surface)
	h.surface = NoSurface
}

// DestroyContext releases the surface, the hardware render context and the
// context, in that order.
func (h *Handle) DestroyContext() {
	h.DestroySurface()
	if h.display == NoDisplay {
		return
	}
	if h.hwContext != NoContext {
		h.lib.DestroyContext(h.display, h.hwContext)
		h.hwContext = NoContext
	}
	if h.context != NoContext {
		h.lib.MakeCurrent(h.display, NoSurface, NoSurface, NoContext)
		h.lib.DestroyContext(h.display, h.context)
		h.context = NoContext
	}
}

// Terminate releases everything the handle owns, ending with the display
// connection. Safe to call repeatedly and on a nil handle.
func (h *Handle) Terminate() {
	if h == nil {
		return
	}
	h.DestroyContext()
	if h.display != NoDisplay {
		h.lib.Terminate(h.display)
		h.display = NoDisplay
		h.config = 0
	}
}
