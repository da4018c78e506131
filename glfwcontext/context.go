// Package glfwcontext is a windowed context backend built on GLFW. GLFW
// must be driven from the main OS thread; executables using this backend
// lock it in an init function.
package glfwcontext

import (
	"fmt"
	"unsafe"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/gfxdriver"
	"github.com/richinsley/gfxdriver/graphics"
)

// Name is the registry name of this backend.
const Name = "glfw"

const (
	defaultWidth       = 640
	defaultHeight      = 480
	defaultRefreshRate = 60
)

// window is the part of *glfw.Window the driver uses.
type window interface {
	MakeContextCurrent()
	SwapBuffers()
	ShouldClose() bool
	SetShouldClose(bool)
	GetFramebufferSize() (int, int)
	GetSize() (int, int)
	SetSize(int, int)
	GetAttrib(glfw.Hint) int
	SetInputMode(glfw.InputMode, int)
	Destroy()
}

type videoMode struct {
	width, height, refreshRate int
}

// GLFW entry points, replaced in tests.
var (
	glfwInit      = glfw.Init
	glfwTerminate = glfw.Terminate
	pollEvents    = glfw.PollEvents
	resetHints    = glfw.DefaultWindowHints
	windowHint    = glfw.WindowHint
	swapInterval  = glfw.SwapInterval
	procAddress   = glfw.GetProcAddress
	primaryMode   = func() (videoMode, bool) {
		m := glfw.GetPrimaryMonitor()
		if m == nil {
			return videoMode{}, false
		}
		vm := m.GetVideoMode()
		if vm == nil {
			return videoMode{}, false
		}
		return videoMode{vm.Width, vm.Height, vm.RefreshRate}, true
	}
	createWindow = func(width, height int, title string, fullscreen bool) (window, error) {
		var monitor *glfw.Monitor
		if fullscreen {
			monitor = glfw.GetPrimaryMonitor()
		}
		win, err := glfw.CreateWindow(width, height, title, monitor, nil)
		if err != nil {
			return nil, err
		}
		win.SetKeyCallback(escapeCloses)
		return win, nil
	}
)

func escapeCloses(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
}

func init() {
	graphics.Register(Name, func(host graphics.Host) (graphics.ContextDriver, error) {
		c, err := New(host.Title)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

type hint struct {
	target glfw.Hint
	value  int
}

// Context is the GLFW context driver.
type Context struct {
	title string
	state graphics.State

	api          graphics.API
	major, minor int
	hints        []hint

	win         window
	fbo         framebuffer
	hwRender    bool
	interval    int
	flags       graphics.Flags
	width       int
	height      int
	refreshRate float32
}

var _ graphics.ContextDriver = (*Context)(nil)

// New initializes GLFW. Must be called from the main thread.
func New(title string) (*Context, error) {
	if err := glfwInit(); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	if title == "" {
		title = "gfxdriver"
	}
	gfxdriver.Logger().Info("GLFW initialized")
	return &Context{
		title:    title,
		state:    graphics.StateInitialized,
		interval: 1,
		flags:    graphics.FlagShadersGLSL,
	}, nil
}

func (c *Context) Name() string { return Name }

// State returns the lifecycle stage.
func (c *Context) State() graphics.State { return c.state }

func (c *Context) API() graphics.API {
	if c.api == graphics.APINone {
		return graphics.APIOpenGL
	}
	return c.api
}

// contextHints translates an API request into GLFW window hints.
func contextHints(api graphics.API, major, minor int) ([]hint, error) {
	switch api {
	case graphics.APIOpenGL:
		hs := []hint{{glfw.ClientAPI, glfw.OpenGLAPI}}
		if major > 0 {
			hs = append(hs, hint{glfw.ContextVersionMajor, major}, hint{glfw.ContextVersionMinor, minor})
		}
		if major > 3 || (major == 3 && minor >= 2) {
			hs = append(hs,
				hint{glfw.OpenGLProfile, glfw.OpenGLCoreProfile},
				hint{glfw.OpenGLForwardCompatible, glfw.True})
		}
		return hs, nil
	case graphics.APIOpenGLES:
		if major > 3 {
			break
		}
		if major < 1 {
			major, minor = 2, 0
		}
		return []hint{
			{glfw.ClientAPI, glfw.OpenGLESAPI},
			{glfw.ContextVersionMajor, major},
			{glfw.ContextVersionMinor, minor},
		}, nil
	}
	return nil, fmt.Errorf("%w: %s %d.%d", graphics.ErrAPIUnsupported, api, major, minor)
}

// BindAPI records the hints for the window created by SetVideoMode.
func (c *Context) BindAPI(api graphics.API, major, minor int) error {
	if !c.state.CanBind() {
		return c.stateErr()
	}
	hs, err := contextHints(api, major, minor)
	if err != nil {
		return err
	}
	c.api, c.major, c.minor, c.hints = api, major, minor, hs
	if api == graphics.APIOpenGL && (major > 3 || (major == 3 && minor >= 2)) {
		c.flags = c.flags.Set(graphics.FlagGLCore)
	} else {
		c.flags = c.flags.Clear(graphics.FlagGLCore)
	}
	if c.state == graphics.StateInitialized {
		c.state = graphics.StateAPIBound
	}
	return nil
}

// stateErr maps a refused state to its error. A zero-value context was
// never built by its constructor and reports ErrNotInitialized.
func (c *Context) stateErr() error {
	switch c.state {
	case graphics.StateDestroyed:
		return graphics.ErrDestroyed
	case graphics.StateUninitialized:
		return graphics.ErrNotInitialized
	}
	return graphics.ErrAPINotBound
}

// SetVideoMode opens the window. Width and height are framebuffer pixels,
// the unit VideoSize and CheckWindow report. A zero size takes the monitor
// size.
func (c *Context) SetVideoMode(width, height int, fullscreen bool) error {
	if c.state != graphics.StateAPIBound && c.state != graphics.StateActive {
		return c.stateErr()
	}
	if c.state == graphics.StateActive {
		c.closeWindow()
		c.width, c.height = 0, 0
		c.state = graphics.StateAPIBound
	}

	mode, haveMode := primaryMode()
	pixels := width > 0 && height > 0
	if !pixels {
		width, height = defaultWidth, defaultHeight
		if haveMode {
			width, height = mode.width, mode.height
		}
	}

	resetHints()
	for _, h := range c.hints {
		windowHint(h.target, h.value)
	}
	windowHint(glfw.Resizable, glfw.True)

	win, err := createWindow(width, height, c.title, fullscreen)
	if err != nil {
		return fmt.Errorf("%s: create window: %w", Name, err)
	}
	c.win = win
	win.MakeContextCurrent()
	swapInterval(c.interval)
	if pixels && !fullscreen {
		fitFramebuffer(win, width, height)
	}

	c.width, c.height = win.GetFramebufferSize()
	c.refreshRate = defaultRefreshRate
	if haveMode && mode.refreshRate > 0 {
		c.refreshRate = float32(mode.refreshRate)
	}
	c.state = graphics.StateActive
	if c.hwRender {
		c.attachFramebuffer()
	}
	gfxdriver.Logger().Info("video mode set", "driver", Name, "api", c.API(), "width", c.width, "height", c.height, "fullscreen", fullscreen)
	return nil
}

// fitFramebuffer resizes win so its framebuffer is width x height pixels
// on displays that scale screen coordinates, such as Retina.
func fitFramebuffer(win window, width, height int) {
	fw, fh := win.GetFramebufferSize()
	ww, wh := win.GetSize()
	if fw <= 0 || fh <= 0 || (fw == width && fh == height) {
		return
	}
	win.SetSize(max(width*ww/fw, 1), max(height*wh/fh, 1))
}

func (c *Context) attachFramebuffer() {
	fb, err := newFramebuffer(c.width, c.height)
	if err != nil {
		gfxdriver.Logger().Error("hw render framebuffer unavailable", "driver", Name, "error", err)
		c.hwRender = false
		return
	}
	fb.Bind()
	c.fbo = fb
}

func (c *Context) closeWindow() {
	if c.fbo != nil {
		c.fbo.Delete()
		c.fbo = nil
	}
	if c.win != nil {
		c.win.Destroy()
		c.win = nil
	}
}

func (c *Context) SwapInterval(interval int) {
	c.interval = interval
	if c.state == graphics.StateActive {
		swapInterval(interval)
	}
}

func (c *Context) SwapBuffers() {
	if c.state != graphics.StateActive {
		return
	}
	if c.fbo != nil {
		c.fbo.Blit(c.width, c.height)
	}
	c.win.SwapBuffers()
}

// CheckWindow pumps the event queue. Quit follows the window's close flag.
func (c *Context) CheckWindow() graphics.WindowStatus {
	st := graphics.WindowStatus{Width: c.width, Height: c.height}
	if c.state != graphics.StateActive {
		return st
	}
	pollEvents()
	st.Quit = c.win.ShouldClose()
	w, h := c.win.GetFramebufferSize()
	if w != c.width || h != c.height {
		c.width, c.height = w, h
		st.Resize = true
		st.Width, st.Height = w, h
		if c.fbo != nil {
			if err := c.fbo.Resize(w, h); err != nil {
				gfxdriver.Logger().Error("hw render framebuffer resize failed", "driver", Name, "error", err)
			}
		}
	}
	return st
}

func (c *Context) VideoSize() (int, int) { return c.width, c.height }

func (c *Context) RefreshRate() float32 { return c.refreshRate }

// BindHWRender routes client rendering into an offscreen framebuffer.
func (c *Context) BindHWRender(enable bool) {
	if c.state == graphics.StateDestroyed || enable == c.hwRender {
		return
	}
	c.hwRender = enable
	if c.state != graphics.StateActive {
		return
	}
	if enable {
		c.attachFramebuffer()
		return
	}
	if c.fbo != nil {
		c.fbo.Delete()
		c.fbo = nil
	}
}

func (c *Context) Flags() graphics.Flags { return c.flags }

func (c *Context) SetFlags(flags graphics.Flags) { c.flags = flags }

func (c *Context) HasFocus() bool {
	if c.state != graphics.StateActive {
		return false
	}
	return c.win.GetAttrib(glfw.Focused) == glfw.True
}

// SuppressScreensaver is not something GLFW can do.
func (c *Context) SuppressScreensaver(bool) bool { return false }

func (c *Context) ShowMouse(show bool) {
	if c.state != graphics.StateActive {
		return
	}
	mode := glfw.CursorHidden
	if show {
		mode = glfw.CursorNormal
	}
	c.win.SetInputMode(glfw.CursorMode, mode)
}

func (c *Context) HasWindowed() bool { return true }

// ProcAddress needs a current context; it returns nil before the window
// exists.
func (c *Context) ProcAddress(name string) unsafe.Pointer {
	if c.state != graphics.StateActive {
		return nil
	}
	return procAddress(name)
}

// Destroy closes the window and terminates GLFW.
func (c *Context) Destroy() {
	if c == nil || c.state == graphics.StateDestroyed {
		return
	}
	c.closeWindow()
	glfwTerminate()
	c.state = graphics.StateDestroyed
	gfxdriver.Logger().Info("GLFW terminated")
}
