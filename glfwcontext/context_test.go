package glfwcontext

import (
	"errors"
	"testing"
	"unsafe"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/gfxdriver/graphics"
)

// fakeWindow sizes are screen coordinates; the framebuffer is scale times
// larger.
type fakeWindow struct {
	width, height int
	scale         int
	resized       int
	close         bool
	focused       bool
	cursor        int
	swaps         int
	destroyed     int
}

func (w *fakeWindow) MakeContextCurrent()            {}
func (w *fakeWindow) SwapBuffers()                   { w.swaps++ }
func (w *fakeWindow) ShouldClose() bool              { return w.close }
func (w *fakeWindow) SetShouldClose(v bool)          { w.close = v }
func (w *fakeWindow) GetFramebufferSize() (int, int) { return w.width * w.scale, w.height * w.scale }
func (w *fakeWindow) GetSize() (int, int)            { return w.width, w.height }
func (w *fakeWindow) Destroy()                       { w.destroyed++ }

func (w *fakeWindow) SetSize(width, height int) {
	w.width, w.height = width, height
	w.resized++
}

func (w *fakeWindow) GetAttrib(h glfw.Hint) int {
	if h == glfw.Focused && w.focused {
		return glfw.True
	}
	return glfw.False
}

func (w *fakeWindow) SetInputMode(mode glfw.InputMode, value int) {
	if mode == glfw.CursorMode {
		w.cursor = value
	}
}

type fakeFramebuffer struct {
	width, height int
	bound, blits  int
	deleted       bool
}

func (f *fakeFramebuffer) Bind() { f.bound++ }

func (f *fakeFramebuffer) Resize(width, height int) error {
	f.width, f.height = width, height
	return nil
}

func (f *fakeFramebuffer) Blit(int, int) { f.blits++ }
func (f *fakeFramebuffer) Delete()       { f.deleted = true }

type fakePlatform struct {
	inits, terms int
	hints        map[glfw.Hint]int
	interval     int
	scale        int
	mode         videoMode
	haveMode     bool
	windowErr    error
	windows      []*fakeWindow
	requested    [2]int
	fullscreen   bool
	fbos         []*fakeFramebuffer
	fboErr       error
}

func installFake(t *testing.T) *fakePlatform {
	t.Helper()
	p := &fakePlatform{
		hints:    make(map[glfw.Hint]int),
		scale:    1,
		mode:     videoMode{1920, 1080, 144},
		haveMode: true,
	}
	origInit, origTerm, origPoll, origReset := glfwInit, glfwTerminate, pollEvents, resetHints
	origHint, origInterval, origProc, origMode := windowHint, swapInterval, procAddress, primaryMode
	origCreate, origFramebuffer := createWindow, newFramebuffer
	t.Cleanup(func() {
		glfwInit, glfwTerminate, pollEvents, resetHints = origInit, origTerm, origPoll, origReset
		windowHint, swapInterval, procAddress, primaryMode = origHint, origInterval, origProc, origMode
		createWindow, newFramebuffer = origCreate, origFramebuffer
	})

	glfwInit = func() error { p.inits++; return nil }
	glfwTerminate = func() { p.terms++ }
	pollEvents = func() {}
	resetHints = func() { p.hints = make(map[glfw.Hint]int) }
	windowHint = func(target glfw.Hint, value int) { p.hints[target] = value }
	swapInterval = func(n int) { p.interval = n }
	procAddress = func(string) unsafe.Pointer { return unsafe.Pointer(p) }
	primaryMode = func() (videoMode, bool) { return p.mode, p.haveMode }
	createWindow = func(width, height int, title string, fullscreen bool) (window, error) {
		if p.windowErr != nil {
			return nil, p.windowErr
		}
		p.requested = [2]int{width, height}
		p.fullscreen = fullscreen
		w := &fakeWindow{width: width, height: height, scale: p.scale}
		p.windows = append(p.windows, w)
		return w, nil
	}
	newFramebuffer = func(width, height int) (framebuffer, error) {
		if p.fboErr != nil {
			return nil, p.fboErr
		}
		f := &fakeFramebuffer{width: width, height: height}
		p.fbos = append(p.fbos, f)
		return f, nil
	}
	return p
}

func newActive(t *testing.T, p *fakePlatform) *Context {
	t.Helper()
	c, err := New("test")
	require.NoError(t, err)
	require.NoError(t, c.BindAPI(graphics.APIOpenGL, 4, 1))
	require.NoError(t, c.SetVideoMode(800, 600, false))
	return c
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, graphics.Drivers(), Name)
}

func TestContextHints(t *testing.T) {
	hs, err := contextHints(graphics.APIOpenGL, 4, 1)
	require.NoError(t, err)
	assert.Contains(t, hs, hint{glfw.OpenGLProfile, glfw.OpenGLCoreProfile})
	assert.Contains(t, hs, hint{glfw.ContextVersionMajor, 4})

	hs, err = contextHints(graphics.APIOpenGL, 2, 1)
	require.NoError(t, err)
	assert.NotContains(t, hs, hint{glfw.OpenGLProfile, glfw.OpenGLCoreProfile})

	hs, err = contextHints(graphics.APIOpenGLES, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []hint{
		{glfw.ClientAPI, glfw.OpenGLESAPI},
		{glfw.ContextVersionMajor, 2},
		{glfw.ContextVersionMinor, 0},
	}, hs)

	_, err = contextHints(graphics.APIOpenGLES, 4, 0)
	assert.ErrorIs(t, err, graphics.ErrAPIUnsupported)
	_, err = contextHints(graphics.APIVulkan, 1, 0)
	assert.ErrorIs(t, err, graphics.ErrAPIUnsupported)
}

func TestSetVideoModeAppliesHints(t *testing.T) {
	p := installFake(t)
	c := newActive(t, p)
	defer c.Destroy()

	assert.Equal(t, glfw.OpenGLCoreProfile, p.hints[glfw.OpenGLProfile])
	assert.Equal(t, glfw.True, p.hints[glfw.Resizable])
	assert.Equal(t, 1, p.interval)
	w, h := c.VideoSize()
	assert.Equal(t, [2]int{800, 600}, [2]int{w, h})
	assert.Equal(t, float32(144), c.RefreshRate())
	assert.True(t, c.Flags().Has(graphics.FlagGLCore))
	assert.True(t, c.HasWindowed())
	assert.NotNil(t, c.ProcAddress("glClear"))
}

func TestZeroSizeTakesMonitor(t *testing.T) {
	p := installFake(t)
	c, err := New("")
	require.NoError(t, err)
	defer c.Destroy()
	require.NoError(t, c.BindAPI(graphics.APIOpenGLES, 3, 0))
	require.NoError(t, c.SetVideoMode(0, 0, true))
	assert.Equal(t, [2]int{1920, 1080}, p.requested)
	assert.True(t, p.fullscreen)

	p.haveMode = false
	require.NoError(t, c.SetVideoMode(0, 0, false))
	assert.Equal(t, [2]int{defaultWidth, defaultHeight}, p.requested)
	assert.Equal(t, float32(defaultRefreshRate), c.RefreshRate())
	assert.Equal(t, 1, p.windows[0].destroyed)
}

func TestWindowFailureStaysBound(t *testing.T) {
	p := installFake(t)
	p.windowErr = errors.New("no display")
	c, err := New("test")
	require.NoError(t, err)
	require.NoError(t, c.BindAPI(graphics.APIOpenGL, 3, 3))

	require.Error(t, c.SetVideoMode(640, 480, false))
	assert.Equal(t, graphics.StateAPIBound, c.State())
	assert.Nil(t, c.ProcAddress("glClear"))
	c.SwapBuffers()

	c.Destroy()
	assert.Equal(t, 1, p.terms)
}

func TestSetVideoModeTakesPixels(t *testing.T) {
	p := installFake(t)
	p.scale = 2
	c := newActive(t, p)
	defer c.Destroy()
	win := p.windows[0]

	w, h := c.VideoSize()
	assert.Equal(t, [2]int{800, 600}, [2]int{w, h})
	assert.Equal(t, [2]int{400, 300}, [2]int{win.width, win.height})

	// A user resize followed by a re-mode-set at the reported size keeps
	// the window where the user left it.
	win.width, win.height = 810, 600
	st := c.CheckWindow()
	require.True(t, st.Resize)
	require.NoError(t, c.SetVideoMode(st.Width, st.Height, false))
	win = p.windows[1]
	assert.Equal(t, [2]int{810, 600}, [2]int{win.width, win.height})
	w, h = c.VideoSize()
	assert.Equal(t, [2]int{1620, 1200}, [2]int{w, h})
	assert.False(t, c.CheckWindow().Resize)
}

func TestUnscaledWindowKeepsSize(t *testing.T) {
	p := installFake(t)
	c := newActive(t, p)
	defer c.Destroy()
	assert.Zero(t, p.windows[0].resized)

	p.scale = 2
	require.NoError(t, c.SetVideoMode(0, 0, false))
	assert.Zero(t, p.windows[1].resized)
	require.NoError(t, c.SetVideoMode(800, 600, true))
	assert.Zero(t, p.windows[2].resized)
}

func TestFailedRemodeClearsSize(t *testing.T) {
	p := installFake(t)
	c := newActive(t, p)
	defer c.Destroy()

	p.windowErr = errors.New("no display")
	require.Error(t, c.SetVideoMode(1024, 768, false))
	assert.Equal(t, graphics.StateAPIBound, c.State())
	w, h := c.VideoSize()
	assert.Zero(t, w)
	assert.Zero(t, h)
	assert.Equal(t, 1, p.windows[0].destroyed)
}

func TestZeroValueContext(t *testing.T) {
	var c Context
	assert.ErrorIs(t, c.BindAPI(graphics.APIOpenGL, 3, 3), graphics.ErrNotInitialized)
	assert.ErrorIs(t, c.SetVideoMode(640, 480, false), graphics.ErrNotInitialized)
}

func TestCheckWindow(t *testing.T) {
	p := installFake(t)
	c := newActive(t, p)
	defer c.Destroy()
	win := p.windows[0]

	st := c.CheckWindow()
	assert.False(t, st.Resize)
	assert.False(t, st.Quit)

	win.width, win.height = 1024, 768
	st = c.CheckWindow()
	assert.True(t, st.Resize)
	assert.Equal(t, 1024, st.Width)
	assert.False(t, c.CheckWindow().Resize)

	win.SetShouldClose(true)
	assert.True(t, c.CheckWindow().Quit)
}

func TestHWRenderFramebuffer(t *testing.T) {
	p := installFake(t)
	c, err := New("test")
	require.NoError(t, err)
	require.NoError(t, c.BindAPI(graphics.APIOpenGL, 4, 1))
	c.BindHWRender(true)
	require.NoError(t, c.SetVideoMode(320, 240, false))
	require.Len(t, p.fbos, 1)
	fb := p.fbos[0]
	assert.Equal(t, 1, fb.bound)

	c.SwapBuffers()
	assert.Equal(t, 1, fb.blits)
	assert.Equal(t, 1, p.windows[0].swaps)

	p.windows[0].width = 640
	c.CheckWindow()
	assert.Equal(t, 640, fb.width)

	c.BindHWRender(false)
	assert.True(t, fb.deleted)
	c.SwapBuffers()
	assert.Equal(t, 1, fb.blits)

	c.Destroy()
	assert.Equal(t, 1, p.windows[0].destroyed)
	assert.Equal(t, 1, p.terms)
}

func TestHWRenderFallsBack(t *testing.T) {
	p := installFake(t)
	p.fboErr = errors.New("incomplete")
	c := newActive(t, p)
	defer c.Destroy()

	c.BindHWRender(true)
	c.SwapBuffers()
	assert.Equal(t, 1, p.windows[0].swaps)
	assert.False(t, c.hwRender)
}

func TestFocusAndCursor(t *testing.T) {
	p := installFake(t)
	c := newActive(t, p)
	defer c.Destroy()
	win := p.windows[0]

	assert.False(t, c.HasFocus())
	win.focused = true
	assert.True(t, c.HasFocus())

	c.ShowMouse(false)
	assert.Equal(t, glfw.CursorHidden, win.cursor)
	c.ShowMouse(true)
	assert.Equal(t, glfw.CursorNormal, win.cursor)
	assert.False(t, c.SuppressScreensaver(true))
}

func TestSwapIntervalBeforeWindow(t *testing.T) {
	p := installFake(t)
	c, err := New("test")
	require.NoError(t, err)
	defer c.Destroy()
	c.SwapInterval(0)
	assert.Equal(t, 0, p.interval)
	require.NoError(t, c.BindAPI(graphics.APIOpenGL, 0, 0))
	p.interval = 7
	require.NoError(t, c.SetVideoMode(100, 100, false))
	assert.Equal(t, 0, p.interval)
}

func TestDestroy(t *testing.T) {
	p := installFake(t)
	c := newActive(t, p)
	c.Destroy()
	c.Destroy()
	assert.Equal(t, 1, p.terms)
	assert.Equal(t, 1, p.windows[0].destroyed)
	assert.ErrorIs(t, c.BindAPI(graphics.APIOpenGL, 3, 3), graphics.ErrDestroyed)

	var nilCtx *Context
	nilCtx.Destroy()
}
