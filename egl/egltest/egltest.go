// Package egltest provides an in-memory egl.Library for testing backends
// without a GPU. It tracks every handle it hands out so tests can assert
// that nothing leaks and nothing is released twice.
package egltest

import (
	"fmt"
	"unsafe"

	"github.com/richinsley/gfxdriver/egl"
)

// Library is a fake EGL implementation. The Fail* fields make the matching
// entry point refuse; the zero value accepts everything.
type Library struct {
	FailGetDisplay     bool
	FailInitialize     bool
	FailCreateContext  bool
	FailSharedContext  bool
	FailWindowSurface  bool
	FailPbufferSurface bool
	FailMakeCurrent    bool
	FailSwapInterval   bool
	FailSwapBuffers    bool
	RejectConfigs      int      // leading ChooseConfig calls to reject
	APIs               []uint32 // accepted by BindAPI; nil accepts all
	WindowWidth        int32    // size reported for window surfaces
	WindowHeight       int32

	BoundAPI    uint32
	Current     egl.Context
	Interval    int32
	Swaps       int
	DoubleFrees int
	Calls       []string

	next        uintptr
	displays    map[egl.Display]bool
	contexts    map[egl.Context]egl.Context // context -> share context
	surfaces    map[egl.Surface][2]int32
	configCalls int
	lastErr     int32
}

var _ egl.Library = (*Library)(nil)

// New returns a fake whose window surfaces report 640x480.
func New() *Library {
	return &Library{
		WindowWidth:  640,
		WindowHeight: 480,
		displays:     make(map[egl.Display]bool),
		contexts:     make(map[egl.Context]egl.Context),
		surfaces:     make(map[egl.Surface][2]int32),
	}
}

func (l *Library) handle() uintptr {
	l.next++
	return 0x1000 + l.next
}

func (l *Library) call(format string, args ...any) {
	l.Calls = append(l.Calls, fmt.Sprintf(format, args...))
}

func (l *Library) fail(code int32) {
	l.lastErr = code
}

// Live returns the number of displays, contexts and surfaces not yet
// released.
func (l *Library) Live() (displays, contexts, surfaces int) {
	return len(l.displays), len(l.contexts), len(l.surfaces)
}

// Resize changes the size every live surface reports, as a platform would
// after the user resized the window.
func (l *Library) Resize(width, height int32) {
	l.WindowWidth, l.WindowHeight = width, height
	for s := range l.surfaces {
		l.surfaces[s] = [2]int32{width, height}
	}
}

// SharedWith returns the share context ctx was created with.
func (l *Library) SharedWith(ctx egl.Context) egl.Context {
	return l.contexts[ctx]
}

func (l *Library) GetDisplay(native egl.NativeDisplay) egl.Display {
	l.call("GetDisplay")
	if l.FailGetDisplay {
		l.fail(egl.BadDisplay)
		return egl.NoDisplay
	}
	return egl.Display(0x10 + uintptr(native))
}

func (l *Library) Initialize(dpy egl.Display) (int32, int32, bool) {
	l.call("Initialize")
	if l.FailInitialize {
		l.fail(egl.NotInitialized)
		return 0, 0, false
	}
	l.displays[dpy] = true
	return 1, 5, true
}

func (l *Library) Terminate(dpy egl.Display) bool {
	l.call("Terminate")
	if !l.displays[dpy] {
		l.DoubleFrees++
		return false
	}
	delete(l.displays, dpy)
	return true
}

func (l *Library) ChooseConfig(dpy egl.Display, attribs []int32) (egl.Config, bool) {
	l.call("ChooseConfig")
	l.configCalls++
	if !l.displays[dpy] {
		l.fail(egl.NotInitialized)
		return 0, false
	}
	if l.configCalls <= l.RejectConfigs {
		l.fail(egl.BadMatch)
		return 0, false
	}
	return egl.Config(0x20 + l.configCalls), true
}

func (l *Library) BindAPI(api uint32) bool {
	l.call("BindAPI")
	if l.APIs != nil {
		accepted := false
		for _, a := range l.APIs {
			accepted = accepted || a == api
		}
		if !accepted {
			l.fail(egl.BadParameter)
			return false
		}
	}
	l.BoundAPI = api
	return true
}

func (l *Library) CreateContext(dpy egl.Display, cfg egl.Config, share egl.Context, attribs []int32) egl.Context {
	if share != egl.NoContext {
		l.call("CreateContext(shared)")
	} else {
		l.call("CreateContext")
	}
	if !l.displays[dpy] {
		l.fail(egl.BadDisplay)
		return egl.NoContext
	}
	if (share == egl.NoContext && l.FailCreateContext) || (share != egl.NoContext && l.FailSharedContext) {
		l.fail(egl.BadAlloc)
		return egl.NoContext
	}
	ctx := egl.Context(l.handle())
	l.contexts[ctx] = share
	return ctx
}

func (l *Library) DestroyContext(dpy egl.Display, ctx egl.Context) bool {
	l.call("DestroyContext")
	if _, ok := l.contexts[ctx]; !ok {
		l.DoubleFrees++
		return false
	}
	delete(l.contexts, ctx)
	if l.Current == ctx {
		l.Current = egl.NoContext
	}
	return true
}

func (l *Library) CreateWindowSurface(dpy egl.Display, cfg egl.Config, win egl.NativeWindow, attribs []int32) egl.Surface {
	l.call("CreateWindowSurface")
	if l.FailWindowSurface {
		l.fail(egl.BadNativeWindow)
		return egl.NoSurface
	}
	s := egl.Surface(l.handle())
	l.surfaces[s] = [2]int32{l.WindowWidth, l.WindowHeight}
	return s
}

func (l *Library) CreatePbufferSurface(dpy egl.Display, cfg egl.Config, attribs []int32) egl.Surface {
	l.call("CreatePbufferSurface")
	if l.FailPbufferSurface {
		l.fail(egl.BadAlloc)
		return egl.NoSurface
	}
	var size [2]int32
	for i := 0; i+1 < len(attribs); i += 2 {
		switch attribs[i] {
		case egl.Width:
			size[0] = attribs[i+1]
		case egl.Height:
			size[1] = attribs[i+1]
		}
	}
	s := egl.Surface(l.handle())
	l.surfaces[s] = size
	return s
}

func (l *Library) DestroySurface(dpy egl.Display, surf egl.Surface) bool {
	l.call("DestroySurface")
	if _, ok := l.surfaces[surf]; !ok {
		l.DoubleFrees++
		return false
	}
	delete(l.surfaces, surf)
	return true
}

func (l *Library) MakeCurrent(dpy egl.Display, draw, read egl.Surface, ctx egl.Context) bool {
	if ctx == egl.NoContext {
		l.Current = egl.NoContext
		return true
	}
	l.call("MakeCurrent")
	if l.FailMakeCurrent {
		l.fail(egl.BadMatch)
		return false
	}
	l.Current = ctx
	return true
}

func (l *Library) SwapBuffers(dpy egl.Display, surf egl.Surface) bool {
	if l.FailSwapBuffers {
		l.fail(egl.BadSurface)
		return false
	}
	if _, ok := l.surfaces[surf]; !ok {
		l.fail(egl.BadSurface)
		return false
	}
	l.Swaps++
	return true
}

func (l *Library) SwapInterval(dpy egl.Display, interval int32) bool {
	l.call("SwapInterval")
	if l.FailSwapInterval {
		l.fail(egl.BadParameter)
		return false
	}
	l.Interval = interval
	return true
}

func (l *Library) QuerySurface(dpy egl.Display, surf egl.Surface, attr int32) (int32, bool) {
	size, ok := l.surfaces[surf]
	if !ok {
		l.fail(egl.BadSurface)
		return 0, false
	}
	switch attr {
	case egl.Width:
		return size[0], true
	case egl.Height:
		return size[1], true
	}
	l.fail(egl.BadAttribute)
	return 0, false
}

func (l *Library) GetError() int32 {
	code := l.lastErr
	if code == 0 {
		return egl.Success
	}
	l.lastErr = 0
	return code
}

func (l *Library) GetProcAddress(name string) unsafe.Pointer {
	return nil
}
