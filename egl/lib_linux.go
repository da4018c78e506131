//go:build linux

package egl

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// libEGL names tried in order.
var libNames = []string{"libEGL.so.1", "libEGL.so"}

// system binds the process-wide libEGL with purego, so the backends build
// without cgo.
type system struct {
	eglGetDisplay           func(native uintptr) uintptr
	eglInitialize           func(dpy uintptr, major, minor *int32) uint32
	eglTerminate            func(dpy uintptr) uint32
	eglChooseConfig         func(dpy uintptr, attribs *int32, configs *uintptr, size int32, num *int32) uint32
	eglBindAPI              func(api uint32) uint32
	eglCreateContext        func(dpy, cfg, share uintptr, attribs *int32) uintptr
	eglDestroyContext       func(dpy, ctx uintptr) uint32
	eglCreateWindowSurface  func(dpy, cfg, win uintptr, attribs *int32) uintptr
	eglCreatePbufferSurface func(dpy, cfg uintptr, attribs *int32) uintptr
	eglDestroySurface       func(dpy, surf uintptr) uint32
	eglMakeCurrent          func(dpy, draw, read, ctx uintptr) uint32
	eglSwapBuffers          func(dpy, surf uintptr) uint32
	eglSwapInterval         func(dpy uintptr, interval int32) uint32
	eglQuerySurface         func(dpy, surf uintptr, attr int32, value *int32) uint32
	eglGetError             func() int32
	eglGetProcAddress       func(name string) uintptr
}

var (
	loadOnce sync.Once
	loaded   *system
	loadErr  error
)

// Load binds the system libEGL. The library is opened once per process.
func Load() (Library, error) {
	loadOnce.Do(func() {
		loaded, loadErr = loadSystem()
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return loaded, nil
}

func loadSystem() (*system, error) {
	var (
		lib uintptr
		err error
	)
	for _, name := range libNames {
		lib, err = purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("egl: open libEGL: %w", err)
	}

	s := &system{}
	for name, fptr := range map[string]any{
		"eglGetDisplay":           &s.eglGetDisplay,
		"eglInitialize":           &s.eglInitialize,
		"eglTerminate":            &s.eglTerminate,
		"eglChooseConfig":         &s.eglChooseConfig,
		"eglBindAPI":              &s.eglBindAPI,
		"eglCreateContext":        &s.eglCreateContext,
		"eglDestroyContext":       &s.eglDestroyContext,
		"eglCreateWindowSurface":  &s.eglCreateWindowSurface,
		"eglCreatePbufferSurface": &s.eglCreatePbufferSurface,
		"eglDestroySurface":       &s.eglDestroySurface,
		"eglMakeCurrent":          &s.eglMakeCurrent,
		"eglSwapBuffers":          &s.eglSwapBuffers,
		"eglSwapInterval":         &s.eglSwapInterval,
		"eglQuerySurface":         &s.eglQuerySurface,
		"eglGetError":             &s.eglGetError,
		"eglGetProcAddress":       &s.eglGetProcAddress,
	} {
		if _, err := purego.Dlsym(lib, name); err != nil {
			return nil, fmt.Errorf("egl: resolve %s: %w", name, err)
		}
		purego.RegisterLibFunc(fptr, lib, name)
	}
	return s, nil
}

func attribPtr(attribs []int32) *int32 {
	if attribs == nil {
		return nil
	}
	return &attribs[0]
}

func (s *system) GetDisplay(native NativeDisplay) Display {
	return Display(s.eglGetDisplay(uintptr(native)))
}

func (s *system) Initialize(dpy Display) (major, minor int32, ok bool) {
	ok = s.eglInitialize(uintptr(dpy), &major, &minor) != 0
	return major, minor, ok
}

func (s *system) Terminate(dpy Display) bool {
	return s.eglTerminate(uintptr(dpy)) != 0
}

func (s *system) ChooseConfig(dpy Display, attribs []int32) (Config, bool) {
	list := terminated(attribs)
	var cfg uintptr
	var num int32
	ok := s.eglChooseConfig(uintptr(dpy), &list[0], &cfg, 1, &num) != 0
	runtime.KeepAlive(list)
	if !ok || num == 0 {
		return 0, false
	}
	return Config(cfg), true
}

func (s *system) BindAPI(api uint32) bool {
	return s.eglBindAPI(api) != 0
}

func (s *system) CreateContext(dpy Display, cfg Config, share Context, attribs []int32) Context {
	list := terminated(attribs)
	ctx := s.eglCreateContext(uintptr(dpy), uintptr(cfg), uintptr(share), &list[0])
	runtime.KeepAlive(list)
	return Context(ctx)
}

func (s *system) DestroyContext(dpy Display, ctx Context) bool {
	return s.eglDestroyContext(uintptr(dpy), uintptr(ctx)) != 0
}

func (s *system) CreateWindowSurface(dpy Display, cfg Config, win NativeWindow, attribs []int32) Surface {
	var list []int32
	if len(attribs) > 0 {
		list = terminated(attribs)
	}
	surf := s.eglCreateWindowSurface(uintptr(dpy), uintptr(cfg), uintptr(win), attribPtr(list))
	runtime.KeepAlive(list)
	return Surface(surf)
}

func (s *system) CreatePbufferSurface(dpy Display, cfg Config, attribs []int32) Surface {
	list := terminated(attribs)
	surf := s.eglCreatePbufferSurface(uintptr(dpy), uintptr(cfg), &list[0])
	runtime.KeepAlive(list)
	return Surface(surf)
}

func (s *system) DestroySurface(dpy Display, surf Surface) bool {
	return s.eglDestroySurface(uintptr(dpy), uintptr(surf)) != 0
}

func (s *system) MakeCurrent(dpy Display, draw, read Surface, ctx Context) bool {
	return s.eglMakeCurrent(uintptr(dpy), uintptr(draw), uintptr(read), uintptr(ctx)) != 0
}

func (s *system) SwapBuffers(dpy Display, surf Surface) bool {
	return s.eglSwapBuffers(uintptr(dpy), uintptr(surf)) != 0
}

func (s *system) SwapInterval(dpy Display, interval int32) bool {
	return s.eglSwapInterval(uintptr(dpy), interval) != 0
}

func (s *system) QuerySurface(dpy Display, surf Surface, attr int32) (int32, bool) {
	var v int32
	ok := s.eglQuerySurface(uintptr(dpy), uintptr(surf), attr, &v) != 0
	return v, ok
}

func (s *system) GetError() int32 {
	return s.eglGetError()
}

func (s *system) GetProcAddress(name string) unsafe.Pointer {
	p := s.eglGetProcAddress(name)
	return *(*unsafe.Pointer)(unsafe.Pointer(&p))
}
