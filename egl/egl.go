// Package egl is the native platform boundary for the EGL based context
// backends. Library abstracts the EGL entry points so the ownership logic in
// Handle can run against the system libEGL or a fake.
package egl

import (
	"errors"
	"unsafe"
)

// Opaque EGL handles. Zero is EGL_NO_DISPLAY / EGL_NO_CONTEXT / EGL_NO_SURFACE.
type (
	Display       uintptr
	Config        uintptr
	Context       uintptr
	Surface       uintptr
	NativeDisplay uintptr
	NativeWindow  uintptr
)

const (
	NoDisplay Display = 0
	NoContext Context = 0
	NoSurface Surface = 0

	DefaultDisplay NativeDisplay = 0
)

// Error codes.
const (
	Success           = 0x3000
	NotInitialized    = 0x3001
	BadAccess         = 0x3002
	BadAlloc          = 0x3003
	BadAttribute      = 0x3004
	BadConfig         = 0x3005
	BadContext        = 0x3006
	BadCurrentSurface = 0x3007
	BadDisplay        = 0x3008
	BadMatch          = 0x3009
	BadNativePixmap   = 0x300A
	BadNativeWindow   = 0x300B
	BadParameter      = 0x300C
	BadSurface        = 0x300D
	ContextLost       = 0x300E
)

// Config and surface attributes.
const (
	AlphaSize      = 0x3021
	BlueSize       = 0x3022
	GreenSize      = 0x3023
	RedSize        = 0x3024
	DepthSize      = 0x3025
	StencilSize    = 0x3026
	SurfaceType    = 0x3033
	None           = 0x3038
	RenderableType = 0x3040
	Height         = 0x3056
	Width          = 0x3057

	PbufferBit = 0x0001
	PixmapBit  = 0x0002
	WindowBit  = 0x0004

	OpenGLES2Bit = 0x0004
	OpenGLBit    = 0x0008
	OpenGLES3Bit = 0x0040

	ContextClientVersion = 0x3098
	ContextMajorVersion  = 0x3098
	ContextMinorVersion  = 0x30FB
)

// Client APIs accepted by eglBindAPI.
const (
	OpenGLESAPI = 0x30A0
	OpenVGAPI   = 0x30A1
	OpenGLAPI   = 0x30A2
)

var ErrUnsupported = errors.New("egl: not supported on this platform")

// Library is the subset of EGL used by the context backends. Attribute lists
// are passed without the trailing None terminator; implementations add it.
type Library interface {
	GetDisplay(native NativeDisplay) Display
	Initialize(dpy Display) (major, minor int32, ok bool)
	Terminate(dpy Display) bool
	ChooseConfig(dpy Display, attribs []int32) (Config, bool)
	BindAPI(api uint32) bool
	CreateContext(dpy Display, cfg Config, share Context, attribs []int32) Context
	DestroyContext(dpy Display, ctx Context) bool
	CreateWindowSurface(dpy Display, cfg Config, win NativeWindow, attribs []int32) Surface
	CreatePbufferSurface(dpy Display, cfg Config, attribs []int32) Surface
	DestroySurface(dpy Display, surf Surface) bool
	MakeCurrent(dpy Display, draw, read Surface, ctx Context) bool
	SwapBuffers(dpy Display, surf Surface) bool
	SwapInterval(dpy Display, interval int32) bool
	QuerySurface(dpy Display, surf Surface, attr int32) (int32, bool)
	GetError() int32
	GetProcAddress(name string) unsafe.Pointer
}

// terminated appends the None terminator EGL expects.
func terminated(attribs []int32) []int32 {
	out := make([]int32, 0, len(attribs)+1)
	out = append(out, attribs...)
	return append(out, None)
}
