// Package graphics defines the contract every rendering context backend
// implements, and the registry a host uses to select one by name.
package graphics

import "unsafe"

// ContextDriver owns one native rendering context and the drawable surface
// bound to it. The expected call order is
//
//	New -> BindAPI -> SetVideoMode -> { CheckWindow, SwapInterval, SwapBuffers }* -> Destroy
//
// Only construction, BindAPI and SetVideoMode can fail. A failed call leaves
// the driver fully rolled back: it is never left Active with a partially
// created context or surface. Per-frame calls made before SetVideoMode
// succeeds are no-ops.
//
// Implementations do no locking; the host serializes all calls.
type ContextDriver interface {
	// Name is the identifier the backend is registered under.
	Name() string

	// API reports the rendering API family currently bound, or the family
	// the backend prefers when nothing has been bound yet.
	API() API

	// BindAPI validates and records the API family and version used by the
	// next SetVideoMode. An unsupported request returns ErrAPIUnsupported and
	// changes nothing.
	BindAPI(api API, major, minor int) error

	// SetVideoMode creates the context and its surface. Sizes are drawable
	// pixels, the same unit CheckWindow and VideoSize report. Calling it
	// again while Active tears down and recreates both; if that fails the
	// cached size reads zero.
	SetVideoMode(width, height int, fullscreen bool) error

	// SwapInterval sets the number of vblanks between presented frames.
	// Best effort.
	SwapInterval(interval int)

	// SwapBuffers presents the current drawable.
	SwapBuffers()

	// CheckWindow polls the platform for size changes and quit requests.
	// Resize is reported once per change.
	CheckWindow() WindowStatus

	// VideoSize and RefreshRate return cached values and never touch the
	// platform.
	VideoSize() (width, height int)
	RefreshRate() float32

	// BindHWRender toggles composition with an external hardware render path.
	BindHWRender(enable bool)

	Flags() Flags
	SetFlags(flags Flags)

	HasFocus() bool
	SuppressScreensaver(enable bool) bool
	ShowMouse(visible bool)

	// HasWindowed reports whether the backend can present into a desktop
	// window rather than owning the whole display.
	HasWindowed() bool

	// ProcAddress resolves a rendering API entry point for the bound API.
	ProcAddress(name string) unsafe.Pointer

	// Destroy releases the surface, then the context, then everything else.
	// Safe to call more than once and on a nil driver.
	Destroy()
}

// WindowStatus is the result of one CheckWindow poll.
type WindowStatus struct {
	Quit   bool
	Resize bool
	Width  int
	Height int
}

// Host carries what the application knows about its environment when it
// constructs a driver. Zero values mean "platform default".
type Host struct {
	Title         string
	NativeDisplay uintptr
	NativeWindow  uintptr
}
