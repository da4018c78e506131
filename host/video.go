// Package host drives context and capture drivers the way a frontend does:
// it picks the first context backend that comes up, runs the per-frame
// window check and present, and treats a camera that will not open as no
// camera at all.
package host

import (
	"errors"
	"fmt"

	"github.com/richinsley/gfxdriver"
	"github.com/richinsley/gfxdriver/graphics"
)

// ErrNoBackend is returned when none of the requested backends came up.
var ErrNoBackend = errors.New("host: no usable context backend")

// VideoMode is what the host asks of a context backend.
type VideoMode struct {
	API          graphics.API
	Major, Minor int
	Width        int
	Height       int
	Fullscreen   bool
	SwapInterval int
	HWRender     bool
	// Remode re-runs SetVideoMode at the new size when the window resizes.
	Remode bool
}

// Video is an active context driver.
type Video struct {
	Driver graphics.ContextDriver
	Name   string

	mode   VideoMode
	frames uint64
}

// OpenVideo brings up the first backend in names that gets through init,
// API binding and mode setting. A backend failing any step is destroyed
// before the next is tried.
func OpenVideo(names []string, host graphics.Host, mode VideoMode) (*Video, error) {
	var errs []error
	for _, name := range names {
		d, err := openVideo(name, host, mode)
		if err != nil {
			gfxdriver.Logger().Warn("context backend unavailable", "driver", name, "error", err)
			errs = append(errs, err)
			continue
		}
		return &Video{Driver: d, Name: name, mode: mode}, nil
	}
	if len(errs) == 0 {
		return nil, ErrNoBackend
	}
	return nil, fmt.Errorf("%w: %w", ErrNoBackend, errors.Join(errs...))
}

func openVideo(name string, host graphics.Host, mode VideoMode) (graphics.ContextDriver, error) {
	d, err := graphics.New(name, host)
	if err != nil {
		return nil, err
	}
	if err := d.BindAPI(mode.API, mode.Major, mode.Minor); err != nil {
		d.Destroy()
		return nil, fmt.Errorf("%s: bind %s %d.%d: %w", name, mode.API, mode.Major, mode.Minor, err)
	}
	d.SwapInterval(mode.SwapInterval)
	d.BindHWRender(mode.HWRender)
	if err := d.SetVideoMode(mode.Width, mode.Height, mode.Fullscreen); err != nil {
		d.Destroy()
		return nil, fmt.Errorf("%s: set video mode: %w", name, err)
	}
	return d, nil
}

// Frame runs one frame: window check, render at the current size, present.
// It reports true when the platform asked to quit; render is not called
// then.
func (v *Video) Frame(render func(width, height int)) (quit bool) {
	st := v.Driver.CheckWindow()
	if st.Quit {
		return true
	}
	if st.Resize {
		gfxdriver.Logger().Debug("window resized", "driver", v.Name, "width", st.Width, "height", st.Height)
		if v.mode.Remode {
			if err := v.Driver.SetVideoMode(st.Width, st.Height, v.mode.Fullscreen); err != nil {
				gfxdriver.Logger().Error("re-mode-set failed", "driver", v.Name, "error", err)
				return true
			}
		}
	}
	w, h := v.Driver.VideoSize()
	if render != nil {
		render(w, h)
	}
	v.Driver.SwapBuffers()
	v.frames++
	return false
}

// Frames returns the number of frames presented.
func (v *Video) Frames() uint64 { return v.frames }

// Close destroys the driver. Safe on nil and when called again.
func (v *Video) Close() {
	if v == nil || v.Driver == nil {
		return
	}
	v.Driver.Destroy()
	v.Driver = nil
}
