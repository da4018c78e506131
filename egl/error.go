package egl

import "fmt"

var errorNames = map[int32]string{
	Success:           "EGL_SUCCESS",
	NotInitialized:    "EGL_NOT_INITIALIZED",
	BadAccess:         "EGL_BAD_ACCESS",
	BadAlloc:          "EGL_BAD_ALLOC",
	BadAttribute:      "EGL_BAD_ATTRIBUTE",
	BadConfig:         "EGL_BAD_CONFIG",
	BadContext:        "EGL_BAD_CONTEXT",
	BadCurrentSurface: "EGL_BAD_CURRENT_SURFACE",
	BadDisplay:        "EGL_BAD_DISPLAY",
	BadMatch:          "EGL_BAD_MATCH",
	BadNativePixmap:   "EGL_BAD_NATIVE_PIXMAP",
	BadNativeWindow:   "EGL_BAD_NATIVE_WINDOW",
	BadParameter:      "EGL_BAD_PARAMETER",
	BadSurface:        "EGL_BAD_SURFACE",
	ContextLost:       "EGL_CONTEXT_LOST",
}

// Error is a failed EGL call together with the eglGetError code read
// immediately after it.
type Error struct {
	Op   string
	Code int32
}

// ErrorName returns the symbolic name of an EGL error code.
func ErrorName(code int32) string {
	if name, ok := errorNames[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", code)
}

func (e *Error) Error() string {
	return fmt.Sprintf("egl: %s failed: %s", e.Op, ErrorName(e.Code))
}

// newError reads the pending EGL error for op.
func newError(lib Library, op string) *Error {
	return &Error{Op: op, Code: lib.GetError()}
}
