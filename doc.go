// Package gfxdriver is a platform backend layer that hands an application a
// rendering surface and a capture device through swappable drivers.
//
// Context drivers live in the graphics package and its backends (fixedctx,
// headless, glfwcontext). Capture drivers live in the camera package and its
// backends (nullcamera, ffmpegcamera, screencam). The host package shows the
// call order an application is expected to follow.
//
// Every driver operation is meant to be called from one thread, normally the
// render thread. Drivers do not lock on the caller's behalf.
package gfxdriver
