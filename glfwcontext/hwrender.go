package glfwcontext

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	glfw "github.com/go-gl/glfw/v3.3/glfw"
)

// framebuffer is the render target handed to clients that asked for
// hardware rendering. Its contents reach the window at SwapBuffers.
type framebuffer interface {
	Bind()
	Resize(width, height int) error
	Blit(width, height int)
	Delete()
}

var newFramebuffer = func(width, height int) (framebuffer, error) {
	return newGLFramebuffer(width, height)
}

var glLoaded bool

type glFramebuffer struct {
	fbo           uint32
	texture       uint32
	depth         uint32
	width, height int
}

func newGLFramebuffer(width, height int) (*glFramebuffer, error) {
	if !glLoaded {
		if err := gl.InitWithProcAddrFunc(glfw.GetProcAddress); err != nil {
			return nil, fmt.Errorf("load gl: %w", err)
		}
		glLoaded = true
	}
	fb := &glFramebuffer{}
	gl.GenFramebuffers(1, &fb.fbo)
	gl.GenTextures(1, &fb.texture)
	gl.GenRenderbuffers(1, &fb.depth)
	if err := fb.Resize(width, height); err != nil {
		fb.Delete()
		return nil, err
	}
	return fb, nil
}

func (fb *glFramebuffer) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
}

func (fb *glFramebuffer) Resize(width, height int) error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.BindTexture(gl.TEXTURE_2D, fb.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.texture, 0)
	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, fb.depth)
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return fmt.Errorf("hw render framebuffer incomplete: 0x%x", status)
	}
	fb.width, fb.height = width, height
	return nil
}

// Blit copies the framebuffer onto the default framebuffer, scaled to the
// window, and leaves the framebuffer bound for the next frame.
func (fb *glFramebuffer) Blit(width, height int) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fb.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, int32(fb.width), int32(fb.height), 0, 0, int32(width), int32(height), gl.COLOR_BUFFER_BIT, gl.LINEAR)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
}

func (fb *glFramebuffer) Delete() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.DeleteFramebuffers(1, &fb.fbo)
	gl.DeleteTextures(1, &fb.texture)
	gl.DeleteRenderbuffers(1, &fb.depth)
}
