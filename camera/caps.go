package camera

import (
	"fmt"
	"strings"
)

// Caps is the set of frame channels a request asks for or a backend can
// feed. Bit values match the libretro camera API.
type Caps uint8

const (
	CapsGLTexture Caps = 1 << iota
	CapsRawFramebuffer
)

var capsNames = []struct {
	caps Caps
	name string
}{
	{CapsGLTexture, "gl-texture"},
	{CapsRawFramebuffer, "raw-framebuffer"},
}

func (c Caps) Has(caps Caps) bool { return c&caps == caps }

func (c Caps) String() string {
	var names []string
	for _, n := range capsNames {
		if c.Has(n.caps) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParseCaps reads a "|" or "," separated list of channel names. "raw" and
// "texture" are accepted as short forms.
func ParseCaps(s string) (Caps, error) {
	var c Caps
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "raw", "raw-framebuffer":
			c |= CapsRawFramebuffer
		case "texture", "gl-texture":
			c |= CapsGLTexture
		case "none", "":
		default:
			return 0, fmt.Errorf("camera: unknown capability %q", f)
		}
	}
	return c, nil
}

// Negotiate picks the channel frames will be delivered on when a request
// for c meets a backend supporting supported. ok is false when the two
// share no channel. Raw framebuffer wins when both are possible.
func (c Caps) Negotiate(supported Caps) (channel Caps, ok bool) {
	common := c & supported
	switch {
	case common.Has(CapsRawFramebuffer):
		return CapsRawFramebuffer, true
	case common.Has(CapsGLTexture):
		return CapsGLTexture, true
	}
	return 0, false
}
