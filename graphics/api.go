package graphics

import (
	"fmt"
	"strings"
)

// API identifies a rendering API family.
type API int

const (
	APINone API = iota
	APIOpenGL
	APIOpenGLES
	APIOpenVG
	APIVulkan
)

var apiNames = map[API]string{
	APINone:     "none",
	APIOpenGL:   "opengl",
	APIOpenGLES: "opengles",
	APIOpenVG:   "openvg",
	APIVulkan:   "vulkan",
}

func (a API) String() string {
	if s, ok := apiNames[a]; ok {
		return s
	}
	return fmt.Sprintf("API(%d)", int(a))
}

// ParseAPI maps a user supplied name to an API. "gl" and "gles" are accepted
// as short forms.
func ParseAPI(s string) (API, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return APINone, nil
	case "opengl", "gl":
		return APIOpenGL, nil
	case "opengles", "gles":
		return APIOpenGLES, nil
	case "openvg", "vg":
		return APIOpenVG, nil
	case "vulkan", "vk":
		return APIVulkan, nil
	}
	return APINone, fmt.Errorf("unknown rendering API %q", s)
}
