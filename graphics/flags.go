package graphics

import "strings"

// Flags advertises backend features. Purely advisory.
type Flags uint32

const (
	FlagGLCore Flags = 1 << iota
	FlagMultisampling
	FlagCustomizableSwapchain
	FlagHardSync
	FlagBlackFrameInsertion
	FlagMenuFrameBufferBlit
	FlagShadersGLSL
	FlagShadersCG
	FlagShadersHLSL
	FlagShadersSlang
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagGLCore, "gl-core"},
	{FlagMultisampling, "multisampling"},
	{FlagCustomizableSwapchain, "customizable-swapchain"},
	{FlagHardSync, "hard-sync"},
	{FlagBlackFrameInsertion, "black-frame-insertion"},
	{FlagMenuFrameBufferBlit, "menu-framebuffer-blit"},
	{FlagShadersGLSL, "glsl"},
	{FlagShadersCG, "cg"},
	{FlagShadersHLSL, "hlsl"},
	{FlagShadersSlang, "slang"},
}

func (f Flags) Has(flag Flags) bool { return f&flag == flag }

func (f Flags) Set(flag Flags) Flags { return f | flag }

func (f Flags) Clear(flag Flags) Flags { return f &^ flag }

func (f Flags) String() string {
	var names []string
	for _, n := range flagNames {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
