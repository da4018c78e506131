// Package options holds the settings of the gfxdriver executable. Values
// come from an optional YAML file and are then overridden by command-line
// flags.
package options

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/richinsley/gfxdriver/camera"
	"github.com/richinsley/gfxdriver/graphics"
)

const (
	maxConfigSize = 1 << 20
	maxDimension  = 16384
)

// Options is the full configuration.
type Options struct {
	// Video lists context backends in order of preference.
	Video      []string `yaml:"video"`
	API        string   `yaml:"api"`
	Major      int      `yaml:"major"`
	Minor      int      `yaml:"minor"`
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	Fullscreen bool     `yaml:"fullscreen"`
	VSync      int      `yaml:"vsync"`
	HWRender   bool     `yaml:"hw_render"`
	Remode     bool     `yaml:"remode"`
	// Frames stops the render loop after that many frames. 0 runs until
	// the window asks to quit.
	Frames int `yaml:"frames"`

	Camera       string `yaml:"camera"`
	CameraDevice string `yaml:"camera_device"`
	CameraCaps   string `yaml:"camera_caps"`
	CameraWidth  int    `yaml:"camera_width"`
	CameraHeight int    `yaml:"camera_height"`
	FFmpegPath   string `yaml:"ffmpeg_path"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the settings used when nothing is configured.
func Default() *Options {
	return &Options{
		Video:        []string{"glfw", "egl-headless", "egl-fixed"},
		API:          "opengl",
		Major:        3,
		Minor:        3,
		Width:        1280,
		Height:       720,
		VSync:        1,
		CameraCaps:   "raw",
		CameraWidth:  640,
		CameraHeight: 480,
		LogLevel:     "info",
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Options, error) {
	o := Default()
	if path == "" {
		return o, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return o, nil
		}
		return nil, err
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config %s too large: %d bytes", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return o, nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// Validate clamps out of range numbers and rejects names that do not
// parse.
func (o *Options) Validate() error {
	if len(o.Video) == 0 {
		return errors.New("no video backend configured")
	}
	if _, err := o.RenderAPI(); err != nil {
		return err
	}
	if _, err := o.Caps(); err != nil {
		return err
	}
	if _, err := o.Level(); err != nil {
		return err
	}
	o.Width = clamp(o.Width, 0, maxDimension)
	o.Height = clamp(o.Height, 0, maxDimension)
	o.CameraWidth = clamp(o.CameraWidth, 0, maxDimension)
	o.CameraHeight = clamp(o.CameraHeight, 0, maxDimension)
	o.VSync = max(o.VSync, 0)
	o.Major = max(o.Major, 0)
	o.Minor = max(o.Minor, 0)
	o.Frames = max(o.Frames, 0)
	return nil
}

func (o *Options) RenderAPI() (graphics.API, error) { return graphics.ParseAPI(o.API) }

func (o *Options) Caps() (camera.Caps, error) { return camera.ParseCaps(o.CameraCaps) }

func (o *Options) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(o.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

// listValue is a comma separated flag.
type listValue struct{ list *[]string }

func (v listValue) String() string {
	if v.list == nil {
		return ""
	}
	return strings.Join(*v.list, ",")
}

func (v listValue) Set(s string) error {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	*v.list = out
	return nil
}

// RegisterFlags binds every option to fs, with the current values as
// defaults. Call it after Load so flags override the file.
func (o *Options) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(listValue{&o.Video}, "video", "comma separated context backends, in order of preference")
	fs.StringVar(&o.API, "api", o.API, "rendering API (opengl, opengles)")
	fs.IntVar(&o.Major, "major", o.Major, "rendering API major version")
	fs.IntVar(&o.Minor, "minor", o.Minor, "rendering API minor version")
	fs.IntVar(&o.Width, "width", o.Width, "video width")
	fs.IntVar(&o.Height, "height", o.Height, "video height")
	fs.BoolVar(&o.Fullscreen, "fullscreen", o.Fullscreen, "fullscreen video")
	fs.IntVar(&o.VSync, "vsync", o.VSync, "swap interval, 0 disables sync")
	fs.BoolVar(&o.HWRender, "hwrender", o.HWRender, "render through the hardware render path")
	fs.BoolVar(&o.Remode, "remode", o.Remode, "set the video mode again when the window resizes")
	fs.IntVar(&o.Frames, "frames", o.Frames, "stop after this many frames (0 = until quit)")
	fs.StringVar(&o.Camera, "camera", o.Camera, "capture backend (empty disables the camera)")
	fs.StringVar(&o.CameraDevice, "camera-device", o.CameraDevice, "capture device")
	fs.StringVar(&o.CameraCaps, "camera-caps", o.CameraCaps, "requested capture channels (raw, texture)")
	fs.IntVar(&o.CameraWidth, "camera-width", o.CameraWidth, "capture width")
	fs.IntVar(&o.CameraHeight, "camera-height", o.CameraHeight, "capture height")
	fs.StringVar(&o.FFmpegPath, "ffmpeg", o.FFmpegPath, "path to the ffmpeg executable")
	fs.StringVar(&o.LogLevel, "loglevel", o.LogLevel, "log level (debug, info, warn, error)")
}
