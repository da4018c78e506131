package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"runtime"
	"time"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/gfxdriver"
	"github.com/richinsley/gfxdriver/camera"
	"github.com/richinsley/gfxdriver/ffmpegcamera"
	"github.com/richinsley/gfxdriver/graphics"
	"github.com/richinsley/gfxdriver/host"
	"github.com/richinsley/gfxdriver/options"

	_ "github.com/richinsley/gfxdriver/fixedctx"
	_ "github.com/richinsley/gfxdriver/glfwcontext"
	_ "github.com/richinsley/gfxdriver/headless"
	_ "github.com/richinsley/gfxdriver/nullcamera"
	_ "github.com/richinsley/gfxdriver/screencam"
)

func init() {
	runtime.LockOSThread()
}

// parseOptions applies the config file, then any flag given explicitly on
// the command line.
func parseOptions(args []string) (o *options.Options, list bool, err error) {
	fs := flag.NewFlagSet("gfxdriver", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	listFlag := fs.Bool("list", false, "list backends and capture devices, then exit")
	o = options.Default()
	o.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}

	if *configPath != "" {
		fromFile, err := options.Load(*configPath)
		if err != nil {
			return nil, false, err
		}
		over := flag.NewFlagSet("override", flag.ContinueOnError)
		fromFile.RegisterFlags(over)
		fs.Visit(func(f *flag.Flag) {
			if over.Lookup(f.Name) != nil {
				over.Set(f.Name, f.Value.String())
			}
		})
		o = fromFile
	}
	return o, *listFlag, o.Validate()
}

func listBackends() {
	fmt.Println("context backends:")
	for _, name := range graphics.Drivers() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("capture backends:")
	for _, name := range camera.Backends() {
		devices, err := camera.Devices(name)
		switch {
		case err != nil:
			fmt.Printf("  %s (device listing failed: %v)\n", name, err)
		case len(devices) == 0:
			fmt.Printf("  %s (no devices)\n", name)
		default:
			fmt.Printf("  %s\n", name)
			for _, d := range devices {
				fmt.Printf("    %s\n", d)
			}
		}
	}
}

func run(ctx context.Context, o *options.Options) error {
	api, _ := o.RenderAPI()
	video, err := host.OpenVideo(o.Video, graphics.Host{Title: "gfxdriver"}, host.VideoMode{
		API:          api,
		Major:        o.Major,
		Minor:        o.Minor,
		Width:        o.Width,
		Height:       o.Height,
		Fullscreen:   o.Fullscreen,
		SwapInterval: o.VSync,
		HWRender:     o.HWRender,
		Remode:       o.Remode,
	})
	if err != nil {
		return err
	}
	defer video.Close()
	drv := video.Driver
	slog.Info("video ready", "driver", video.Name, "api", drv.API(), "flags", drv.Flags(), "refresh", drv.RefreshRate())

	glReady := true
	if err := gl.InitWithProcAddrFunc(drv.ProcAddress); err != nil {
		slog.Warn("gl entry points unavailable, presenting without drawing", "error", err)
		glReady = false
	}

	var cam *host.Camera
	if o.Camera != "" {
		caps, _ := o.Caps()
		cam = host.OpenCamera(o.Camera, camera.Request{
			Device:     o.CameraDevice,
			Caps:       caps,
			Width:      o.CameraWidth,
			Height:     o.CameraHeight,
			Executable: o.FFmpegPath,
		})
		defer cam.Close()
	}

	start := time.Now()
	render := func(w, h int) {
		if !glReady {
			return
		}
		t := time.Since(start).Seconds()
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.ClearColor(
			float32(0.5+0.5*math.Sin(t)),
			float32(0.5+0.5*math.Sin(t+2*math.Pi/3)),
			float32(0.5+0.5*math.Sin(t+4*math.Pi/3)),
			1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
	}

	var lastCamera [2]int
	onFrame := func(_ []byte, w, h, _ int) { lastCamera = [2]int{w, h} }
	for {
		select {
		case <-ctx.Done():
			slog.Info("interrupted")
			return nil
		default:
		}
		if video.Frame(render) {
			slog.Info("quit requested", "driver", video.Name)
			break
		}
		cam.Poll(onFrame, nil)
		if o.Frames > 0 && video.Frames() >= uint64(o.Frames) {
			break
		}
	}

	elapsed := time.Since(start)
	slog.Info("done",
		"frames", video.Frames(),
		"fps", float64(video.Frames())/math.Max(elapsed.Seconds(), 1e-9),
		"camera_frames", cam.Frames(),
		"camera_size", lastCamera)
	return nil
}

func main() {
	o, list, err := parseOptions(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, _ := o.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	gfxdriver.SetLogger(logger)

	if o.FFmpegPath != "" {
		ffmpegcamera.Executable = o.FFmpegPath
	}
	if list {
		listBackends()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, o); err != nil {
		slog.Error("gfxdriver failed", "error", err)
		os.Exit(1)
	}
}
