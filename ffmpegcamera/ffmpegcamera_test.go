package ffmpegcamera

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/richinsley/gfxdriver/camera"
)

func TestRegistered(t *testing.T) {
	assert.Contains(t, camera.Backends(), Name)
}

func TestCapabilityGate(t *testing.T) {
	d, err := New(camera.Request{Caps: camera.CapsGLTexture})
	assert.ErrorIs(t, err, camera.ErrCapsUnsupported)
	assert.Nil(t, d)
	camera.Free(d)

	d, err = New(camera.Request{Caps: camera.CapsRawFramebuffer | camera.CapsGLTexture})
	require.NoError(t, err)
	assert.Equal(t, defaultWidth, d.width)
	assert.Equal(t, defaultHeight, d.height)
}

func TestDeviceInput(t *testing.T) {
	input, args, err := deviceInput("linux", "", 320, 240)
	require.NoError(t, err)
	assert.Equal(t, "/dev/video0", input)
	assert.Equal(t, "v4l2", args["f"])
	assert.Equal(t, "320x240", args["video_size"])

	input, args, err = deviceInput("darwin", "1", 320, 240)
	require.NoError(t, err)
	assert.Equal(t, "1", input)
	assert.Equal(t, "avfoundation", args["f"])

	input, args, err = deviceInput("windows", "Integrated Camera", 320, 240)
	require.NoError(t, err)
	assert.Equal(t, "video=Integrated Camera", input)
	assert.Equal(t, "dshow", args["f"])

	_, _, err = deviceInput("windows", "", 320, 240)
	assert.Error(t, err)
	_, _, err = deviceInput("plan9", "", 320, 240)
	assert.ErrorIs(t, err, camera.ErrUnsupported)
}

func TestStreamArgs(t *testing.T) {
	d, err := New(camera.Request{Caps: camera.CapsRawFramebuffer, Device: "/dev/video2", Width: 160, Height: 120})
	require.NoError(t, err)
	s, err := d.stream("linux")
	require.NoError(t, err)

	args := s.GetArgs()
	assert.Contains(t, args, "/dev/video2")
	assert.Contains(t, args, "bgra")
	assert.Contains(t, args, "rawvideo")
	assert.Equal(t, "pipe:", args[len(args)-1])
	assert.False(t, ffmpeg.LogCompiledCommand)
}

func TestPollDeliversNewestFrame(t *testing.T) {
	d, err := New(camera.Request{Caps: camera.CapsRawFramebuffer, Width: 2, Height: 1})
	require.NoError(t, err)

	const frameSize = 2 * 1 * 4
	data := make([]byte, 2*frameSize+3)
	for i := range data {
		data[i] = byte(i / frameSize)
	}
	d.done = make(chan struct{})
	d.readFrames(bytes.NewReader(data))

	var got []byte
	texCalled := false
	ok := d.Poll(func(pix []byte, w, h, pitch int) {
		got = append([]byte(nil), pix...)
		assert.Equal(t, 2, w)
		assert.Equal(t, 1, h)
		assert.Equal(t, 8, pitch)
	}, func(uint32, uint32, [9]float32) { texCalled = true })
	require.True(t, ok)
	assert.False(t, texCalled)
	assert.Equal(t, bytes.Repeat([]byte{1}, frameSize), got)

	assert.False(t, d.Poll(func([]byte, int, int, int) { t.Fatal("frame delivered twice") }, nil))
}

func TestPollWithoutRawChannel(t *testing.T) {
	d, err := New(camera.Request{Caps: camera.CapsRawFramebuffer})
	require.NoError(t, err)
	assert.False(t, d.Poll(nil, func(uint32, uint32, [9]float32) {}))
}

func TestStartFailsWithoutExecutable(t *testing.T) {
	d, err := New(camera.Request{
		Caps:       camera.CapsRawFramebuffer,
		Device:     "cam",
		Executable: filepath.Join(t.TempDir(), "no-such-ffmpeg"),
	})
	require.NoError(t, err)
	assert.Error(t, d.Start())
	d.Stop()
	d.Close()
}

// fakeExecutable writes a shell script standing in for ffmpeg.
func fakeExecutable(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("needs /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestStopWithForkingExecutable(t *testing.T) {
	// cat runs as a child of the shell and keeps stdout open after the
	// shell is killed.
	exe := fakeExecutable(t, "cat /dev/zero")
	d, err := New(camera.Request{Caps: camera.CapsRawFramebuffer, Width: 2, Height: 1, Executable: exe})
	require.NoError(t, err)
	require.NoError(t, d.Start())

	require.Eventually(t, func() bool {
		return d.Poll(func([]byte, int, int, int) {}, nil)
	}, 5*time.Second, 10*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.Nil(t, d.cmd)
	assert.False(t, d.Poll(func([]byte, int, int, int) { t.Fatal("frame after Stop") }, nil))
}

func TestCloseNil(t *testing.T) {
	var d *Driver
	d.Close()
}

func TestParseDeviceListDarwin(t *testing.T) {
	out := `[AVFoundation indev @ 0x7f8] AVFoundation video devices:
[AVFoundation indev @ 0x7f8] [0] FaceTime HD Camera
[AVFoundation indev @ 0x7f8] [1] Capture screen 0
[AVFoundation indev @ 0x7f8] AVFoundation audio devices:
[AVFoundation indev @ 0x7f8] [0] MacBook Pro Microphone
dummy: Input/output error`
	assert.Equal(t, []string{"FaceTime HD Camera", "Capture screen 0"}, parseDeviceList("darwin", out))
}

func TestParseDeviceListWindows(t *testing.T) {
	modern := `[dshow @ 000001] "Integrated Camera" (video)
[dshow @ 000001]   Alternative name "@device_pnp_\\?\usb#vid_04f2"
[dshow @ 000001] "Microphone Array" (audio)
[dshow @ 000001]   Alternative name "@device_cm_{33D9A762}"`
	assert.Equal(t, []string{"Integrated Camera"}, parseDeviceList("windows", modern))

	legacy := `[dshow @ 0000] DirectShow video devices (some may be both video and audio devices)
[dshow @ 0000]  "USB Camera"
[dshow @ 0000]     Alternative name "@device_pnp_x"
[dshow @ 0000] DirectShow audio devices
[dshow @ 0000]  "Line In"`
	assert.Equal(t, []string{"USB Camera"}, parseDeviceList("windows", legacy))
}

func TestParseDeviceListEmpty(t *testing.T) {
	list := parseDeviceList("darwin", "")
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
