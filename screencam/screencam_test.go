package screencam

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/gfxdriver/camera"
)

func fakeScreen(t *testing.T, screen image.Rectangle, screenErr error) *int {
	t.Helper()
	origRect, origCapture := screenRect, captureRect
	t.Cleanup(func() { screenRect, captureRect = origRect, origCapture })

	grabs := new(int)
	screenRect = func() (image.Rectangle, error) { return screen, screenErr }
	captureRect = func(r image.Rectangle) (*image.RGBA, error) {
		*grabs++
		img := image.NewRGBA(r)
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i+0], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 10, 20, 30, 255
		}
		return img, nil
	}
	return grabs
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, camera.Backends(), Name)
}

func TestCaptureArea(t *testing.T) {
	screen := image.Rect(0, 0, 1920, 1080)
	assert.Equal(t, screen, captureArea(screen, 0, 0))
	assert.Equal(t, image.Rect(0, 0, 640, 480), captureArea(screen, 640, 480))
	assert.Equal(t, image.Rect(0, 0, 1920, 200), captureArea(screen, 4000, 200))

	offset := image.Rect(100, 50, 300, 150)
	assert.Equal(t, image.Rect(100, 50, 200, 100), captureArea(offset, 100, 50))
}

func TestPollDeliversBGRA(t *testing.T) {
	grabs := fakeScreen(t, image.Rect(0, 0, 800, 600), nil)
	d, err := camera.Open(Name, camera.Request{Caps: camera.CapsRawFramebuffer, Width: 4, Height: 2})
	require.NoError(t, err)
	defer camera.Free(d)

	assert.False(t, d.Poll(func([]byte, int, int, int) { t.Fatal("poll before start") }, nil))
	require.NoError(t, d.Start())

	var first [4]byte
	var size [3]int
	ok := d.Poll(func(pix []byte, w, h, pitch int) {
		copy(first[:], pix)
		size = [3]int{w, h, pitch}
	}, func(uint32, uint32, [9]float32) { t.Fatal("texture channel used") })
	require.True(t, ok)
	assert.Equal(t, [4]byte{30, 20, 10, 255}, first)
	assert.Equal(t, [3]int{4, 2, 16}, size)
	assert.Equal(t, 1, *grabs)

	d.Stop()
	assert.False(t, d.Poll(func([]byte, int, int, int) {}, nil))
	assert.Equal(t, 1, *grabs)
}

func TestStartFailsWithoutScreen(t *testing.T) {
	fakeScreen(t, image.Rectangle{}, errors.New("no display"))
	d, err := New(camera.Request{Caps: camera.CapsRawFramebuffer})
	require.NoError(t, err)
	assert.Error(t, d.Start())

	list, err := Devices()
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestEmptyScreenRefused(t *testing.T) {
	fakeScreen(t, image.Rectangle{}, nil)
	d, err := New(camera.Request{Caps: camera.CapsRawFramebuffer})
	require.NoError(t, err)
	assert.ErrorIs(t, d.Start(), camera.ErrUnsupported)
}

func TestDevices(t *testing.T) {
	fakeScreen(t, image.Rect(0, 0, 10, 10), nil)
	list, err := camera.Devices(Name)
	require.NoError(t, err)
	assert.Equal(t, []string{DeviceName}, list)
}

func TestTextureRequestRefused(t *testing.T) {
	d, err := New(camera.Request{Caps: camera.CapsGLTexture})
	assert.ErrorIs(t, err, camera.ErrCapsUnsupported)
	assert.Nil(t, d)
	camera.Free(d)
}
