package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionsFlagsBeatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("width: 320\nheight: 240\ncamera: screen\n"), 0o644))

	o, list, err := parseOptions([]string{"-config", path, "-height", "100", "-list"})
	require.NoError(t, err)
	assert.True(t, list)
	assert.Equal(t, 320, o.Width)
	assert.Equal(t, 100, o.Height)
	assert.Equal(t, "screen", o.Camera)
}

func TestParseOptionsDefaults(t *testing.T) {
	o, list, err := parseOptions(nil)
	require.NoError(t, err)
	assert.False(t, list)
	assert.Equal(t, 1280, o.Width)
	assert.NotEmpty(t, o.Video)
}

func TestParseOptionsInvalid(t *testing.T) {
	_, _, err := parseOptions([]string{"-api", "directx"})
	assert.Error(t, err)

	_, _, err = parseOptions([]string{"-nosuchflag"})
	assert.Error(t, err)
}
