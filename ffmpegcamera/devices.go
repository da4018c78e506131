package ffmpegcamera

import (
	"bufio"
	"bytes"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Devices lists capture devices: /dev/video* nodes on linux, ffmpeg's own
// device listing elsewhere. No devices is an empty list, not an error.
func Devices() ([]string, error) {
	switch runtime.GOOS {
	case "linux":
		nodes, err := filepath.Glob("/dev/video*")
		if err != nil {
			return nil, err
		}
		sort.Strings(nodes)
		if nodes == nil {
			nodes = []string{}
		}
		return nodes, nil
	case "darwin":
		return listDevices("avfoundation", "darwin")
	case "windows":
		return listDevices("dshow", "windows")
	}
	return []string{}, nil
}

func listDevices(format, goos string) ([]string, error) {
	var out bytes.Buffer
	// ffmpeg exits non-zero after printing the list.
	_ = ffmpeg.Input("dummy", ffmpeg.KwArgs{"f": format, "list_devices": "true"}).
		Output("-", ffmpeg.KwArgs{"f": "null"}).
		SetFfmpegPath(Executable).
		Silent(true).
		WithErrorOutput(&out).
		Run()
	return parseDeviceList(goos, out.String()), nil
}

var (
	avfoundationDevice = regexp.MustCompile(`\]\s*\[\d+\]\s+(.+)$`)
	dshowDevice        = regexp.MustCompile(`"([^"]+)"(\s+\((video|audio|none)\))?`)
)

// parseDeviceList extracts video device names from ffmpeg's list_devices
// output.
func parseDeviceList(goos, out string) []string {
	devices := []string{}
	inVideo := false
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		switch goos {
		case "darwin":
			switch {
			case strings.Contains(line, "video devices:"):
				inVideo = true
			case strings.Contains(line, "audio devices:"):
				inVideo = false
			case inVideo:
				if m := avfoundationDevice.FindStringSubmatch(line); m != nil {
					devices = append(devices, strings.TrimSpace(m[1]))
				}
			}
		case "windows":
			switch {
			case strings.Contains(line, "DirectShow video devices"):
				inVideo = true
			case strings.Contains(line, "DirectShow audio devices"):
				inVideo = false
			case strings.Contains(line, "Alternative name"):
			default:
				m := dshowDevice.FindStringSubmatch(line)
				if m == nil {
					continue
				}
				if m[3] == "video" || (m[3] == "" && inVideo) {
					devices = append(devices, m[1])
				}
			}
		}
	}
	return devices
}
