package camera

import (
	"fmt"
	"sort"
	"sync"

	"github.com/richinsley/gfxdriver"
)

// Backend describes a capture implementation.
type Backend struct {
	Name string
	// Supported is every channel the backend can feed.
	Supported Caps
	// New opens a session. It is only called once the request has passed
	// the capability check.
	New func(Request) (Driver, error)
	// Devices lists device identifiers. An empty list means no devices.
	Devices func() ([]string, error)
}

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Backend)
)

// Register makes b available to Open. It panics on a duplicate name or a
// nil constructor.
func Register(b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if b.New == nil {
		panic("camera: Register constructor is nil for " + b.Name)
	}
	if _, dup := backends[b.Name]; dup {
		panic("camera: Register called twice for driver " + b.Name)
	}
	backends[b.Name] = b
}

// Backends returns the sorted names of the registered backends.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Backend, error) {
	backendsMu.RLock()
	b, ok := backends[name]
	backendsMu.RUnlock()
	if !ok {
		return Backend{}, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}
	return b, nil
}

// Check reports whether a backend supporting supported can serve req.
func Check(supported Caps, req Request) error {
	if _, ok := req.Caps.Negotiate(supported); !ok {
		return fmt.Errorf("%w: requested %s, backend feeds %s", ErrCapsUnsupported, req.Caps, supported)
	}
	return nil
}

// Open checks req against the named backend and, if it can be served, opens
// a session.
func Open(name string, req Request) (Driver, error) {
	b, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if err := Check(b.Supported, req); err != nil {
		gfxdriver.Logger().Warn("camera request refused", "driver", name, "caps", req.Caps)
		return nil, err
	}
	d, err := b.New(req)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	gfxdriver.Logger().Info("camera opened", "driver", name, "device", req.Device, "width", req.Width, "height", req.Height)
	return d, nil
}

// Devices lists the devices of the named backend. The result is never nil
// when err is nil.
func Devices(name string) ([]string, error) {
	b, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if b.Devices == nil {
		return []string{}, nil
	}
	list, err := b.Devices()
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}
