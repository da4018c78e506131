package graphics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/richinsley/gfxdriver"
)

// Factory constructs a driver in the Initialized state. It performs any
// context-independent platform setup, such as opening the display
// connection, and must not assume a window exists yet. On failure it
// releases whatever it acquired.
type Factory func(host Host) (ContextDriver, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Factory)
)

// Register makes a backend available under name. Backends call it from
// init. It panics if name is registered twice or f is nil.
func Register(name string, f Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if f == nil {
		panic("graphics: Register factory is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("graphics: Register called twice for driver " + name)
	}
	drivers[name] = f
}

// Drivers returns the sorted names of the registered backends.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New initializes the backend registered under name.
func New(name string, host Host) (ContextDriver, error) {
	driversMu.RLock()
	f, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}
	d, err := f(host)
	if err != nil {
		gfxdriver.Logger().Warn("context driver init failed", "driver", name, "error", err)
		return nil, fmt.Errorf("init %s: %w", name, err)
	}
	gfxdriver.Logger().Info("context driver initialized", "driver", name)
	return d, nil
}

// Destroy calls d.Destroy when d is non-nil.
func Destroy(d ContextDriver) {
	if d == nil {
		return
	}
	d.Destroy()
}
