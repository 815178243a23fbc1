package providerdrv

import (
	"fmt"
	"sort"

	"github.com/kompox/tmpcluster/domain/model"
)

// Driver supplies the identity and management-plane ports of one cloud backend.
// Implementations live under adapters/drivers/provider/<name> and return their
// registered name via ID().
type Driver interface {
	// ID returns the driver identifier (e.g., "azure").
	ID() string

	// TokenPort returns the token provider of this backend.
	TokenPort() model.TokenPort

	// RemotePort returns the resource group and deployment client factory.
	RemotePort() model.RemotePort
}

// driverFactory is a constructor function for a provider driver.
type driverFactory func(options map[string]string) (Driver, error)

// registry holds registered drivers by name.
var registry = map[string]driverFactory{}

// Register makes a driver available by the given name. Drivers should call
// this from their init() function.
func Register(name string, factory driverFactory) {
	registry[name] = factory
}

// GetDriverFactory returns the driver factory function for the given name.
func GetDriverFactory(name string) (driverFactory, bool) {
	factory, exists := registry[name]
	return factory, exists
}

// New constructs the named driver with its options.
func New(name string, options map[string]string) (Driver, error) {
	factory, exists := GetDriverFactory(name)
	if !exists {
		return nil, fmt.Errorf("unknown provider driver: %s (registered: %v)", name, Names())
	}
	d, err := factory(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver %s: %w", name, err)
	}
	return d, nil
}

// Names lists the registered driver names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
