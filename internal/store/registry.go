// Package store holds the registry of target store drivers.
//
// Drivers live in subpackages and register themselves in init(); import them
// for side effects to make them available:
//
//	import _ "github.com/JonMunkholm/cardmigrate/internal/store/mongostore"
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/cardmigrate/internal/core"
)

// Handle is an open connection to a target store.
// It is opened once per run and reused for every write.
type Handle interface {
	core.Store

	// Target names the destination, e.g. "pokemon_manager.pokemon_cards".
	Target() string

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Options carries the connection settings shared by all drivers.
type Options struct {
	URL            string
	Database       string // Mongo only
	Collection     string
	ConnectTimeout time.Duration
}

// OpenFunc opens a store handle.
type OpenFunc func(ctx context.Context, opts Options) (Handle, error)

// Driver describes a registered store implementation.
type Driver struct {
	Name        string // Value of STORE_DRIVER
	Description string
	Open        OpenFunc
}

var (
	registry   = make(map[string]Driver)
	registryMu sync.RWMutex
)

// Register adds a driver to the registry.
// Panics if a driver with the same name is already registered.
func Register(d Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[d.Name]; exists {
		panic(fmt.Sprintf("store driver already registered: %s", d.Name))
	}
	if d.Open == nil {
		panic(fmt.Sprintf("store driver %s has no Open func", d.Name))
	}

	registry[d.Name] = d
}

// Get returns a driver by name.
// Returns false if not found.
func Get(name string) (Driver, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	d, ok := registry[name]
	return d, ok
}

// All returns all registered drivers sorted by name.
func All() []Driver {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Driver, 0, len(registry))
	for _, d := range registry {
		result = append(result, d)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Open opens a handle with the named driver.
func Open(ctx context.Context, name string, opts Options) (Handle, error) {
	d, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown store driver %q", name)
	}

	h, err := d.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", name, err)
	}
	return h, nil
}

// Clear removes all registered drivers.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Driver)
}
