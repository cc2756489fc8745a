// Package scope encodes named permissions as bits of a single integer mask.
// Stored scope values depend on the bit assignments below, so the table is
// append-only: a new scope takes the next unused power of two and existing
// bits are never renumbered.
package scope

import (
	"errors"
	"fmt"
)

// Mask is a set of scopes encoded as the bitwise OR of their bits.
type Mask int64

const (
	Public          Mask = 1
	Profile         Mask = 2
	Follow          Mask = 4
	Location        Mask = 8
	CurrentLocation Mask = 16
	VehicleEvents   Mask = 32
	VehicleProfile  Mask = 64
	VehicleVIN      Mask = 128
	Trip            Mask = 256
	Behavior        Mask = 512
	AdapterBasic    Mask = 1024
	CrashAlert      Mask = 2048
	Patron          Mask = 4096
	Automatic       Mask = 1 << 30
)

// ErrUnknownScope reports a scope name that is not in the registry.
var ErrUnknownScope = errors.New("scope: unknown scope")

type entry struct {
	name string
	bit  Mask
}

// Registry is the process-wide scope table. It is immutable after
// construction and shared by reference between services.
type Registry struct {
	entries []entry
	byName  map[string]Mask
	all     Mask
}

// NewRegistry builds a registry from name/bit pairs. Order is preserved for
// Names output.
func NewRegistry(pairs map[string]Mask, order []string) (*Registry, error) {
	r := &Registry{byName: make(map[string]Mask, len(pairs))}
	for _, name := range order {
		bit, ok := pairs[name]
		if !ok {
			return nil, fmt.Errorf("scope: %q listed in order but not defined", name)
		}
		if bit <= 0 || bit&(bit-1) != 0 {
			return nil, fmt.Errorf("scope: %q bit %d is not a power of two", name, bit)
		}
		if r.all&bit != 0 {
			return nil, fmt.Errorf("scope: bit %d assigned twice", bit)
		}
		r.entries = append(r.entries, entry{name: name, bit: bit})
		r.byName[name] = bit
		r.all |= bit
	}
	return r, nil
}

// DefaultRegistry returns the registry with the canonical bit table.
func DefaultRegistry() *Registry {
	order := []string{
		"public", "profile", "follow", "location", "current_location",
		"vehicle:events", "vehicle:profile", "vehicle:vin", "trip",
		"behavior", "adapter:basic", "crash_alert", "patron", "automatic",
	}
	pairs := map[string]Mask{
		"public":           Public,
		"profile":          Profile,
		"follow":           Follow,
		"location":         Location,
		"current_location": CurrentLocation,
		"vehicle:events":   VehicleEvents,
		"vehicle:profile":  VehicleProfile,
		"vehicle:vin":      VehicleVIN,
		"trip":             Trip,
		"behavior":         Behavior,
		"adapter:basic":    AdapterBasic,
		"crash_alert":      CrashAlert,
		"patron":           Patron,
		"automatic":        Automatic,
	}
	r, err := NewRegistry(pairs, order)
	if err != nil {
		// The canonical table is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return r
}

// Mask ORs together the bits of the named scopes. Any unregistered name
// fails the whole call with ErrUnknownScope.
func (r *Registry) Mask(names ...string) (Mask, error) {
	var m Mask
	for _, name := range names {
		bit, ok := r.byName[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownScope, name)
		}
		m |= bit
	}
	return m, nil
}

// Names returns every registered scope whose bit is set in m, in
// registration order.
func (r *Registry) Names(m Mask) []string {
	var names []string
	for _, e := range r.entries {
		if m&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	return names
}

// All returns the union of every registered bit.
func (r *Registry) All() Mask { return r.all }

// Valid reports whether m is built only from registered bits.
func (r *Registry) Valid(m Mask) bool { return Contains(m, r.all) }

// Contains reports whether every bit of requested is present in allowed.
// This is the single containment rule used everywhere scope is checked.
func Contains(requested, allowed Mask) bool {
	return requested == requested&allowed
}
