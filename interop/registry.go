package interop

import (
	"crypto/sha256"
	"encoding/binary"
)

// ServiceID derives the wire id of an interop service: the first four bytes
// of SHA-256 of the service name, read as a little-endian u32.
func ServiceID(name string) uint32 {
	h := sha256.Sum256([]byte(name))
	return binary.LittleEndian.Uint32(h[:4])
}

// HandlerFunc implements one interop service. Arguments are popped from and
// results pushed to the current evaluation stack.
type HandlerFunc func(ae *ApplicationEngine) error

// Descriptor declares one interop service: its gas price and the CallFlags a
// caller must hold, checked before the handler runs.
type Descriptor struct {
	Name          string
	ID            uint32
	Price         int64
	RequiredFlags CallFlags
	Handler       HandlerFunc
}

// Registry maps syscall ids to service descriptors.
type Registry struct {
	services map[uint32]*Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{services: make(map[uint32]*Descriptor)}
}

// Register adds d, deriving its ID from its name. Registering a second
// service with a colliding id panics; ids are fixed by the protocol, so a
// collision is a programming error.
func (r *Registry) Register(d *Descriptor) {
	d.ID = ServiceID(d.Name)
	if existing, ok := r.services[d.ID]; ok && existing.Name != d.Name {
		panic("interop: service id collision: " + existing.Name + " / " + d.Name)
	}
	r.services[d.ID] = d
}

// Lookup returns the descriptor for id, nil when unknown.
func (r *Registry) Lookup(id uint32) *Descriptor {
	return r.services[id]
}

// DefaultRegistry carries the built-in System.* services.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerRuntimeServices(r)
	registerStorageServices(r)
	registerCryptoServices(r)
	return r
}
