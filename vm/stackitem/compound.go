package stackitem

import (
	"fmt"
	"math/big"

	"github.com/colorfulnotion/neovm/vmerrors"
)

// compound carries the per-item counter the engine's ReferenceCounter uses
// to decide when a container's elements enter or leave the counted graph.
type compound struct {
	rc int
}

// IncRC increments the container's stack reference count and returns it.
func (c *compound) IncRC() int {
	c.rc++
	return c.rc
}

// RC returns the container's current stack reference count.
func (c *compound) RC() int { return c.rc }

// DecRC decrements the container's stack reference count and returns it.
func (c *compound) DecRC() int {
	c.rc--
	if c.rc < 0 {
		panic("stackitem: negative container reference count")
	}
	return c.rc
}

// Array is an ordered, mutable, identity-compared container.
type Array struct {
	compound
	value []Item
}

// NewArray wraps items without copying.
func NewArray(items []Item) *Array { return &Array{value: items} }

// Value returns the underlying element slice.
func (a *Array) Value() []Item { return a.value }

// Len returns the element count.
func (a *Array) Len() int { return len(a.value) }

// Append adds an element at the end.
func (a *Array) Append(item Item) { a.value = append(a.value, item) }

// Get returns the element at index i; bounds are the caller's concern.
func (a *Array) Get(i int) Item { return a.value[i] }

// Set replaces the element at index i.
func (a *Array) Set(i int, item Item) { a.value[i] = item }

// Remove deletes the element at index i, shifting later elements down.
func (a *Array) Remove(i int) {
	a.value = append(a.value[:i], a.value[i+1:]...)
}

// Clear removes all elements.
func (a *Array) Clear() { a.value = a.value[:0] }

// Reverse reverses the element order in place.
func (a *Array) Reverse() {
	for i, j := 0, len(a.value)-1; i < j; i, j = i+1, j-1 {
		a.value[i], a.value[j] = a.value[j], a.value[i]
	}
}

func (a *Array) Type() Type { return ArrayT }
func (a *Array) Bool() bool { return true }

func (a *Array) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Array to Integer", vmerrors.ErrInvalidCast)
}

func (a *Array) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Array to ByteString", vmerrors.ErrInvalidCast)
}

func (a *Array) Equals(other Item) bool { return a == other }

func (a *Array) String() string { return fmt.Sprintf("Array[%d]", len(a.value)) }

// Struct is reference-allocated like Array but compares by deep value.
type Struct struct {
	compound
	value []Item
}

// NewStruct wraps items without copying.
func NewStruct(items []Item) *Struct { return &Struct{value: items} }

// Value returns the underlying element slice.
func (s *Struct) Value() []Item { return s.value }

// Len returns the element count.
func (s *Struct) Len() int { return len(s.value) }

// Append adds an element at the end.
func (s *Struct) Append(item Item) { s.value = append(s.value, item) }

// Get returns the element at index i.
func (s *Struct) Get(i int) Item { return s.value[i] }

// Set replaces the element at index i.
func (s *Struct) Set(i int, item Item) { s.value[i] = item }

// Remove deletes the element at index i.
func (s *Struct) Remove(i int) {
	s.value = append(s.value[:i], s.value[i+1:]...)
}

// Clear removes all elements.
func (s *Struct) Clear() { s.value = s.value[:0] }

// Reverse reverses the element order in place.
func (s *Struct) Reverse() {
	for i, j := 0, len(s.value)-1; i < j; i, j = i+1, j-1 {
		s.value[i], s.value[j] = s.value[j], s.value[i]
	}
}

func (s *Struct) Type() Type { return StructT }
func (s *Struct) Bool() bool { return true }

func (s *Struct) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Struct to Integer", vmerrors.ErrInvalidCast)
}

func (s *Struct) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Struct to ByteString", vmerrors.ErrInvalidCast)
}

// Equals compares element-wise, recursing into nested structs. An
// identity-keyed visited set terminates comparison of cyclic shapes: a pair
// already under comparison is taken as equal, so equality is decided by the
// acyclic remainder.
func (s *Struct) Equals(other Item) bool {
	o, ok := other.(*Struct)
	if !ok {
		return false
	}
	return structEquals(s, o, make(map[visitedPair]bool))
}

func structEquals(a, b *Struct, visited map[visitedPair]bool) bool {
	if a == b {
		return true
	}
	pair := visitedPair{a, b}
	if visited[pair] {
		return true
	}
	visited[pair] = true
	if len(a.value) != len(b.value) {
		return false
	}
	for i := range a.value {
		sa, oka := a.value[i].(*Struct)
		sb, okb := b.value[i].(*Struct)
		if oka && okb {
			if !structEquals(sa, sb, visited) {
				return false
			}
			continue
		}
		if oka != okb {
			return false
		}
		if !a.value[i].Equals(b.value[i]) {
			return false
		}
	}
	return true
}

func (s *Struct) String() string { return fmt.Sprintf("Struct[%d]", len(s.value)) }

// MapElement is one key/value pair of a Map.
type MapElement struct {
	Key   Item
	Value Item
}

// Map is a mutable, identity-compared key/value container with deterministic
// insertion-order iteration. Keys are restricted to Boolean, Integer and
// ByteString and are matched by their canonical byte encoding.
type Map struct {
	compound
	elems []MapElement
	index map[string]int
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

// IsValidMapKey reports whether item may key a Map.
func IsValidMapKey(item Item) error {
	switch item.Type() {
	case BooleanT, IntegerT, ByteArrayT:
		b, err := item.TryBytes()
		if err != nil {
			return err
		}
		if len(b) > MaxMapKeySize {
			return fmt.Errorf("%w: map key of %d bytes", vmerrors.ErrInvalidIndex, len(b))
		}
		return nil
	default:
		return fmt.Errorf("%w: %s as map key", vmerrors.ErrInvalidCast, item.Type())
	}
}

func mapKey(item Item) string {
	b, err := item.TryBytes()
	if err != nil {
		panic("stackitem: unkeyable map key escaped validation")
	}
	return string(b)
}

// Len returns the number of pairs.
func (m *Map) Len() int { return len(m.elems) }

// Value returns the pairs in insertion order.
func (m *Map) Value() []MapElement { return m.elems }

// Has reports whether key is present.
func (m *Map) Has(key Item) bool {
	_, ok := m.index[mapKey(key)]
	return ok
}

// Get returns the value stored under key.
func (m *Map) Get(key Item) (Item, bool) {
	i, ok := m.index[mapKey(key)]
	if !ok {
		return nil, false
	}
	return m.elems[i].Value, true
}

// Set stores value under key, replacing any previous pair in place and
// returning the displaced value.
func (m *Map) Set(key, value Item) Item {
	k := mapKey(key)
	if i, ok := m.index[k]; ok {
		old := m.elems[i].Value
		m.elems[i].Value = value
		return old
	}
	m.index[k] = len(m.elems)
	m.elems = append(m.elems, MapElement{Key: key, Value: value})
	return nil
}

// Delete removes the pair stored under key, returning the removed pair.
func (m *Map) Delete(key Item) (MapElement, bool) {
	k := mapKey(key)
	i, ok := m.index[k]
	if !ok {
		return MapElement{}, false
	}
	removed := m.elems[i]
	m.elems = append(m.elems[:i], m.elems[i+1:]...)
	delete(m.index, k)
	for j := i; j < len(m.elems); j++ {
		m.index[mapKey(m.elems[j].Key)] = j
	}
	return removed, true
}

// Clear removes all pairs.
func (m *Map) Clear() {
	m.elems = m.elems[:0]
	m.index = make(map[string]int)
}

func (m *Map) Type() Type { return MapT }
func (m *Map) Bool() bool { return true }

func (m *Map) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Map to Integer", vmerrors.ErrInvalidCast)
}

func (m *Map) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Map to ByteString", vmerrors.ErrInvalidCast)
}

func (m *Map) Equals(other Item) bool { return m == other }

func (m *Map) String() string { return fmt.Sprintf("Map[%d]", len(m.elems)) }
