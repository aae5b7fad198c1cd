package vm

import (
	"fmt"

	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

// ReferenceCounter enforces the global stack item ceiling with a single
// monotonically adjusted integer rather than a reachability graph: every
// slot that starts referencing an item adds one, every slot that stops
// subtracts one, and a container's elements join or leave the count when
// the container itself first becomes (or stops being) referenced. The
// per-container counter inside compound items keeps cyclic structures from
// being walked more than once; a dropped compound whose remaining references
// are all internal to its own closure is swept so cycles do not leak units.
type ReferenceCounter struct {
	size int
}

// NewReferenceCounter returns a counter at zero.
func NewReferenceCounter() *ReferenceCounter {
	return &ReferenceCounter{}
}

// Size returns the current live reference count.
func (r *ReferenceCounter) Size() int { return r.size }

// Add records that one more slot references item.
func (r *ReferenceCounter) Add(item stackitem.Item) {
	r.size++
	switch t := item.(type) {
	case *stackitem.Array:
		if t.IncRC() > 1 {
			return
		}
		for _, elem := range t.Value() {
			r.Add(elem)
		}
	case *stackitem.Struct:
		if t.IncRC() > 1 {
			return
		}
		for _, elem := range t.Value() {
			r.Add(elem)
		}
	case *stackitem.Map:
		if t.IncRC() > 1 {
			return
		}
		for _, elem := range t.Value() {
			r.Add(elem.Key)
			r.Add(elem.Value)
		}
	}
}

// Remove records that one slot stopped referencing item.
func (r *ReferenceCounter) Remove(item stackitem.Item) {
	r.size--
	if !isCompound(item) {
		return
	}
	if decRC(item) == 0 {
		for _, elem := range compoundChildren(item) {
			r.Remove(elem)
		}
		return
	}
	// Surviving references may all come from inside the item's own
	// reachable closure (a cycle). Those hold no item alive.
	r.sweepOrphaned(item)
}

// sweepOrphaned drains a compound whose remaining references all originate
// from containers reachable from the compound itself. Every counted edge
// into a closure member is tallied against the member's rc: when they match
// for the whole closure, no slot outside it references any member and the
// closure's units are removed from the count.
func (r *ReferenceCounter) sweepOrphaned(item stackitem.Item) {
	inbound := map[stackitem.Item]int{}
	var visit func(stackitem.Item)
	visit = func(c stackitem.Item) {
		if _, ok := inbound[c]; ok {
			return
		}
		inbound[c] = 0
		for _, elem := range compoundChildren(c) {
			if isCompound(elem) {
				visit(elem)
			}
		}
	}
	visit(item)
	for c := range inbound {
		for _, elem := range compoundChildren(c) {
			if isCompound(elem) {
				inbound[elem]++
			}
		}
	}
	for c, n := range inbound {
		if containerRC(c) != n {
			return
		}
	}
	for c := range inbound {
		for _, elem := range compoundChildren(c) {
			r.size--
			if isCompound(elem) {
				decRC(elem)
			}
		}
	}
}

// AddChild records that x was inserted into container. The insertion only
// changes the counted graph when the container itself is currently counted.
func (r *ReferenceCounter) AddChild(container, x stackitem.Item) {
	if containerRC(container) > 0 {
		r.Add(x)
	}
}

// RemoveChild records that x was removed from container.
func (r *ReferenceCounter) RemoveChild(container, x stackitem.Item) {
	if containerRC(container) > 0 {
		r.Remove(x)
	}
}

func isCompound(item stackitem.Item) bool {
	switch item.(type) {
	case *stackitem.Array, *stackitem.Struct, *stackitem.Map:
		return true
	}
	return false
}

// compoundChildren enumerates the counted edges out of a compound, one
// entry per element (and per map key and value).
func compoundChildren(item stackitem.Item) []stackitem.Item {
	switch t := item.(type) {
	case *stackitem.Array:
		return t.Value()
	case *stackitem.Struct:
		return t.Value()
	case *stackitem.Map:
		elems := t.Value()
		children := make([]stackitem.Item, 0, 2*len(elems))
		for _, elem := range elems {
			children = append(children, elem.Key, elem.Value)
		}
		return children
	}
	return nil
}

func containerRC(item stackitem.Item) int {
	switch t := item.(type) {
	case *stackitem.Array:
		return t.RC()
	case *stackitem.Struct:
		return t.RC()
	case *stackitem.Map:
		return t.RC()
	}
	return 0
}

func decRC(item stackitem.Item) int {
	switch t := item.(type) {
	case *stackitem.Array:
		return t.DecRC()
	case *stackitem.Struct:
		return t.DecRC()
	case *stackitem.Map:
		return t.DecRC()
	}
	return 0
}

// CheckLimit faults when the count exceeds max. It is called after every
// operation that can grow the count; the fault terminates the run before
// the operation's result is ever observable by script code.
func (r *ReferenceCounter) CheckLimit(max int) error {
	if r.size > max {
		return fmt.Errorf("%w: %d items, limit %d", vmerrors.ErrStackOverflow, r.size, max)
	}
	return nil
}
