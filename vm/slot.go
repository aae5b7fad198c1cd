package vm

import (
	"fmt"

	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

// Slot is a fixed-size item array backing static fields, locals and
// arguments. Every entry starts as Null; stores keep the reference counter
// in step.
type Slot struct {
	items []stackitem.Item
	refs  *ReferenceCounter
}

// newSlot allocates a slot of n Null entries, each counted as a live
// reference.
func newSlot(n int, refs *ReferenceCounter) *Slot {
	s := &Slot{items: make([]stackitem.Item, n), refs: refs}
	for i := range s.items {
		s.items[i] = stackitem.Null{}
		refs.Add(s.items[i])
	}
	return s
}

// Len returns the slot capacity.
func (s *Slot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Get returns the item at index.
func (s *Slot) Get(index int) (stackitem.Item, error) {
	if s == nil || index < 0 || index >= len(s.items) {
		return nil, fmt.Errorf("%w: slot read %d of %d", vmerrors.ErrInvalidIndex, index, s.Len())
	}
	return s.items[index], nil
}

// Set stores item at index, releasing the displaced entry.
func (s *Slot) Set(index int, item stackitem.Item) error {
	if s == nil || index < 0 || index >= len(s.items) {
		return fmt.Errorf("%w: slot write %d of %d", vmerrors.ErrInvalidIndex, index, s.Len())
	}
	s.refs.Remove(s.items[index])
	s.items[index] = item
	s.refs.Add(item)
	return nil
}

// ClearRefs releases every entry. Called when the owning context (or the
// last context sharing the slot) unloads.
func (s *Slot) ClearRefs() {
	if s == nil {
		return
	}
	for _, item := range s.items {
		s.refs.Remove(item)
	}
	s.items = nil
}

// Items exposes the slot contents for the debug surface.
func (s *Slot) Items() []stackitem.Item {
	if s == nil {
		return nil
	}
	return s.items
}

// sharedSlot is the one deliberate aliasing relationship in the data model:
// contexts cloned from the same loaded script share their static fields. The
// holder count releases the slot's references exactly once, when the last
// sharer unloads.
type sharedSlot struct {
	slot    *Slot
	holders int
}
