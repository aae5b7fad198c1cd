package vm

import (
	"fmt"

	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

// EvaluationStack is the per-context operand stack. Index 0 addresses the
// top. A stack is bound to exactly one ReferenceCounter and is owned
// exclusively by its execution context.
type EvaluationStack struct {
	items []stackitem.Item // items[len-1] is the top
	refs  *ReferenceCounter
}

// NewEvaluationStack binds a fresh stack to refs.
func NewEvaluationStack(refs *ReferenceCounter) *EvaluationStack {
	return &EvaluationStack{refs: refs}
}

// Len returns the number of items on the stack.
func (s *EvaluationStack) Len() int { return len(s.items) }

// Push places item on top of the stack.
func (s *EvaluationStack) Push(item stackitem.Item) {
	s.items = append(s.items, item)
	s.refs.Add(item)
}

// Pop removes and returns the top item.
func (s *EvaluationStack) Pop() (stackitem.Item, error) {
	if len(s.items) == 0 {
		return nil, fmt.Errorf("%w: pop on empty stack", vmerrors.ErrStackUnderflow)
	}
	item := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	s.refs.Remove(item)
	return item, nil
}

// Peek returns the item at depth index without removing it; Peek(0) is the
// top of the stack.
func (s *EvaluationStack) Peek(index int) (stackitem.Item, error) {
	if index < 0 || index >= len(s.items) {
		return nil, fmt.Errorf("%w: peek %d of %d", vmerrors.ErrInvalidIndex, index, len(s.items))
	}
	return s.items[len(s.items)-1-index], nil
}

// Remove removes and returns the item at depth index.
func (s *EvaluationStack) Remove(index int) (stackitem.Item, error) {
	if index < 0 || index >= len(s.items) {
		return nil, fmt.Errorf("%w: remove %d of %d", vmerrors.ErrInvalidIndex, index, len(s.items))
	}
	pos := len(s.items) - 1 - index
	item := s.items[pos]
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	s.refs.Remove(item)
	return item, nil
}

// Insert places item at depth index; Insert(0, x) is equivalent to Push(x).
func (s *EvaluationStack) Insert(index int, item stackitem.Item) error {
	if index < 0 || index > len(s.items) {
		return fmt.Errorf("%w: insert at %d of %d", vmerrors.ErrInvalidIndex, index, len(s.items))
	}
	pos := len(s.items) - index
	s.items = append(s.items, nil)
	copy(s.items[pos+1:], s.items[pos:])
	s.items[pos] = item
	s.refs.Add(item)
	return nil
}

// Clear drops every item.
func (s *EvaluationStack) Clear() {
	for _, item := range s.items {
		s.refs.Remove(item)
	}
	s.items = s.items[:0]
}

// CopyTo appends the bottom-to-top items of s onto other, preserving order.
// A negative count copies everything.
func (s *EvaluationStack) CopyTo(other *EvaluationStack, count int) error {
	if count < 0 || count > len(s.items) {
		count = len(s.items)
	}
	for _, item := range s.items[len(s.items)-count:] {
		other.Push(item)
	}
	return nil
}

// Reverse reverses the order of the top count items.
func (s *EvaluationStack) Reverse(count int) error {
	if count < 0 || count > len(s.items) {
		return fmt.Errorf("%w: reverse %d of %d", vmerrors.ErrInvalidIndex, count, len(s.items))
	}
	if count < 2 {
		return nil
	}
	top := len(s.items)
	for i, j := top-count, top-1; i < j; i, j = i+1, j-1 {
		s.items[i], s.items[j] = s.items[j], s.items[i]
	}
	return nil
}

// PopItems removes the top count items, returning them top-first.
func (s *EvaluationStack) PopItems(count int) ([]stackitem.Item, error) {
	if count < 0 || count > len(s.items) {
		return nil, fmt.Errorf("%w: pop %d of %d", vmerrors.ErrStackUnderflow, count, len(s.items))
	}
	out := make([]stackitem.Item, count)
	for i := 0; i < count; i++ {
		item, _ := s.Pop()
		out[i] = item
	}
	return out, nil
}

// Items returns the stack bottom-to-top for inspection; the slice is shared
// and must not be mutated.
func (s *EvaluationStack) Items() []stackitem.Item { return s.items }
