package vm

import (
	"fmt"

	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

// Context is one call frame: a script position, an exclusively owned
// evaluation stack and local/argument slots, plus static fields that may be
// shared with other frames created from the same loaded script.
type Context struct {
	script *Script

	ip        int // offset of the next instruction to fetch
	insOffset int // offset of the instruction currently being executed

	stack *EvaluationStack

	statics   *sharedSlot
	locals    *Slot
	arguments *Slot

	tryStack []*tryContext

	// rvcount is the number of values this frame must leave for its caller;
	// -1 propagates everything.
	rvcount int
}

func newContext(script *Script, refs *ReferenceCounter, rvcount int) *Context {
	return &Context{
		script:  script,
		stack:   NewEvaluationStack(refs),
		statics: &sharedSlot{holders: 1},
		rvcount: rvcount,
	}
}

// cloneForCall creates the frame for a CALL-class opcode: same script and
// shared statics, fresh evaluation stack and empty slots, entry at pos.
func (c *Context) cloneForCall(pos int, refs *ReferenceCounter) *Context {
	c.statics.holders++
	return &Context{
		script:  c.script,
		ip:      pos,
		stack:   NewEvaluationStack(refs),
		statics: c.statics,
		rvcount: -1,
	}
}

// Script returns the script this frame executes.
func (c *Context) Script() *Script { return c.script }

// IP returns the offset of the next instruction to fetch.
func (c *Context) IP() int { return c.ip }

// CurrentOffset returns the offset of the in-flight instruction.
func (c *Context) CurrentOffset() int { return c.insOffset }

// Estack returns the frame's evaluation stack.
func (c *Context) Estack() *EvaluationStack { return c.stack }

// Statics, Locals and Arguments expose the frame's slots for the debug
// surface; any of them may be nil before the corresponding INIT opcode.
func (c *Context) Statics() *Slot   { return c.statics.slot }
func (c *Context) Locals() *Slot    { return c.locals }
func (c *Context) Arguments() *Slot { return c.arguments }

// TryDepth returns the current exception-handler nesting depth.
func (c *Context) TryDepth() int { return len(c.tryStack) }

// pushTry enters a handler frame, enforcing the nesting bound.
func (c *Context) pushTry(t *tryContext, maxDepth int) error {
	if len(c.tryStack) >= maxDepth {
		return fmt.Errorf("%w: depth %d", vmerrors.ErrTryNestingOverflow, maxDepth)
	}
	c.tryStack = append(c.tryStack, t)
	return nil
}

func (c *Context) peekTry() *tryContext {
	if len(c.tryStack) == 0 {
		return nil
	}
	return c.tryStack[len(c.tryStack)-1]
}

func (c *Context) popTry() *tryContext {
	t := c.peekTry()
	if t != nil {
		c.tryStack = c.tryStack[:len(c.tryStack)-1]
	}
	return t
}

// initStatics allocates the shared static slot. Valid once per loaded
// script.
func (c *Context) initStatics(n int, refs *ReferenceCounter) error {
	if c.statics.slot != nil {
		return fmt.Errorf("%w: static slot already initialized", vmerrors.ErrInvalidIndex)
	}
	c.statics.slot = newSlot(n, refs)
	return nil
}

// initSlots allocates locals and pops arguments off the evaluation stack,
// first popped into argument 0. Valid once per frame.
func (c *Context) initSlots(localCount, argCount int, refs *ReferenceCounter) error {
	if c.locals != nil || c.arguments != nil {
		return fmt.Errorf("%w: slots already initialized", vmerrors.ErrInvalidIndex)
	}
	if localCount == 0 && argCount == 0 {
		return fmt.Errorf("%w: INITSLOT with zero counts", vmerrors.ErrInvalidIndex)
	}
	if localCount > 0 {
		c.locals = newSlot(localCount, refs)
	}
	if argCount > 0 {
		c.arguments = newSlot(argCount, refs)
		for i := 0; i < argCount; i++ {
			item, err := c.stack.Pop()
			if err != nil {
				return err
			}
			if err := c.arguments.Set(i, item); err != nil {
				return err
			}
		}
	}
	return nil
}

// unload releases every reference the frame holds. Statics are released
// only when the last frame sharing them unloads.
func (c *Context) unload() {
	c.stack.Clear()
	c.locals.ClearRefs()
	c.arguments.ClearRefs()
	c.statics.holders--
	if c.statics.holders == 0 {
		c.statics.slot.ClearRefs()
	}
}

// MakePointer creates a code pointer into this frame's script.
func (c *Context) MakePointer(pos int) *stackitem.Pointer {
	return stackitem.NewPointer(pos, c.script)
}
