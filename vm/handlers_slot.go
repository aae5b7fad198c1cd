package vm

import (
	"fmt"

	"github.com/colorfulnotion/neovm/vmerrors"
)

func opInitSSlot(e *Engine, in *Instruction) error {
	n := int(in.Operand[0])
	if n == 0 {
		return fmt.Errorf("%w: INITSSLOT with zero fields", vmerrors.ErrInvalidScript)
	}
	return e.Context().initStatics(n, e.refs)
}

func opInitSlot(e *Engine, in *Instruction) error {
	locals := int(in.Operand[0])
	args := int(in.Operand[1])
	if locals == 0 && args == 0 {
		return fmt.Errorf("%w: INITSLOT with zero locals and arguments", vmerrors.ErrInvalidScript)
	}
	return e.Context().initSlots(locals, args, e.refs)
}

// slotAndIndex resolves a slot-access opcode to its target slot and field
// index. The short forms encode the index in the opcode itself.
func slotAndIndex(ctx *Context, in *Instruction) (*Slot, int, error) {
	op := in.OpCode
	var slot *Slot
	var base OpCode
	switch {
	case op >= LDSFLD0 && op <= LDSFLD:
		slot, base = ctx.Statics(), LDSFLD0
	case op >= STSFLD0 && op <= STSFLD:
		slot, base = ctx.Statics(), STSFLD0
	case op >= LDLOC0 && op <= LDLOC:
		slot, base = ctx.locals, LDLOC0
	case op >= STLOC0 && op <= STLOC:
		slot, base = ctx.locals, STLOC0
	case op >= LDARG0 && op <= LDARG:
		slot, base = ctx.arguments, LDARG0
	case op >= STARG0 && op <= STARG:
		slot, base = ctx.arguments, STARG0
	default:
		return nil, 0, fmt.Errorf("%w: %s is not a slot opcode", vmerrors.ErrInvalidOpcode, op)
	}
	index := int(op - base)
	if index == 7 {
		index = int(in.Operand[0])
	}
	if slot == nil {
		return nil, 0, fmt.Errorf("%w: slot not initialized for %s", vmerrors.ErrInvalidScript, op)
	}
	return slot, index, nil
}

func opLoadSlot(e *Engine, in *Instruction) error {
	slot, index, err := slotAndIndex(e.Context(), in)
	if err != nil {
		return err
	}
	item, err := slot.Get(index)
	if err != nil {
		return err
	}
	return e.push(item)
}

func opStoreSlot(e *Engine, in *Instruction) error {
	slot, index, err := slotAndIndex(e.Context(), in)
	if err != nil {
		return err
	}
	item, err := e.pop()
	if err != nil {
		return err
	}
	return slot.Set(index, item)
}
