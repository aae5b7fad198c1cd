package vm

import (
	"fmt"

	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

func opIsNull(e *Engine, in *Instruction) error {
	item, err := e.pop()
	if err != nil {
		return err
	}
	_, isNull := item.(stackitem.Null)
	return e.pushBoolItem(isNull)
}

func opIsType(e *Engine, in *Instruction) error {
	t := stackitem.Type(in.Operand[0])
	if !t.IsValid() || t == stackitem.AnyT {
		return fmt.Errorf("%w: ISTYPE %#02x", vmerrors.ErrInvalidCast, in.Operand[0])
	}
	item, err := e.pop()
	if err != nil {
		return err
	}
	return e.pushBoolItem(item.Type() == t)
}

func opConvert(e *Engine, in *Instruction) error {
	t := stackitem.Type(in.Operand[0])
	if !t.IsValid() || t == stackitem.AnyT {
		return fmt.Errorf("%w: CONVERT to %#02x", vmerrors.ErrInvalidCast, in.Operand[0])
	}
	item, err := e.pop()
	if err != nil {
		return err
	}
	converted, err := stackitem.Convert(item, t)
	if err != nil {
		return err
	}
	return e.push(converted)
}
