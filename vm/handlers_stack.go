package vm

import (
	"fmt"
	"math/big"

	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

func opDepth(e *Engine, in *Instruction) error {
	item, err := stackitem.NewBigInteger(big.NewInt(int64(e.Estack().Len())))
	if err != nil {
		return err
	}
	return e.push(item)
}

func opDrop(e *Engine, in *Instruction) error {
	_, err := e.pop()
	return err
}

func opNip(e *Engine, in *Instruction) error {
	_, err := e.Estack().Remove(1)
	return err
}

// opXDrop removes the item n positions below the top, n itself popped first.
func opXDrop(e *Engine, in *Instruction) error {
	n, err := e.popIndex()
	if err != nil {
		return err
	}
	_, err = e.Estack().Remove(n)
	return err
}

func opClear(e *Engine, in *Instruction) error {
	e.Estack().Clear()
	return nil
}

func opDup(e *Engine, in *Instruction) error {
	item, err := e.Estack().Peek(0)
	if err != nil {
		return err
	}
	return e.push(item)
}

func opOver(e *Engine, in *Instruction) error {
	item, err := e.Estack().Peek(1)
	if err != nil {
		return err
	}
	return e.push(item)
}

func opPick(e *Engine, in *Instruction) error {
	n, err := e.popIndex()
	if err != nil {
		return err
	}
	item, err := e.Estack().Peek(n)
	if err != nil {
		return err
	}
	return e.push(item)
}

func opTuck(e *Engine, in *Instruction) error {
	item, err := e.Estack().Peek(0)
	if err != nil {
		return err
	}
	if err := e.Estack().Insert(2, item); err != nil {
		return err
	}
	return e.refs.CheckLimit(e.limits.MaxStackSize)
}

func opSwap(e *Engine, in *Instruction) error {
	item, err := e.Estack().Remove(1)
	if err != nil {
		return err
	}
	return e.push(item)
}

func opRot(e *Engine, in *Instruction) error {
	item, err := e.Estack().Remove(2)
	if err != nil {
		return err
	}
	return e.push(item)
}

func opRoll(e *Engine, in *Instruction) error {
	n, err := e.popIndex()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	item, err := e.Estack().Remove(n)
	if err != nil {
		return err
	}
	return e.push(item)
}

func opReverseN(e *Engine, in *Instruction) error {
	var n int
	switch in.OpCode {
	case REVERSE3:
		n = 3
	case REVERSE4:
		n = 4
	default:
		var err error
		n, err = e.popIndex()
		if err != nil {
			return err
		}
	}
	if n < 0 {
		return fmt.Errorf("%w: reverse %d items", vmerrors.ErrInvalidIndex, n)
	}
	return e.Estack().Reverse(n)
}
