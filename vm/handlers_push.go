package vm

import (
	"math/big"

	"github.com/colorfulnotion/neovm/vm/stackitem"
)

func opPushInt(e *Engine, in *Instruction) error {
	v := stackitem.BytesToInt(in.Operand)
	item, err := stackitem.NewBigInteger(v)
	if err != nil {
		return err
	}
	return e.push(item)
}

func opPushBool(e *Engine, in *Instruction) error {
	return e.push(stackitem.NewBool(in.OpCode == PUSHT))
}

func opPushA(e *Engine, in *Instruction) error {
	ctx := e.Context()
	target := ctx.insOffset + in.JumpOffset()
	if err := checkPointerTarget(ctx, target); err != nil {
		return err
	}
	return e.push(ctx.MakePointer(target))
}

func opPushNull(e *Engine, in *Instruction) error {
	return e.push(stackitem.Null{})
}

func opPushData(e *Engine, in *Instruction) error {
	if err := e.checkItemSize(len(in.Operand)); err != nil {
		return err
	}
	return e.push(stackitem.NewByteString(in.Operand))
}

// opPushConst handles PUSHM1 through PUSH16. The pushed value is the opcode's
// distance from PUSH0.
func opPushConst(e *Engine, in *Instruction) error {
	v := big.NewInt(int64(in.OpCode) - int64(PUSH0))
	item, err := stackitem.NewBigInteger(v)
	if err != nil {
		return err
	}
	return e.push(item)
}
