package vm

import "math/big"

func opInvert(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Not(x))
}

func opBitAnd(e *Engine, in *Instruction) error {
	b, err := e.popInt()
	if err != nil {
		return err
	}
	a, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).And(a, b))
}

func opBitOr(e *Engine, in *Instruction) error {
	b, err := e.popInt()
	if err != nil {
		return err
	}
	a, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Or(a, b))
}

func opBitXor(e *Engine, in *Instruction) error {
	b, err := e.popInt()
	if err != nil {
		return err
	}
	a, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Xor(a, b))
}

// opEqual compares whole items: primitives by canonical bytes, structs
// element-wise, everything else by identity.
func opEqual(e *Engine, in *Instruction) error {
	b, err := e.pop()
	if err != nil {
		return err
	}
	a, err := e.pop()
	if err != nil {
		return err
	}
	eq := a.Equals(b)
	if in.OpCode == NOTEQUAL {
		eq = !eq
	}
	return e.pushBoolItem(eq)
}
