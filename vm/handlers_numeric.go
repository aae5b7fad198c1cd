package vm

import (
	"fmt"
	"math/big"

	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

// pushInt pushes v as an Integer item, enforcing the 32-byte bound.
func (e *Engine) pushInt(v *big.Int) error {
	item, err := stackitem.NewBigInteger(v)
	if err != nil {
		return err
	}
	return e.push(item)
}

func (e *Engine) pushBoolItem(v bool) error {
	return e.push(stackitem.NewBool(v))
}

// popInt2 pops the two topmost integers; a was pushed before b.
func (e *Engine) popInt2() (a, b *big.Int, err error) {
	b, err = e.popInt()
	if err != nil {
		return nil, nil, err
	}
	a, err = e.popInt()
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func opSign(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(big.NewInt(int64(x.Sign())))
}

func opAbs(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Abs(x))
}

func opNegate(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Neg(x))
}

func opInc(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Add(x, big.NewInt(1)))
}

func opDec(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Sub(x, big.NewInt(1)))
}

func opAdd(e *Engine, in *Instruction) error {
	a, b, err := e.popInt2()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Add(a, b))
}

func opSub(e *Engine, in *Instruction) error {
	a, b, err := e.popInt2()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Sub(a, b))
}

func opMul(e *Engine, in *Instruction) error {
	a, b, err := e.popInt2()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Mul(a, b))
}

// opDiv is truncated division: the quotient rounds toward zero.
func opDiv(e *Engine, in *Instruction) error {
	a, b, err := e.popInt2()
	if err != nil {
		return err
	}
	if b.Sign() == 0 {
		return fmt.Errorf("%w: %s / 0", vmerrors.ErrDivideByZero, a)
	}
	return e.pushInt(new(big.Int).Quo(a, b))
}

// opMod is the truncated-division remainder; its sign follows the dividend.
func opMod(e *Engine, in *Instruction) error {
	a, b, err := e.popInt2()
	if err != nil {
		return err
	}
	if b.Sign() == 0 {
		return fmt.Errorf("%w: %s %% 0", vmerrors.ErrDivideByZero, a)
	}
	return e.pushInt(new(big.Int).Rem(a, b))
}

func opPow(e *Engine, in *Instruction) error {
	x, y, err := e.popInt2()
	if err != nil {
		return err
	}
	if y.Sign() < 0 || !y.IsInt64() {
		return fmt.Errorf("%w: exponent %s", vmerrors.ErrArithmeticRange, y)
	}
	// Any base of magnitude >= 2 raised past 2^256 overflows the integer
	// bound; reject before computing.
	if x.BitLen() > 1 && y.Int64() > 8*stackitem.MaxIntegerBytes {
		return fmt.Errorf("%w: %s ** %s", vmerrors.ErrBigIntegerBound, x, y)
	}
	return e.pushInt(new(big.Int).Exp(x, y, nil))
}

func opSqrt(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	if x.Sign() < 0 {
		return fmt.Errorf("%w: sqrt of %s", vmerrors.ErrArithmeticRange, x)
	}
	return e.pushInt(new(big.Int).Sqrt(x))
}

func opModMul(e *Engine, in *Instruction) error {
	m, err := e.popInt()
	if err != nil {
		return err
	}
	a, b, err := e.popInt2()
	if err != nil {
		return err
	}
	if m.Sign() == 0 {
		return fmt.Errorf("%w: modulus 0", vmerrors.ErrDivideByZero)
	}
	return e.pushInt(new(big.Int).Rem(new(big.Int).Mul(a, b), m))
}

// opModPow computes base**exp mod modulus; an exponent of -1 requests the
// modular multiplicative inverse instead.
func opModPow(e *Engine, in *Instruction) error {
	m, err := e.popInt()
	if err != nil {
		return err
	}
	x, y, err := e.popInt2()
	if err != nil {
		return err
	}
	if y.IsInt64() && y.Int64() == -1 {
		if m.Sign() <= 0 {
			return fmt.Errorf("%w: inverse modulo %s", vmerrors.ErrArithmeticRange, m)
		}
		inv := new(big.Int).ModInverse(x, m)
		if inv == nil {
			return fmt.Errorf("%w: %s has no inverse modulo %s", vmerrors.ErrArithmeticRange, x, m)
		}
		return e.pushInt(inv)
	}
	if y.Sign() < 0 {
		return fmt.Errorf("%w: exponent %s", vmerrors.ErrArithmeticRange, y)
	}
	if m.Sign() == 0 {
		return fmt.Errorf("%w: modulus 0", vmerrors.ErrDivideByZero)
	}
	r := new(big.Int).Exp(x, y, m)
	// Exp yields a value in [0, |m|); truncated remainder keeps the sign of
	// the base when the exponent is odd.
	if x.Sign() < 0 && y.Bit(0) == 1 && r.Sign() != 0 {
		r.Sub(r, new(big.Int).Abs(m))
	}
	return e.pushInt(r)
}

func opShl(e *Engine, in *Instruction) error {
	n, err := e.popInt()
	if err != nil {
		return err
	}
	x, err := e.popInt()
	if err != nil {
		return err
	}
	shift, err := checkShift(n, e.limits.MaxShift)
	if err != nil {
		return err
	}
	if shift == 0 {
		return e.pushInt(x)
	}
	return e.pushInt(new(big.Int).Lsh(x, shift))
}

func opShr(e *Engine, in *Instruction) error {
	n, err := e.popInt()
	if err != nil {
		return err
	}
	x, err := e.popInt()
	if err != nil {
		return err
	}
	shift, err := checkShift(n, e.limits.MaxShift)
	if err != nil {
		return err
	}
	if shift == 0 {
		return e.pushInt(x)
	}
	return e.pushInt(new(big.Int).Rsh(x, shift))
}

func checkShift(n *big.Int, max int) (uint, error) {
	if n.Sign() < 0 || !n.IsInt64() || n.Int64() > int64(max) {
		return 0, fmt.Errorf("%w: shift by %s", vmerrors.ErrArithmeticRange, n)
	}
	return uint(n.Int64()), nil
}

func opNot(e *Engine, in *Instruction) error {
	v, err := e.popBool()
	if err != nil {
		return err
	}
	return e.pushBoolItem(!v)
}

func opBoolAnd(e *Engine, in *Instruction) error {
	b, err := e.popBool()
	if err != nil {
		return err
	}
	a, err := e.popBool()
	if err != nil {
		return err
	}
	return e.pushBoolItem(a && b)
}

func opBoolOr(e *Engine, in *Instruction) error {
	b, err := e.popBool()
	if err != nil {
		return err
	}
	a, err := e.popBool()
	if err != nil {
		return err
	}
	return e.pushBoolItem(a || b)
}

func opNz(e *Engine, in *Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushBoolItem(x.Sign() != 0)
}

func opNumEqual(e *Engine, in *Instruction) error {
	a, b, err := e.popInt2()
	if err != nil {
		return err
	}
	eq := a.Cmp(b) == 0
	if in.OpCode == NUMNOTEQUAL {
		eq = !eq
	}
	return e.pushBoolItem(eq)
}

// opNumCmp handles LT, LE, GT and GE. A Null on either side compares false.
func opNumCmp(e *Engine, in *Instruction) error {
	bItem, err := e.pop()
	if err != nil {
		return err
	}
	aItem, err := e.pop()
	if err != nil {
		return err
	}
	if aItem.Type() == stackitem.AnyT || bItem.Type() == stackitem.AnyT {
		return e.pushBoolItem(false)
	}
	a, err := aItem.TryInteger()
	if err != nil {
		return err
	}
	b, err := bItem.TryInteger()
	if err != nil {
		return err
	}
	c := a.Cmp(b)
	var res bool
	switch in.OpCode {
	case LT:
		res = c < 0
	case LE:
		res = c <= 0
	case GT:
		res = c > 0
	case GE:
		res = c >= 0
	}
	return e.pushBoolItem(res)
}

func opMin(e *Engine, in *Instruction) error {
	a, b, err := e.popInt2()
	if err != nil {
		return err
	}
	if b.Cmp(a) < 0 {
		a = b
	}
	return e.pushInt(a)
}

func opMax(e *Engine, in *Instruction) error {
	a, b, err := e.popInt2()
	if err != nil {
		return err
	}
	if b.Cmp(a) > 0 {
		a = b
	}
	return e.pushInt(a)
}

// opWithin tests a <= x < b.
func opWithin(e *Engine, in *Instruction) error {
	b, err := e.popInt()
	if err != nil {
		return err
	}
	a, err := e.popInt()
	if err != nil {
		return err
	}
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushBoolItem(a.Cmp(x) <= 0 && x.Cmp(b) < 0)
}
