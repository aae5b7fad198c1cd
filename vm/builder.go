package vm

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

// ScriptBuilder assembles bytecode programmatically. It picks the shortest
// encoding for pushes and records instruction offsets so callers can compute
// branch operands.
type ScriptBuilder struct {
	buf []byte
}

// Len returns the current script length, i.e. the offset of the next
// instruction to be emitted.
func (b *ScriptBuilder) Len() int { return len(b.buf) }

// Bytes returns the assembled script.
func (b *ScriptBuilder) Bytes() []byte { return b.buf }

// Script validates and wraps the assembled bytes.
func (b *ScriptBuilder) Script() (*Script, error) {
	return NewScript(b.buf)
}

// Emit appends op with raw operand bytes, unchecked.
func (b *ScriptBuilder) Emit(op OpCode, operand ...byte) {
	b.buf = append(b.buf, byte(op))
	b.buf = append(b.buf, operand...)
}

// EmitJump appends a branch instruction with relative offset rel, using the
// long form when rel does not fit a signed byte.
func (b *ScriptBuilder) EmitJump(op OpCode, rel int) {
	if rel >= -128 && rel <= 127 {
		b.Emit(op, byte(int8(rel)))
		return
	}
	var operand [4]byte
	binary.LittleEndian.PutUint32(operand[:], uint32(int32(rel)))
	b.Emit(op+1, operand[:]...) // the long form is always the next byte value
}

// EmitTry appends TRY with relative catch and finally offsets; zero marks an
// absent section.
func (b *ScriptBuilder) EmitTry(catchRel, finallyRel int) {
	if catchRel >= -128 && catchRel <= 127 && finallyRel >= -128 && finallyRel <= 127 {
		b.Emit(TRY, byte(int8(catchRel)), byte(int8(finallyRel)))
		return
	}
	var operand [8]byte
	binary.LittleEndian.PutUint32(operand[:4], uint32(int32(catchRel)))
	binary.LittleEndian.PutUint32(operand[4:], uint32(int32(finallyRel)))
	b.Emit(TRY_L, operand[:]...)
}

// EmitPushInt appends the shortest push for v.
func (b *ScriptBuilder) EmitPushInt(v *big.Int) error {
	if v.IsInt64() && v.Int64() >= -1 && v.Int64() <= 16 {
		b.Emit(OpCode(int64(PUSH0) + v.Int64()))
		return nil
	}
	if err := stackitem.CheckIntegerSize(v); err != nil {
		return err
	}
	enc := stackitem.IntToBytes(v)
	pad := byte(0x00)
	if v.Sign() < 0 {
		pad = 0xFF
	}
	for _, width := range []struct {
		op   OpCode
		size int
	}{
		{PUSHINT8, 1}, {PUSHINT16, 2}, {PUSHINT32, 4},
		{PUSHINT64, 8}, {PUSHINT128, 16}, {PUSHINT256, 32},
	} {
		if len(enc) > width.size {
			continue
		}
		operand := make([]byte, width.size)
		copy(operand, enc)
		for i := len(enc); i < width.size; i++ {
			operand[i] = pad
		}
		b.Emit(width.op, operand...)
		return nil
	}
	return fmt.Errorf("%w: %s", vmerrors.ErrBigIntegerBound, v)
}

// EmitPushInt64 is EmitPushInt for values known to fit.
func (b *ScriptBuilder) EmitPushInt64(v int64) {
	_ = b.EmitPushInt(big.NewInt(v))
}

// EmitPushBool appends PUSHT or PUSHF.
func (b *ScriptBuilder) EmitPushBool(v bool) {
	if v {
		b.Emit(PUSHT)
	} else {
		b.Emit(PUSHF)
	}
}

// EmitPushBytes appends the shortest PUSHDATA for data.
func (b *ScriptBuilder) EmitPushBytes(data []byte) {
	switch {
	case len(data) < 0x100:
		b.Emit(PUSHDATA1, byte(len(data)))
	case len(data) < 0x10000:
		var prefix [2]byte
		binary.LittleEndian.PutUint16(prefix[:], uint16(len(data)))
		b.Emit(PUSHDATA2, prefix[:]...)
	default:
		var prefix [4]byte
		binary.LittleEndian.PutUint32(prefix[:], uint32(len(data)))
		b.Emit(PUSHDATA4, prefix[:]...)
	}
	b.buf = append(b.buf, data...)
}

// EmitPushString appends s as a PUSHDATA payload.
func (b *ScriptBuilder) EmitPushString(s string) {
	b.EmitPushBytes([]byte(s))
}

// EmitPushA appends PUSHA with relative offset rel.
func (b *ScriptBuilder) EmitPushA(rel int) {
	var operand [4]byte
	binary.LittleEndian.PutUint32(operand[:], uint32(int32(rel)))
	b.Emit(PUSHA, operand[:]...)
}

// EmitSyscall appends SYSCALL with the given service id.
func (b *ScriptBuilder) EmitSyscall(id uint32) {
	var operand [4]byte
	binary.LittleEndian.PutUint32(operand[:], id)
	b.Emit(SYSCALL, operand[:]...)
}
