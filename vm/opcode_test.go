package vm

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeNamesAndValidity(t *testing.T) {
	assert.True(t, PUSH1.IsValid())
	assert.True(t, CONVERT.IsValid())
	assert.False(t, OpCode(0x42).IsValid())
	assert.False(t, OpCode(0xFF).IsValid())

	assert.Equal(t, "ADD", ADD.String())
	assert.Equal(t, "INVALID(0x42)", OpCode(0x42).String())
}

func TestOperandLayouts(t *testing.T) {
	assert.Equal(t, operandDesc{Size: 32}, PUSHINT256.operand())
	assert.Equal(t, operandDesc{SizePrefix: 2}, PUSHDATA2.operand())
	assert.Equal(t, operandDesc{Size: 8}, TRY_L.operand())
	assert.Equal(t, operandDesc{}, ADD.operand())
}

// Every defined opcode must have a real handler, and every undefined byte
// must route to the invalid-opcode handler.
func TestJumpTableTotality(t *testing.T) {
	invalid := reflect.ValueOf(opInvalid).Pointer()
	for b := 0; b < 256; b++ {
		op := OpCode(b)
		h := defaultJumpTable[b]
		assert.NotNil(t, h, "nil handler for %#02x", b)
		wired := reflect.ValueOf(h).Pointer() != invalid
		if op.IsValid() {
			assert.True(t, wired, "defined opcode %s falls through to invalid", op)
		} else {
			assert.False(t, wired, "undefined byte %#02x has a handler", b)
		}
	}
}
