package vm

import (
	"encoding/binary"
	"fmt"

	"github.com/colorfulnotion/neovm/vmerrors"
)

// Instruction is one decoded opcode plus its operand bytes. Instances are
// cached per script offset and must not be mutated.
type Instruction struct {
	OpCode  OpCode
	Operand []byte

	size int // total encoded length including the opcode and any length prefix
}

// decodeInstruction reads the instruction starting at offset. It never reads
// past the end of script.
func decodeInstruction(script []byte, offset int) (*Instruction, error) {
	if offset < 0 || offset >= len(script) {
		return nil, fmt.Errorf("%w: decode at offset %d of %d", vmerrors.ErrOutOfBounds, offset, len(script))
	}
	op := OpCode(script[offset])
	if !op.IsValid() {
		return nil, fmt.Errorf("%w: byte %#02x at offset %d", vmerrors.ErrInvalidOpcode, byte(op), offset)
	}
	desc := op.operand()
	cursor := offset + 1
	size := desc.Size
	if desc.SizePrefix > 0 {
		if cursor+desc.SizePrefix > len(script) {
			return nil, fmt.Errorf("%w: %s length prefix at offset %d", vmerrors.ErrOutOfBounds, op, offset)
		}
		switch desc.SizePrefix {
		case 1:
			size = int(script[cursor])
		case 2:
			size = int(binary.LittleEndian.Uint16(script[cursor:]))
		case 4:
			n := binary.LittleEndian.Uint32(script[cursor:])
			if n > uint32(len(script)) {
				return nil, fmt.Errorf("%w: %s payload of %d bytes at offset %d", vmerrors.ErrOutOfBounds, op, n, offset)
			}
			size = int(n)
		}
		cursor += desc.SizePrefix
	}
	if cursor+size > len(script) {
		return nil, fmt.Errorf("%w: %s operand of %d bytes at offset %d", vmerrors.ErrOutOfBounds, op, size, offset)
	}
	return &Instruction{
		OpCode:  op,
		Operand: script[cursor : cursor+size],
		size:    cursor + size - offset,
	}, nil
}

// Size returns the full encoded length of the instruction.
func (in *Instruction) Size() int { return in.size }

// operandI8 returns the operand byte at idx as a signed offset.
func (in *Instruction) operandI8(idx int) int {
	return int(int8(in.Operand[idx]))
}

// operandI32 returns the 4-byte little-endian signed operand at byte idx.
func (in *Instruction) operandI32(idx int) int {
	return int(int32(binary.LittleEndian.Uint32(in.Operand[idx:])))
}

// JumpOffset decodes the relative branch operand of a jump/call/ENDTRY-class
// instruction (1-byte short form, 4-byte long form).
func (in *Instruction) JumpOffset() int {
	if len(in.Operand) == 1 {
		return in.operandI8(0)
	}
	return in.operandI32(0)
}

// TryOffsets decodes the catch and finally operands of TRY/TRY_L.
func (in *Instruction) TryOffsets() (catch int, finally int) {
	if len(in.Operand) == 2 {
		return in.operandI8(0), in.operandI8(1)
	}
	return in.operandI32(0), in.operandI32(4)
}

// SyscallID decodes the 4-byte little-endian interop service id.
func (in *Instruction) SyscallID() uint32 {
	return binary.LittleEndian.Uint32(in.Operand)
}

// TokenID decodes the 2-byte little-endian CALLT token index.
func (in *Instruction) TokenID() uint16 {
	return binary.LittleEndian.Uint16(in.Operand)
}

func (in *Instruction) String() string {
	if len(in.Operand) == 0 {
		return in.OpCode.String()
	}
	return fmt.Sprintf("%s %x", in.OpCode, in.Operand)
}
