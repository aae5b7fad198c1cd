package vm

import (
	"fmt"
	"strings"
)

// DisasmLine is one decoded instruction with its script offset.
type DisasmLine struct {
	Offset      int
	Instruction *Instruction
}

// Disassemble decodes script sequentially. It stops at the first undecodable
// byte and reports its offset.
func Disassemble(script []byte) ([]DisasmLine, error) {
	var lines []DisasmLine
	for offset := 0; offset < len(script); {
		in, err := decodeInstruction(script, offset)
		if err != nil {
			return lines, fmt.Errorf("at offset %d: %w", offset, err)
		}
		lines = append(lines, DisasmLine{Offset: offset, Instruction: in})
		offset += in.Size()
	}
	return lines, nil
}

// DisassembleString renders script one instruction per line.
func DisassembleString(script []byte) (string, error) {
	lines, err := Disassemble(script)
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "%04d  %s\n", l.Offset, l.Instruction)
	}
	if err != nil {
		return sb.String(), err
	}
	return sb.String(), nil
}
