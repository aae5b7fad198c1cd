package vm

import (
	"fmt"

	"github.com/colorfulnotion/neovm/vmerrors"
)

// Script is an immutable instruction buffer with on-demand, cached decoding.
// A Script may be shared by every execution context instantiated from it;
// the cache is not synchronized because one engine drives one goroutine.
type Script struct {
	code   []byte
	strict bool
	cache  map[int]*Instruction
}

// NewScript constructs a script in strict mode: the whole buffer is
// pre-scanned and any instruction whose operand or branch target would fall
// outside the script is rejected up front.
func NewScript(code []byte) (*Script, error) {
	s := &Script{code: code, strict: true, cache: make(map[int]*Instruction)}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewScriptNonStrict constructs a script without the pre-scan; malformed
// instructions surface as faults when reached at execution time.
func NewScriptNonStrict(code []byte) *Script {
	return &Script{code: code, cache: make(map[int]*Instruction)}
}

// Len returns the script length in bytes.
func (s *Script) Len() int { return len(s.code) }

// Bytes returns the raw script. Callers must not mutate it.
func (s *Script) Bytes() []byte { return s.code }

// InstructionAt decodes (or returns the cached) instruction at offset.
func (s *Script) InstructionAt(offset int) (*Instruction, error) {
	if in, ok := s.cache[offset]; ok {
		return in, nil
	}
	in, err := decodeInstruction(s.code, offset)
	if err != nil {
		return nil, err
	}
	s.cache[offset] = in
	return in, nil
}

// validate walks the script instruction by instruction, checking operand
// bounds and that every branch, call and exception-handler target lies
// within [0, len).
func (s *Script) validate() error {
	for offset := 0; offset < len(s.code); {
		in, err := s.InstructionAt(offset)
		if err != nil {
			return fmt.Errorf("%w: %v", vmerrors.ErrInvalidScript, err)
		}
		switch in.OpCode {
		case JMP, JMP_L, JMPIF, JMPIF_L, JMPIFNOT, JMPIFNOT_L,
			JMPEQ, JMPEQ_L, JMPNE, JMPNE_L, JMPGT, JMPGT_L, JMPGE, JMPGE_L,
			JMPLT, JMPLT_L, JMPLE, JMPLE_L, CALL, CALL_L, ENDTRY, ENDTRY_L:
			if err := s.checkTarget(offset, in.JumpOffset()); err != nil {
				return err
			}
		case PUSHA:
			if err := s.checkTarget(offset, in.JumpOffset()); err != nil {
				return err
			}
		case TRY, TRY_L:
			catch, finally := in.TryOffsets()
			if catch == 0 && finally == 0 {
				return fmt.Errorf("%w: TRY at offset %d with neither catch nor finally", vmerrors.ErrInvalidScript, offset)
			}
			if catch != 0 {
				if err := s.checkTarget(offset, catch); err != nil {
					return err
				}
			}
			if finally != 0 {
				if err := s.checkTarget(offset, finally); err != nil {
					return err
				}
			}
		}
		offset += in.Size()
	}
	return nil
}

func (s *Script) checkTarget(offset, rel int) error {
	target := offset + rel
	if target < 0 || target >= len(s.code) {
		return fmt.Errorf("%w: target %d from offset %d outside [0,%d)", vmerrors.ErrInvalidScript, target, offset, len(s.code))
	}
	return nil
}
