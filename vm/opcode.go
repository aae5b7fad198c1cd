package vm

import "fmt"

// OpCode is one instruction byte. The table is total: every byte value
// either maps to a named instruction with a fixed operand layout or is
// rejected by the decoder as invalid.
type OpCode byte

// Constants
const (
	PUSHINT8   OpCode = 0x00
	PUSHINT16  OpCode = 0x01
	PUSHINT32  OpCode = 0x02
	PUSHINT64  OpCode = 0x03
	PUSHINT128 OpCode = 0x04
	PUSHINT256 OpCode = 0x05

	PUSHT    OpCode = 0x08
	PUSHF    OpCode = 0x09
	PUSHA    OpCode = 0x0A
	PUSHNULL OpCode = 0x0B

	PUSHDATA1 OpCode = 0x0C
	PUSHDATA2 OpCode = 0x0D
	PUSHDATA4 OpCode = 0x0E

	PUSHM1 OpCode = 0x0F
	PUSH0  OpCode = 0x10
	PUSH1  OpCode = 0x11
	PUSH2  OpCode = 0x12
	PUSH3  OpCode = 0x13
	PUSH4  OpCode = 0x14
	PUSH5  OpCode = 0x15
	PUSH6  OpCode = 0x16
	PUSH7  OpCode = 0x17
	PUSH8  OpCode = 0x18
	PUSH9  OpCode = 0x19
	PUSH10 OpCode = 0x1A
	PUSH11 OpCode = 0x1B
	PUSH12 OpCode = 0x1C
	PUSH13 OpCode = 0x1D
	PUSH14 OpCode = 0x1E
	PUSH15 OpCode = 0x1F
	PUSH16 OpCode = 0x20
)

// Flow control
const (
	NOP        OpCode = 0x21
	JMP        OpCode = 0x22
	JMP_L      OpCode = 0x23
	JMPIF      OpCode = 0x24
	JMPIF_L    OpCode = 0x25
	JMPIFNOT   OpCode = 0x26
	JMPIFNOT_L OpCode = 0x27
	JMPEQ      OpCode = 0x28
	JMPEQ_L    OpCode = 0x29
	JMPNE      OpCode = 0x2A
	JMPNE_L    OpCode = 0x2B
	JMPGT      OpCode = 0x2C
	JMPGT_L    OpCode = 0x2D
	JMPGE      OpCode = 0x2E
	JMPGE_L    OpCode = 0x2F
	JMPLT      OpCode = 0x30
	JMPLT_L    OpCode = 0x31
	JMPLE      OpCode = 0x32
	JMPLE_L    OpCode = 0x33
	CALL       OpCode = 0x34
	CALL_L     OpCode = 0x35
	CALLA      OpCode = 0x36
	CALLT      OpCode = 0x37
	ABORT      OpCode = 0x38
	ASSERT     OpCode = 0x39
	THROW      OpCode = 0x3A
	TRY        OpCode = 0x3B
	TRY_L      OpCode = 0x3C
	ENDTRY     OpCode = 0x3D
	ENDTRY_L   OpCode = 0x3E
	ENDFINALLY OpCode = 0x3F
	RET        OpCode = 0x40
	SYSCALL    OpCode = 0x41
)

// Stack manipulation
const (
	DEPTH    OpCode = 0x43
	DROP     OpCode = 0x45
	NIP      OpCode = 0x46
	XDROP    OpCode = 0x48
	CLEAR    OpCode = 0x49
	DUP      OpCode = 0x4A
	OVER     OpCode = 0x4B
	PICK     OpCode = 0x4D
	TUCK     OpCode = 0x4E
	SWAP     OpCode = 0x50
	ROT      OpCode = 0x51
	ROLL     OpCode = 0x52
	REVERSE3 OpCode = 0x53
	REVERSE4 OpCode = 0x54
	REVERSEN OpCode = 0x55
)

// Slot access
const (
	INITSSLOT OpCode = 0x56
	INITSLOT  OpCode = 0x57

	LDSFLD0 OpCode = 0x58
	LDSFLD1 OpCode = 0x59
	LDSFLD2 OpCode = 0x5A
	LDSFLD3 OpCode = 0x5B
	LDSFLD4 OpCode = 0x5C
	LDSFLD5 OpCode = 0x5D
	LDSFLD6 OpCode = 0x5E
	LDSFLD  OpCode = 0x5F

	STSFLD0 OpCode = 0x60
	STSFLD1 OpCode = 0x61
	STSFLD2 OpCode = 0x62
	STSFLD3 OpCode = 0x63
	STSFLD4 OpCode = 0x64
	STSFLD5 OpCode = 0x65
	STSFLD6 OpCode = 0x66
	STSFLD  OpCode = 0x67

	LDLOC0 OpCode = 0x68
	LDLOC1 OpCode = 0x69
	LDLOC2 OpCode = 0x6A
	LDLOC3 OpCode = 0x6B
	LDLOC4 OpCode = 0x6C
	LDLOC5 OpCode = 0x6D
	LDLOC6 OpCode = 0x6E
	LDLOC  OpCode = 0x6F

	STLOC0 OpCode = 0x70
	STLOC1 OpCode = 0x71
	STLOC2 OpCode = 0x72
	STLOC3 OpCode = 0x73
	STLOC4 OpCode = 0x74
	STLOC5 OpCode = 0x75
	STLOC6 OpCode = 0x76
	STLOC  OpCode = 0x77

	LDARG0 OpCode = 0x78
	LDARG1 OpCode = 0x79
	LDARG2 OpCode = 0x7A
	LDARG3 OpCode = 0x7B
	LDARG4 OpCode = 0x7C
	LDARG5 OpCode = 0x7D
	LDARG6 OpCode = 0x7E
	LDARG  OpCode = 0x7F

	STARG0 OpCode = 0x80
	STARG1 OpCode = 0x81
	STARG2 OpCode = 0x82
	STARG3 OpCode = 0x83
	STARG4 OpCode = 0x84
	STARG5 OpCode = 0x85
	STARG6 OpCode = 0x86
	STARG  OpCode = 0x87
)

// Splice
const (
	NEWBUFFER OpCode = 0x88
	MEMCPY    OpCode = 0x89
	CAT       OpCode = 0x8B
	SUBSTR    OpCode = 0x8C
	LEFT      OpCode = 0x8D
	RIGHT     OpCode = 0x8E
)

// Bitwise logic
const (
	INVERT   OpCode = 0x90
	AND      OpCode = 0x91
	OR       OpCode = 0x92
	XOR      OpCode = 0x93
	EQUAL    OpCode = 0x97
	NOTEQUAL OpCode = 0x98
)

// Arithmetic
const (
	SIGN        OpCode = 0x99
	ABS         OpCode = 0x9A
	NEGATE      OpCode = 0x9B
	INC         OpCode = 0x9C
	DEC         OpCode = 0x9D
	ADD         OpCode = 0x9E
	SUB         OpCode = 0x9F
	MUL         OpCode = 0xA0
	DIV         OpCode = 0xA1
	MOD         OpCode = 0xA2
	POW         OpCode = 0xA3
	SQRT        OpCode = 0xA4
	MODMUL      OpCode = 0xA5
	MODPOW      OpCode = 0xA6
	SHL         OpCode = 0xA8
	SHR         OpCode = 0xA9
	NOT         OpCode = 0xAA
	BOOLAND     OpCode = 0xAB
	BOOLOR      OpCode = 0xAC
	NZ          OpCode = 0xB1
	NUMEQUAL    OpCode = 0xB3
	NUMNOTEQUAL OpCode = 0xB4
	LT          OpCode = 0xB5
	LE          OpCode = 0xB6
	GT          OpCode = 0xB7
	GE          OpCode = 0xB8
	MIN         OpCode = 0xB9
	MAX         OpCode = 0xBA
	WITHIN      OpCode = 0xBB
)

// Compound types
const (
	PACKMAP      OpCode = 0xBE
	PACKSTRUCT   OpCode = 0xBF
	PACK         OpCode = 0xC0
	UNPACK       OpCode = 0xC1
	NEWARRAY0    OpCode = 0xC2
	NEWARRAY     OpCode = 0xC3
	NEWARRAY_T   OpCode = 0xC4
	NEWSTRUCT0   OpCode = 0xC5
	NEWSTRUCT    OpCode = 0xC6
	NEWMAP       OpCode = 0xC8
	SIZE         OpCode = 0xCA
	HASKEY       OpCode = 0xCB
	KEYS         OpCode = 0xCC
	VALUES       OpCode = 0xCD
	PICKITEM     OpCode = 0xCE
	APPEND       OpCode = 0xCF
	SETITEM      OpCode = 0xD0
	REVERSEITEMS OpCode = 0xD1
	REMOVE       OpCode = 0xD2
	CLEARITEMS   OpCode = 0xD3
	POPITEM      OpCode = 0xD4
)

// Type checks and casts
const (
	ISNULL  OpCode = 0xD8
	ISTYPE  OpCode = 0xD9
	CONVERT OpCode = 0xDB
)

// Extensions
const (
	ABORTMSG  OpCode = 0xE0
	ASSERTMSG OpCode = 0xE1
)

// operandDesc describes the encoded operand of one opcode: Size bytes of
// fixed operand, or a SizePrefix-byte little-endian length followed by that
// many payload bytes.
type operandDesc struct {
	Size       int
	SizePrefix int
}

var opNames = map[OpCode]string{
	PUSHINT8: "PUSHINT8", PUSHINT16: "PUSHINT16", PUSHINT32: "PUSHINT32",
	PUSHINT64: "PUSHINT64", PUSHINT128: "PUSHINT128", PUSHINT256: "PUSHINT256",
	PUSHT: "PUSHT", PUSHF: "PUSHF", PUSHA: "PUSHA", PUSHNULL: "PUSHNULL",
	PUSHDATA1: "PUSHDATA1", PUSHDATA2: "PUSHDATA2", PUSHDATA4: "PUSHDATA4",
	PUSHM1: "PUSHM1", PUSH0: "PUSH0", PUSH1: "PUSH1", PUSH2: "PUSH2",
	PUSH3: "PUSH3", PUSH4: "PUSH4", PUSH5: "PUSH5", PUSH6: "PUSH6",
	PUSH7: "PUSH7", PUSH8: "PUSH8", PUSH9: "PUSH9", PUSH10: "PUSH10",
	PUSH11: "PUSH11", PUSH12: "PUSH12", PUSH13: "PUSH13", PUSH14: "PUSH14",
	PUSH15: "PUSH15", PUSH16: "PUSH16",
	NOP: "NOP", JMP: "JMP", JMP_L: "JMP_L", JMPIF: "JMPIF", JMPIF_L: "JMPIF_L",
	JMPIFNOT: "JMPIFNOT", JMPIFNOT_L: "JMPIFNOT_L", JMPEQ: "JMPEQ", JMPEQ_L: "JMPEQ_L",
	JMPNE: "JMPNE", JMPNE_L: "JMPNE_L", JMPGT: "JMPGT", JMPGT_L: "JMPGT_L",
	JMPGE: "JMPGE", JMPGE_L: "JMPGE_L", JMPLT: "JMPLT", JMPLT_L: "JMPLT_L",
	JMPLE: "JMPLE", JMPLE_L: "JMPLE_L", CALL: "CALL", CALL_L: "CALL_L",
	CALLA: "CALLA", CALLT: "CALLT", ABORT: "ABORT", ASSERT: "ASSERT",
	THROW: "THROW", TRY: "TRY", TRY_L: "TRY_L", ENDTRY: "ENDTRY",
	ENDTRY_L: "ENDTRY_L", ENDFINALLY: "ENDFINALLY", RET: "RET", SYSCALL: "SYSCALL",
	DEPTH: "DEPTH", DROP: "DROP", NIP: "NIP", XDROP: "XDROP", CLEAR: "CLEAR",
	DUP: "DUP", OVER: "OVER", PICK: "PICK", TUCK: "TUCK", SWAP: "SWAP",
	ROT: "ROT", ROLL: "ROLL", REVERSE3: "REVERSE3", REVERSE4: "REVERSE4", REVERSEN: "REVERSEN",
	INITSSLOT: "INITSSLOT", INITSLOT: "INITSLOT",
	LDSFLD0: "LDSFLD0", LDSFLD1: "LDSFLD1", LDSFLD2: "LDSFLD2", LDSFLD3: "LDSFLD3",
	LDSFLD4: "LDSFLD4", LDSFLD5: "LDSFLD5", LDSFLD6: "LDSFLD6", LDSFLD: "LDSFLD",
	STSFLD0: "STSFLD0", STSFLD1: "STSFLD1", STSFLD2: "STSFLD2", STSFLD3: "STSFLD3",
	STSFLD4: "STSFLD4", STSFLD5: "STSFLD5", STSFLD6: "STSFLD6", STSFLD: "STSFLD",
	LDLOC0: "LDLOC0", LDLOC1: "LDLOC1", LDLOC2: "LDLOC2", LDLOC3: "LDLOC3",
	LDLOC4: "LDLOC4", LDLOC5: "LDLOC5", LDLOC6: "LDLOC6", LDLOC: "LDLOC",
	STLOC0: "STLOC0", STLOC1: "STLOC1", STLOC2: "STLOC2", STLOC3: "STLOC3",
	STLOC4: "STLOC4", STLOC5: "STLOC5", STLOC6: "STLOC6", STLOC: "STLOC",
	LDARG0: "LDARG0", LDARG1: "LDARG1", LDARG2: "LDARG2", LDARG3: "LDARG3",
	LDARG4: "LDARG4", LDARG5: "LDARG5", LDARG6: "LDARG6", LDARG: "LDARG",
	STARG0: "STARG0", STARG1: "STARG1", STARG2: "STARG2", STARG3: "STARG3",
	STARG4: "STARG4", STARG5: "STARG5", STARG6: "STARG6", STARG: "STARG",
	NEWBUFFER: "NEWBUFFER", MEMCPY: "MEMCPY", CAT: "CAT", SUBSTR: "SUBSTR",
	LEFT: "LEFT", RIGHT: "RIGHT",
	INVERT: "INVERT", AND: "AND", OR: "OR", XOR: "XOR", EQUAL: "EQUAL", NOTEQUAL: "NOTEQUAL",
	SIGN: "SIGN", ABS: "ABS", NEGATE: "NEGATE", INC: "INC", DEC: "DEC",
	ADD: "ADD", SUB: "SUB", MUL: "MUL", DIV: "DIV", MOD: "MOD", POW: "POW",
	SQRT: "SQRT", MODMUL: "MODMUL", MODPOW: "MODPOW", SHL: "SHL", SHR: "SHR",
	NOT: "NOT", BOOLAND: "BOOLAND", BOOLOR: "BOOLOR", NZ: "NZ",
	NUMEQUAL: "NUMEQUAL", NUMNOTEQUAL: "NUMNOTEQUAL", LT: "LT", LE: "LE",
	GT: "GT", GE: "GE", MIN: "MIN", MAX: "MAX", WITHIN: "WITHIN",
	PACKMAP: "PACKMAP", PACKSTRUCT: "PACKSTRUCT", PACK: "PACK", UNPACK: "UNPACK",
	NEWARRAY0: "NEWARRAY0", NEWARRAY: "NEWARRAY", NEWARRAY_T: "NEWARRAY_T",
	NEWSTRUCT0: "NEWSTRUCT0", NEWSTRUCT: "NEWSTRUCT", NEWMAP: "NEWMAP",
	SIZE: "SIZE", HASKEY: "HASKEY", KEYS: "KEYS", VALUES: "VALUES",
	PICKITEM: "PICKITEM", APPEND: "APPEND", SETITEM: "SETITEM",
	REVERSEITEMS: "REVERSEITEMS", REMOVE: "REMOVE", CLEARITEMS: "CLEARITEMS",
	POPITEM: "POPITEM",
	ISNULL: "ISNULL", ISTYPE: "ISTYPE", CONVERT: "CONVERT",
	ABORTMSG: "ABORTMSG", ASSERTMSG: "ASSERTMSG",
}

var operandSizes = map[OpCode]operandDesc{
	PUSHINT8:   {Size: 1},
	PUSHINT16:  {Size: 2},
	PUSHINT32:  {Size: 4},
	PUSHINT64:  {Size: 8},
	PUSHINT128: {Size: 16},
	PUSHINT256: {Size: 32},
	PUSHA:      {Size: 4},
	PUSHDATA1:  {SizePrefix: 1},
	PUSHDATA2:  {SizePrefix: 2},
	PUSHDATA4:  {SizePrefix: 4},
	JMP:        {Size: 1},
	JMP_L:      {Size: 4},
	JMPIF:      {Size: 1},
	JMPIF_L:    {Size: 4},
	JMPIFNOT:   {Size: 1},
	JMPIFNOT_L: {Size: 4},
	JMPEQ:      {Size: 1},
	JMPEQ_L:    {Size: 4},
	JMPNE:      {Size: 1},
	JMPNE_L:    {Size: 4},
	JMPGT:      {Size: 1},
	JMPGT_L:    {Size: 4},
	JMPGE:      {Size: 1},
	JMPGE_L:    {Size: 4},
	JMPLT:      {Size: 1},
	JMPLT_L:    {Size: 4},
	JMPLE:      {Size: 1},
	JMPLE_L:    {Size: 4},
	CALL:       {Size: 1},
	CALL_L:     {Size: 4},
	CALLT:      {Size: 2},
	TRY:        {Size: 2},
	TRY_L:      {Size: 8},
	ENDTRY:     {Size: 1},
	ENDTRY_L:   {Size: 4},
	SYSCALL:    {Size: 4},
	INITSSLOT:  {Size: 1},
	INITSLOT:   {Size: 2},
	LDSFLD:     {Size: 1},
	STSFLD:     {Size: 1},
	LDLOC:      {Size: 1},
	STLOC:      {Size: 1},
	LDARG:      {Size: 1},
	STARG:      {Size: 1},
	NEWARRAY_T: {Size: 1},
	ISTYPE:     {Size: 1},
	CONVERT:    {Size: 1},
}

// IsValid reports whether op is a defined instruction.
func (op OpCode) IsValid() bool {
	_, ok := opNames[op]
	return ok
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("INVALID(%#02x)", byte(op))
}

// operand returns the operand layout of op; the zero descriptor means no
// operand bytes follow the opcode.
func (op OpCode) operand() operandDesc {
	return operandSizes[op]
}
