package interop

import "github.com/colorfulnotion/neovm/vm"

// opcodePrices is the per-opcode fee schedule in base fee units (a
// power-of-two ladder, base factor 1). Opcodes absent from the table cost
// nothing; they fault before any work is charged.
var opcodePrices [256]int64

func price(op vm.OpCode, p int64) { opcodePrices[op] = p }

// OpcodePrice returns the base gas charged for executing op.
func OpcodePrice(op vm.OpCode) int64 { return opcodePrices[op] }

func init() {
	for op := vm.PUSHINT8; op <= vm.PUSHINT256; op++ {
		price(op, 1)
	}
	price(vm.PUSHT, 1)
	price(vm.PUSHF, 1)
	price(vm.PUSHA, 1<<2)
	price(vm.PUSHNULL, 1)
	price(vm.PUSHDATA1, 1<<3)
	price(vm.PUSHDATA2, 1<<9)
	price(vm.PUSHDATA4, 1<<12)
	for op := vm.PUSHM1; op <= vm.PUSH16; op++ {
		price(op, 1)
	}

	price(vm.NOP, 1)
	for op := vm.JMP; op <= vm.JMPLE_L; op++ {
		price(op, 1<<1)
	}
	price(vm.CALL, 1<<9)
	price(vm.CALL_L, 1<<9)
	price(vm.CALLA, 1<<9)
	price(vm.CALLT, 1<<15)
	price(vm.ABORT, 0)
	price(vm.ASSERT, 1)
	price(vm.THROW, 1<<9)
	price(vm.TRY, 1<<2)
	price(vm.TRY_L, 1<<2)
	price(vm.ENDTRY, 1<<2)
	price(vm.ENDTRY_L, 1<<2)
	price(vm.ENDFINALLY, 1<<2)
	price(vm.RET, 0)
	price(vm.SYSCALL, 0)

	price(vm.DEPTH, 1<<1)
	price(vm.DROP, 1<<1)
	price(vm.NIP, 1<<1)
	price(vm.XDROP, 1<<4)
	price(vm.CLEAR, 1<<4)
	price(vm.DUP, 1<<1)
	price(vm.OVER, 1<<1)
	price(vm.PICK, 1<<1)
	price(vm.TUCK, 1<<1)
	price(vm.SWAP, 1<<1)
	price(vm.ROT, 1<<1)
	price(vm.ROLL, 1<<4)
	price(vm.REVERSE3, 1<<1)
	price(vm.REVERSE4, 1<<1)
	price(vm.REVERSEN, 1<<4)

	price(vm.INITSSLOT, 1<<4)
	price(vm.INITSLOT, 1<<6)
	for op := vm.LDSFLD0; op <= vm.STARG; op++ {
		price(op, 1<<1)
	}

	price(vm.NEWBUFFER, 1<<8)
	price(vm.MEMCPY, 1<<11)
	price(vm.CAT, 1<<11)
	price(vm.SUBSTR, 1<<11)
	price(vm.LEFT, 1<<11)
	price(vm.RIGHT, 1<<11)

	price(vm.INVERT, 1<<2)
	price(vm.AND, 1<<3)
	price(vm.OR, 1<<3)
	price(vm.XOR, 1<<3)
	price(vm.EQUAL, 1<<5)
	price(vm.NOTEQUAL, 1<<5)

	price(vm.SIGN, 1<<2)
	price(vm.ABS, 1<<2)
	price(vm.NEGATE, 1<<2)
	price(vm.INC, 1<<2)
	price(vm.DEC, 1<<2)
	price(vm.ADD, 1<<3)
	price(vm.SUB, 1<<3)
	price(vm.MUL, 1<<3)
	price(vm.DIV, 1<<5)
	price(vm.MOD, 1<<5)
	price(vm.POW, 1<<6)
	price(vm.SQRT, 1<<6)
	price(vm.MODMUL, 1<<5)
	price(vm.MODPOW, 1<<11)
	price(vm.SHL, 1<<3)
	price(vm.SHR, 1<<3)
	price(vm.NOT, 1<<2)
	price(vm.BOOLAND, 1<<3)
	price(vm.BOOLOR, 1<<3)
	price(vm.NZ, 1<<2)
	price(vm.NUMEQUAL, 1<<3)
	price(vm.NUMNOTEQUAL, 1<<3)
	price(vm.LT, 1<<3)
	price(vm.LE, 1<<3)
	price(vm.GT, 1<<3)
	price(vm.GE, 1<<3)
	price(vm.MIN, 1<<3)
	price(vm.MAX, 1<<3)
	price(vm.WITHIN, 1<<3)

	price(vm.PACKMAP, 1<<11)
	price(vm.PACKSTRUCT, 1<<11)
	price(vm.PACK, 1<<11)
	price(vm.UNPACK, 1<<11)
	price(vm.NEWARRAY0, 1<<4)
	price(vm.NEWARRAY, 1<<9)
	price(vm.NEWARRAY_T, 1<<9)
	price(vm.NEWSTRUCT0, 1<<4)
	price(vm.NEWSTRUCT, 1<<9)
	price(vm.NEWMAP, 1<<3)
	price(vm.SIZE, 1<<2)
	price(vm.HASKEY, 1<<6)
	price(vm.KEYS, 1<<4)
	price(vm.VALUES, 1<<13)
	price(vm.PICKITEM, 1<<6)
	price(vm.APPEND, 1<<13)
	price(vm.SETITEM, 1<<13)
	price(vm.REVERSEITEMS, 1<<13)
	price(vm.REMOVE, 1<<4)
	price(vm.CLEARITEMS, 1<<4)
	price(vm.POPITEM, 1<<4)

	price(vm.ISNULL, 1<<1)
	price(vm.ISTYPE, 1<<1)
	price(vm.CONVERT, 1<<13)

	price(vm.ABORTMSG, 0)
	price(vm.ASSERTMSG, 1)
}
