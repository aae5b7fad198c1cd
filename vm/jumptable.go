package vm

import (
	"fmt"

	"github.com/colorfulnotion/neovm/vmerrors"
)

// Handler executes one decoded instruction against the engine. The
// instruction pointer has already been advanced past the instruction, so
// branch handlers simply overwrite it.
type Handler func(e *Engine, in *Instruction) error

// JumpTable maps every opcode byte to its handler. Engines take a copy of
// defaultJumpTable so the interop layer can patch SYSCALL and CALLT without
// affecting other engines.
type JumpTable [256]Handler

var defaultJumpTable JumpTable

func opInvalid(e *Engine, in *Instruction) error {
	return fmt.Errorf("%w: %#02x", vmerrors.ErrInvalidOpcode, byte(in.OpCode))
}

func init() {
	for i := range defaultJumpTable {
		defaultJumpTable[i] = opInvalid
	}
	jt := &defaultJumpTable

	// Constants.
	jt[PUSHINT8] = opPushInt
	jt[PUSHINT16] = opPushInt
	jt[PUSHINT32] = opPushInt
	jt[PUSHINT64] = opPushInt
	jt[PUSHINT128] = opPushInt
	jt[PUSHINT256] = opPushInt
	jt[PUSHT] = opPushBool
	jt[PUSHF] = opPushBool
	jt[PUSHA] = opPushA
	jt[PUSHNULL] = opPushNull
	jt[PUSHDATA1] = opPushData
	jt[PUSHDATA2] = opPushData
	jt[PUSHDATA4] = opPushData
	for op := PUSHM1; op <= PUSH16; op++ {
		jt[op] = opPushConst
	}

	// Flow control.
	jt[NOP] = opNop
	jt[JMP] = opJmp
	jt[JMP_L] = opJmp
	jt[JMPIF] = opJmpIf
	jt[JMPIF_L] = opJmpIf
	jt[JMPIFNOT] = opJmpIf
	jt[JMPIFNOT_L] = opJmpIf
	jt[JMPEQ] = opJmpEq
	jt[JMPEQ_L] = opJmpEq
	jt[JMPNE] = opJmpEq
	jt[JMPNE_L] = opJmpEq
	jt[JMPGT] = opJmpCmp
	jt[JMPGT_L] = opJmpCmp
	jt[JMPGE] = opJmpCmp
	jt[JMPGE_L] = opJmpCmp
	jt[JMPLT] = opJmpCmp
	jt[JMPLT_L] = opJmpCmp
	jt[JMPLE] = opJmpCmp
	jt[JMPLE_L] = opJmpCmp
	jt[CALL] = opCall
	jt[CALL_L] = opCall
	jt[CALLA] = opCallA
	jt[CALLT] = opCallT
	jt[ABORT] = opAbort
	jt[ASSERT] = opAssert
	jt[THROW] = opThrow
	jt[TRY] = opTry
	jt[TRY_L] = opTry
	jt[ENDTRY] = opEndTry
	jt[ENDTRY_L] = opEndTry
	jt[ENDFINALLY] = opEndFinally
	jt[RET] = opRet
	jt[SYSCALL] = opSyscall

	// Stack manipulation.
	jt[DEPTH] = opDepth
	jt[DROP] = opDrop
	jt[NIP] = opNip
	jt[XDROP] = opXDrop
	jt[CLEAR] = opClear
	jt[DUP] = opDup
	jt[OVER] = opOver
	jt[PICK] = opPick
	jt[TUCK] = opTuck
	jt[SWAP] = opSwap
	jt[ROT] = opRot
	jt[ROLL] = opRoll
	jt[REVERSE3] = opReverseN
	jt[REVERSE4] = opReverseN
	jt[REVERSEN] = opReverseN

	// Slots.
	jt[INITSSLOT] = opInitSSlot
	jt[INITSLOT] = opInitSlot
	for op := LDSFLD0; op <= LDSFLD; op++ {
		jt[op] = opLoadSlot
	}
	for op := STSFLD0; op <= STSFLD; op++ {
		jt[op] = opStoreSlot
	}
	for op := LDLOC0; op <= LDLOC; op++ {
		jt[op] = opLoadSlot
	}
	for op := STLOC0; op <= STLOC; op++ {
		jt[op] = opStoreSlot
	}
	for op := LDARG0; op <= LDARG; op++ {
		jt[op] = opLoadSlot
	}
	for op := STARG0; op <= STARG; op++ {
		jt[op] = opStoreSlot
	}

	// Splice.
	jt[NEWBUFFER] = opNewBuffer
	jt[MEMCPY] = opMemCpy
	jt[CAT] = opCat
	jt[SUBSTR] = opSubStr
	jt[LEFT] = opLeft
	jt[RIGHT] = opRight

	// Bitwise logic.
	jt[INVERT] = opInvert
	jt[AND] = opBitAnd
	jt[OR] = opBitOr
	jt[XOR] = opBitXor
	jt[EQUAL] = opEqual
	jt[NOTEQUAL] = opEqual

	// Arithmetic.
	jt[SIGN] = opSign
	jt[ABS] = opAbs
	jt[NEGATE] = opNegate
	jt[INC] = opInc
	jt[DEC] = opDec
	jt[ADD] = opAdd
	jt[SUB] = opSub
	jt[MUL] = opMul
	jt[DIV] = opDiv
	jt[MOD] = opMod
	jt[POW] = opPow
	jt[SQRT] = opSqrt
	jt[MODMUL] = opModMul
	jt[MODPOW] = opModPow
	jt[SHL] = opShl
	jt[SHR] = opShr
	jt[NOT] = opNot
	jt[BOOLAND] = opBoolAnd
	jt[BOOLOR] = opBoolOr
	jt[NZ] = opNz
	jt[NUMEQUAL] = opNumEqual
	jt[NUMNOTEQUAL] = opNumEqual
	jt[LT] = opNumCmp
	jt[LE] = opNumCmp
	jt[GT] = opNumCmp
	jt[GE] = opNumCmp
	jt[MIN] = opMin
	jt[MAX] = opMax
	jt[WITHIN] = opWithin

	// Compound types.
	jt[PACKMAP] = opPackMap
	jt[PACKSTRUCT] = opPack
	jt[PACK] = opPack
	jt[UNPACK] = opUnpack
	jt[NEWARRAY0] = opNewArray0
	jt[NEWARRAY] = opNewArray
	jt[NEWARRAY_T] = opNewArray
	jt[NEWSTRUCT0] = opNewStruct0
	jt[NEWSTRUCT] = opNewStruct
	jt[NEWMAP] = opNewMap
	jt[SIZE] = opSize
	jt[HASKEY] = opHasKey
	jt[KEYS] = opKeys
	jt[VALUES] = opValues
	jt[PICKITEM] = opPickItem
	jt[APPEND] = opAppend
	jt[SETITEM] = opSetItem
	jt[REVERSEITEMS] = opReverseItems
	jt[REMOVE] = opRemove
	jt[CLEARITEMS] = opClearItems
	jt[POPITEM] = opPopItem

	// Type checks and casts.
	jt[ISNULL] = opIsNull
	jt[ISTYPE] = opIsType
	jt[CONVERT] = opConvert

	// Extensions.
	jt[ABORTMSG] = opAbort
	jt[ASSERTMSG] = opAssert
}
