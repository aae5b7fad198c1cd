package vm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

// runCode loads code into a fresh engine with default limits and runs it to a
// terminal state.
func runCode(t *testing.T, code []byte) *Engine {
	t.Helper()
	e := NewEngine(DefaultLimits())
	_, err := e.LoadScriptBytes(code)
	require.NoError(t, err)
	e.Run()
	return e
}

func resultInts(t *testing.T, e *Engine) []int64 {
	t.Helper()
	return stackInts(t, e.ResultStack())
}

func TestAddHalts(t *testing.T) {
	e := runCode(t, []byte{byte(PUSH1), byte(PUSH2), byte(ADD)})
	assert.Equal(t, HaltState, e.State())
	assert.NoError(t, e.FaultError())
	assert.Equal(t, []int64{3}, resultInts(t, e))
	// All references moved to the result stack.
	assert.Equal(t, 1, e.RefCount())
}

func TestImplicitReturnAtEnd(t *testing.T) {
	// No explicit RET; running off the end halts cleanly.
	e := runCode(t, []byte{byte(PUSH5)})
	assert.Equal(t, HaltState, e.State())
	assert.Equal(t, []int64{5}, resultInts(t, e))
}

func TestEmptyInvocationStackHalts(t *testing.T) {
	e := NewEngine(DefaultLimits())
	e.Run()
	assert.Equal(t, HaltState, e.State())
}

func TestDivideByZeroFaults(t *testing.T) {
	e := runCode(t, []byte{byte(PUSH1), byte(PUSH0), byte(DIV)})
	assert.Equal(t, FaultState, e.State())
	assert.True(t, errors.Is(e.FaultError(), vmerrors.ErrDivideByZero))
	assert.NotNil(t, e.UncaughtException())
	// The failure site stays inspectable.
	assert.Equal(t, 1, e.InvocationDepth())
}

func TestDivideByZeroCaught(t *testing.T) {
	code := []byte{
		byte(TRY), 8, 0,
		byte(PUSH1),
		byte(PUSH0),
		byte(DIV),
		byte(NOP), byte(NOP),
		byte(DROP), // catch: discard the exception message
		byte(PUSH9),
		byte(RET),
	}
	e := runCode(t, code)
	assert.Equal(t, HaltState, e.State())
	assert.Equal(t, []int64{9}, resultInts(t, e))
}

func TestThrowCaught(t *testing.T) {
	code := []byte{
		byte(TRY), 10, 0,
		byte(PUSHDATA1), 4, 'b', 'o', 'o', 'm',
		byte(THROW),
		byte(ENDTRY), 2, // catch: leave exception, exit try
		byte(RET),
	}
	e := runCode(t, code)
	require.Equal(t, HaltState, e.State())
	top, err := e.ResultStack().Peek(0)
	require.NoError(t, err)
	b, err := top.TryBytes()
	require.NoError(t, err)
	assert.Equal(t, "boom", string(b))
}

func TestFinallyRunsOnNormalExit(t *testing.T) {
	code := []byte{
		byte(TRY), 0, 7,
		byte(PUSH1),
		byte(ENDTRY), 6, // end target: offset 10
		byte(NOP),
		byte(PUSH2), // finally body
		byte(ENDFINALLY),
		byte(NOP),
		byte(RET), // offset 10
	}
	e := runCode(t, code)
	require.Equal(t, HaltState, e.State())
	assert.Equal(t, []int64{1, 2}, resultInts(t, e))
}

func TestCatchThenFinally(t *testing.T) {
	code := []byte{
		byte(TRY), 9, 13,
		byte(PUSHDATA1), 1, 'e',
		byte(THROW),
		byte(NOP), byte(NOP),
		byte(ENDTRY), 6, // catch at 9, end target 15
		byte(NOP), byte(NOP),
		byte(PUSH7), // finally at 13
		byte(ENDFINALLY),
		byte(RET), // offset 15
	}
	e := runCode(t, code)
	require.Equal(t, HaltState, e.State())
	require.Equal(t, 2, e.ResultStack().Len())
	top, _ := e.ResultStack().Peek(0)
	assert.Equal(t, int64(7), mustInt(t, top))
	under, _ := e.ResultStack().Peek(1)
	b, err := under.TryBytes()
	require.NoError(t, err)
	assert.Equal(t, "e", string(b))
}

func TestRethrowThroughFinally(t *testing.T) {
	// No catch section: the finally body runs, then ENDFINALLY re-raises.
	code := []byte{
		byte(TRY), 0, 10,
		byte(PUSHDATA1), 1, 'x',
		byte(THROW),
		byte(NOP), byte(NOP), byte(NOP),
		byte(PUSH5), // finally at 10
		byte(ENDFINALLY),
		byte(RET),
	}
	e := runCode(t, code)
	assert.Equal(t, FaultState, e.State())
	assert.True(t, errors.Is(e.FaultError(), vmerrors.ErrUncaughtException))
	require.NotNil(t, e.UncaughtException())
	b, err := e.UncaughtException().TryBytes()
	require.NoError(t, err)
	assert.Equal(t, "x", string(b))
}

func TestNestedTryInnerRethrows(t *testing.T) {
	// The inner catch rethrows; the outer catch receives the second value.
	code := []byte{
		byte(TRY), 19, 0, // outer, catch at 19
		byte(TRY), 9, 0, // inner at 3, catch at 12
		byte(PUSHDATA1), 1, 'a',
		byte(THROW),
		byte(NOP), byte(NOP), byte(NOP),
		byte(DROP), // inner catch at 12
		byte(PUSHDATA1), 1, 'b',
		byte(THROW), // offset 16: rethrow out of a spent catch frame
		byte(NOP), byte(NOP),
		byte(ENDTRY), 2, // outer catch at 19, exit to 21
		byte(RET), // offset 21
	}
	e := runCode(t, code)
	require.Equal(t, HaltState, e.State())
	top, err := e.ResultStack().Peek(0)
	require.NoError(t, err)
	b, err := top.TryBytes()
	require.NoError(t, err)
	assert.Equal(t, "b", string(b))
}

func TestTryNestingDepth(t *testing.T) {
	limit := DefaultLimits().MaxTryNestingDepth

	// Exactly the limit is fine.
	var b ScriptBuilder
	for i := 0; i < limit; i++ {
		b.Emit(TRY, byte(int8(3*(limit-i))), 0) // all catches point at the trailing RET
	}
	b.Emit(RET)
	e := runCode(t, b.Bytes())
	assert.Equal(t, HaltState, e.State())

	// One deeper raises a catchable overflow, received by the enclosing frame.
	b = ScriptBuilder{}
	for i := 0; i <= limit; i++ {
		b.Emit(TRY, byte(int8(3*(limit+1-i))), 0)
	}
	b.Emit(DROP) // catch target: discard the overflow message
	b.Emit(RET)
	e = runCode(t, b.Bytes())
	assert.Equal(t, HaltState, e.State())
	assert.Equal(t, 0, e.ResultStack().Len())
}

func TestCallAndReturn(t *testing.T) {
	code := []byte{
		byte(CALL), 5,
		byte(PUSH2),
		byte(ADD),
		byte(RET),
		byte(PUSH3), // callee at 5
		byte(RET),
	}
	e := runCode(t, code)
	require.Equal(t, HaltState, e.State())
	assert.Equal(t, []int64{5}, resultInts(t, e))
}

func TestRecursionOverflow(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxInvocationStackSize = 8

	e := NewEngine(limits)
	_, err := e.LoadScriptBytes([]byte{byte(CALL), 0, byte(RET)})
	require.NoError(t, err)
	e.Run()

	assert.Equal(t, FaultState, e.State())
	assert.True(t, errors.Is(e.FaultError(), vmerrors.ErrInvocationStackOverflow))
	// The bound is never exceeded.
	assert.Equal(t, 8, e.InvocationDepth())
}

func TestReferenceCeiling(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxStackSize = 16

	// Push in an infinite loop until the counter trips.
	e := NewEngine(limits)
	_, err := e.LoadScriptBytes([]byte{byte(PUSH1), byte(JMP), 0xFF})
	require.NoError(t, err)
	e.Run()

	assert.Equal(t, FaultState, e.State())
	assert.True(t, errors.Is(e.FaultError(), vmerrors.ErrStackOverflow))
}

func TestCyclicArrayDropsDoNotAccumulate(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxStackSize = 16

	// Create and immediately drop a self-referencing array more times than
	// the ceiling permits simultaneously; each drop must return the count
	// to its baseline.
	var b ScriptBuilder
	for i := 0; i < 20; i++ {
		b.Emit(NEWARRAY0)
		b.Emit(DUP)
		b.Emit(DUP)
		b.Emit(APPEND)
		b.Emit(DROP)
	}
	b.Emit(RET)

	e := NewEngine(limits)
	_, err := e.LoadScriptBytes(b.Bytes())
	require.NoError(t, err)
	e.Run()

	assert.Equal(t, HaltState, e.State())
	assert.NoError(t, e.FaultError())
	assert.Equal(t, 0, e.RefCount())
}

func TestAbortOpcodeNotCatchable(t *testing.T) {
	code := []byte{
		byte(TRY), 4, 0,
		byte(ABORT),
		byte(DROP), // catch target, never reached
		byte(RET),
	}
	e := runCode(t, code)
	assert.Equal(t, FaultState, e.State())
	assert.True(t, errors.Is(e.FaultError(), vmerrors.ErrAborted))
}

func TestAbortMsg(t *testing.T) {
	var b ScriptBuilder
	b.EmitPushString("invariant broken")
	b.Emit(ABORTMSG)
	e := runCode(t, b.Bytes())
	assert.Equal(t, FaultState, e.State())
	assert.True(t, errors.Is(e.FaultError(), vmerrors.ErrAborted))
	assert.Contains(t, e.FaultError().Error(), "invariant broken")
}

func TestAssert(t *testing.T) {
	e := runCode(t, []byte{byte(PUSHT), byte(ASSERT), byte(PUSH1)})
	assert.Equal(t, HaltState, e.State())

	e = runCode(t, []byte{byte(PUSHF), byte(ASSERT)})
	assert.Equal(t, FaultState, e.State())
	assert.True(t, errors.Is(e.FaultError(), vmerrors.ErrAssertFailed))
}

func TestExternalAbort(t *testing.T) {
	e := NewEngine(DefaultLimits())
	_, err := e.LoadScriptBytes([]byte{byte(PUSH1), byte(JMP), 0xFF})
	require.NoError(t, err)
	e.Abort()
	e.Run()
	assert.Equal(t, FaultState, e.State())
	assert.True(t, errors.Is(e.FaultError(), vmerrors.ErrAborted))
}

func TestJumpIf(t *testing.T) {
	code := []byte{
		byte(PUSHT),
		byte(JMPIF), 4, // taken: to offset 5
		byte(PUSH1),
		byte(RET),
		byte(PUSH2),
		byte(RET),
	}
	e := runCode(t, code)
	assert.Equal(t, []int64{2}, resultInts(t, e))

	code[0] = byte(PUSHF)
	e = runCode(t, code)
	assert.Equal(t, []int64{1}, resultInts(t, e))
}

func TestJmpEqComparesAsIntegers(t *testing.T) {
	// ByteString{0x01} and Integer 1 compare equal under JMPEQ.
	code := []byte{
		byte(PUSHDATA1), 1, 0x01,
		byte(PUSH1),
		byte(JMPEQ), 4, // to offset 8
		byte(PUSH0),
		byte(RET),
		byte(PUSH16),
		byte(RET),
	}
	e := runCode(t, code)
	assert.Equal(t, []int64{16}, resultInts(t, e))
}

func TestPushACallA(t *testing.T) {
	code := []byte{
		byte(PUSHA), 7, 0, 0, 0,
		byte(CALLA),
		byte(RET),
		byte(PUSH9), // offset 7
		byte(RET),
	}
	e := runCode(t, code)
	require.Equal(t, HaltState, e.State())
	assert.Equal(t, []int64{9}, resultInts(t, e))
}

func TestCallARejectsForeignPointer(t *testing.T) {
	e := NewEngine(DefaultLimits())
	_, err := e.LoadScriptBytes([]byte{byte(CALLA), byte(RET)})
	require.NoError(t, err)
	// A pointer into a different script must not be callable here.
	other := NewScriptNonStrict([]byte{byte(RET)})
	e.Estack().Push(stackitem.NewPointer(0, other))
	e.Run()
	assert.Equal(t, FaultState, e.State())
	assert.True(t, errors.Is(e.FaultError(), vmerrors.ErrInvalidScript))
}

func TestReturnValueCountEnforced(t *testing.T) {
	script, err := NewScript([]byte{byte(PUSH1), byte(PUSH2), byte(RET)})
	require.NoError(t, err)

	e := NewEngine(DefaultLimits())
	_, err = e.LoadScript(script, 1)
	require.NoError(t, err)
	e.Run()
	assert.Equal(t, FaultState, e.State())
	assert.True(t, errors.Is(e.FaultError(), vmerrors.ErrInvalidScript))

	e = NewEngine(DefaultLimits())
	_, err = e.LoadScript(script, 2)
	require.NoError(t, err)
	e.Run()
	assert.Equal(t, HaltState, e.State())
	assert.Equal(t, []int64{1, 2}, resultInts(t, e))
}

func TestDeterministicExecution(t *testing.T) {
	var b ScriptBuilder
	b.EmitPushInt64(1000003)
	b.EmitPushInt64(77)
	b.Emit(MUL)
	b.EmitPushInt64(257)
	b.Emit(MOD)
	b.Emit(NEWARRAY0)
	b.Emit(DUP)
	b.Emit(ROT)
	b.Emit(APPEND)
	b.Emit(DUP)
	b.EmitPushInt64(0)
	b.Emit(PICKITEM)

	run := func() []int64 {
		e := runCode(t, b.Bytes())
		require.Equal(t, HaltState, e.State())
		top, err := e.ResultStack().Peek(0)
		require.NoError(t, err)
		return []int64{mustInt(t, top)}
	}
	assert.Equal(t, run(), run())
}

func TestBreakpoint(t *testing.T) {
	script, err := NewScript([]byte{byte(PUSH1), byte(PUSH2), byte(ADD)})
	require.NoError(t, err)

	e := NewEngine(DefaultLimits())
	_, err = e.LoadScript(script, -1)
	require.NoError(t, err)
	e.AddBreakpoint(script, 2)

	e.Run()
	require.Equal(t, BreakState, e.State())
	assert.Equal(t, 2, e.Context().IP())
	assert.Equal(t, 2, e.Estack().Len())

	e.Run()
	assert.Equal(t, HaltState, e.State())
	assert.Equal(t, []int64{3}, resultInts(t, e))
}

func TestStepInto(t *testing.T) {
	e := NewEngine(DefaultLimits())
	_, err := e.LoadScriptBytes([]byte{byte(PUSH1), byte(PUSH2), byte(ADD)})
	require.NoError(t, err)

	e.StepInto()
	require.Equal(t, BreakState, e.State())
	assert.Equal(t, 1, e.Estack().Len())

	e.StepInto()
	e.StepInto()
	require.Equal(t, BreakState, e.State())
	top, _ := e.Estack().Peek(0)
	assert.Equal(t, int64(3), mustInt(t, top))

	e.Run()
	assert.Equal(t, HaltState, e.State())
}

func TestStepOver(t *testing.T) {
	code := []byte{
		byte(CALL), 3,
		byte(RET),
		byte(PUSH1), // callee
		byte(RET),
	}
	e := NewEngine(DefaultLimits())
	_, err := e.LoadScriptBytes(code)
	require.NoError(t, err)

	// The whole call completes before the pause.
	e.StepOver()
	require.Equal(t, BreakState, e.State())
	assert.Equal(t, 1, e.InvocationDepth())
	assert.Equal(t, 1, e.Estack().Len())

	e.Run()
	assert.Equal(t, HaltState, e.State())
	assert.Equal(t, []int64{1}, resultInts(t, e))
}
