package vm

import (
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/colorfulnotion/neovm/log"
	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

// PreExecHook runs after fetch and ip advance but before the handler for the
// fetched instruction. The interop layer installs the gas meter here; an error
// return takes the same path as a handler error.
type PreExecHook func(ctx *Context, in *Instruction) error

// Engine executes loaded scripts instruction by instruction until it reaches
// HALT, FAULT or a breakpoint. A fresh engine is required per execution; the
// terminal state is kept inspectable afterwards.
type Engine struct {
	limits ExecutionLimits
	refs   *ReferenceCounter

	istack []*Context
	rstack *EvaluationStack

	state State
	table JumpTable

	// uncaught is the exception item currently travelling through the
	// handler search. uncaughtErr keeps the originating handler error, if
	// any, so the terminal fault reason stays precise.
	uncaught    stackitem.Item
	uncaughtErr error

	faultErr error

	preExec     PreExecHook
	abortSignal atomic.Bool

	breakpoints map[*Script]map[int]bool
}

// NewEngine returns an engine with the default opcode table and the given
// resource limits.
func NewEngine(limits ExecutionLimits) *Engine {
	refs := &ReferenceCounter{}
	return &Engine{
		limits: limits,
		refs:   refs,
		rstack: &EvaluationStack{refs: refs},
		table:  defaultJumpTable,
	}
}

// SetHandler replaces the handler for a single opcode. Used by the interop
// layer to route SYSCALL and CALLT through host services.
func (e *Engine) SetHandler(op OpCode, h Handler) {
	e.table[op] = h
}

// SetPreExecHook installs f as the per-instruction hook.
func (e *Engine) SetPreExecHook(f PreExecHook) {
	e.preExec = f
}

// Limits returns the engine's resource limits.
func (e *Engine) Limits() ExecutionLimits { return e.limits }

// State returns the current run status.
func (e *Engine) State() State { return e.state }

// FaultError returns the reason for a FAULT transition, nil otherwise.
func (e *Engine) FaultError() error { return e.faultErr }

// UncaughtException returns the exception item that exhausted the handler
// search, nil if the fault had a different cause.
func (e *Engine) UncaughtException() stackitem.Item {
	if e.state == FaultState {
		return e.uncaught
	}
	return nil
}

// ResultStack holds the values left behind by fully unwound contexts.
func (e *Engine) ResultStack() *EvaluationStack { return e.rstack }

// RefCount reports the current tracked reference total.
func (e *Engine) RefCount() int { return e.refs.Size() }

// InvocationDepth returns the number of loaded contexts.
func (e *Engine) InvocationDepth() int { return len(e.istack) }

// Context returns the current (innermost) execution context, nil when the
// invocation stack is empty.
func (e *Engine) Context() *Context {
	if len(e.istack) == 0 {
		return nil
	}
	return e.istack[len(e.istack)-1]
}

// ContextAt returns the context i levels below the current one.
func (e *Engine) ContextAt(i int) *Context {
	n := len(e.istack)
	if i < 0 || i >= n {
		return nil
	}
	return e.istack[n-1-i]
}

// Estack is shorthand for the current context's evaluation stack.
func (e *Engine) Estack() *EvaluationStack {
	return e.Context().stack
}

// LoadScript pushes a new context for script onto the invocation stack.
// rvcount of -1 leaves every value for the caller; a non-negative count is
// enforced at return time.
func (e *Engine) LoadScript(script *Script, rvcount int) (*Context, error) {
	if len(e.istack) >= e.limits.MaxInvocationStackSize {
		return nil, fmt.Errorf("%w: depth %d", vmerrors.ErrInvocationStackOverflow, len(e.istack))
	}
	ctx := newContext(script, e.refs, rvcount)
	e.istack = append(e.istack, ctx)
	return ctx, nil
}

// LoadScriptBytes parses b with strict validation and loads it.
func (e *Engine) LoadScriptBytes(b []byte) (*Context, error) {
	script, err := NewScript(b)
	if err != nil {
		return nil, err
	}
	return e.LoadScript(script, -1)
}

// Abort signals the engine to fault before its next instruction. Safe to call
// from another goroutine while Run is in progress.
func (e *Engine) Abort() {
	e.abortSignal.Store(true)
}

// Run executes until a terminal state. A paused (BREAK) engine resumes.
// The fault reason, if any, is returned.
func (e *Engine) Run() error {
	if e.state == BreakState {
		e.state = NoneState
	}
	for e.state == NoneState {
		e.ExecuteNext()
		if e.state == NoneState && e.atBreakpoint() {
			e.state = BreakState
		}
	}
	return e.faultErr
}

// ExecuteNext fetches, decodes and dispatches a single instruction. All error
// paths funnel through the exception machinery; the method itself never
// returns one.
func (e *Engine) ExecuteNext() {
	if e.state == HaltState || e.state == FaultState {
		return
	}
	if e.abortSignal.Load() {
		e.fault(fmt.Errorf("%w: external abort", vmerrors.ErrAborted))
		return
	}
	if len(e.istack) == 0 {
		e.state = HaltState
		return
	}
	ctx := e.Context()

	in := retInstruction
	if ctx.ip != ctx.script.Len() {
		var err error
		in, err = ctx.script.InstructionAt(ctx.ip)
		if err != nil {
			e.fault(err)
			return
		}
	}
	ctx.insOffset = ctx.ip
	ctx.ip += in.Size()

	if e.preExec != nil {
		if err := e.preExec(ctx, in); err != nil {
			e.onError(err)
			return
		}
	}
	if log.TraceEnabled(log.VMMonitoring) {
		log.Trace(log.VMMonitoring, "exec", "offset", ctx.insOffset, "op", in.OpCode.String(), "depth", len(e.istack))
	}
	if err := e.table[in.OpCode](e, in); err != nil {
		e.onError(err)
	}
}

// retInstruction is the implicit RET synthesized when the instruction pointer
// runs off the end of a script.
var retInstruction = &Instruction{OpCode: RET, size: 1}

// onError routes a handler error: catchable errors enter the exception search
// wrapped as a ByteString item, non-catchable ones fault immediately.
func (e *Engine) onError(err error) {
	if !vmerrors.IsCatchable(err) {
		e.fault(err)
		return
	}
	e.throw(stackitem.NewByteString([]byte(err.Error())), err)
}

// throw starts the handler search for item. cause, when non-nil, is preserved
// as the fault reason should the search exhaust the invocation stack.
func (e *Engine) throw(item stackitem.Item, cause error) {
	e.uncaught = item
	e.uncaughtErr = cause
	e.handleException()
}

// handleException walks the invocation stack from the innermost context
// outward looking for a try frame able to receive the in-flight exception.
// Contexts skipped over are unloaded with their evaluation stacks discarded.
func (e *Engine) handleException() {
	pop := 0
	for i := len(e.istack) - 1; i >= 0; i-- {
		ctx := e.istack[i]
		for len(ctx.tryStack) > 0 {
			t := ctx.peekTry()
			if t.state == tryStateFinally || (t.state == tryStateCatch && !t.hasFinally()) {
				// This frame is spent: a throw out of its finally body, or
				// out of a catch with no finally, propagates past it.
				ctx.popTry()
				continue
			}
			for ; pop > 0; pop-- {
				top := e.istack[len(e.istack)-1]
				e.istack = e.istack[:len(e.istack)-1]
				top.unload()
			}
			if t.state == tryStateTry && t.hasCatch() {
				t.state = tryStateCatch
				ctx.stack.Push(e.uncaught)
				if err := e.refs.CheckLimit(e.limits.MaxStackSize); err != nil {
					e.fault(err)
					return
				}
				e.uncaught = nil
				e.uncaughtErr = nil
				ctx.ip = t.catchOffset
			} else {
				t.state = tryStateFinally
				ctx.ip = t.finallyOffset
			}
			return
		}
		pop++
	}
	err := e.uncaughtErr
	if err == nil {
		err = fmt.Errorf("%w: %s", vmerrors.ErrUncaughtException, exceptionText(e.uncaught))
	}
	e.fault(err)
}

// exceptionText renders a thrown item for the fault message.
func exceptionText(item stackitem.Item) string {
	if item == nil {
		return "<nil>"
	}
	if b, err := item.TryBytes(); err == nil {
		return string(b)
	}
	return item.String()
}

// fault moves the engine to its terminal FAULT state. The invocation stack is
// left in place so the failure site stays inspectable.
func (e *Engine) fault(err error) {
	e.faultErr = err
	e.state = FaultState
	log.Debug(log.VMMonitoring, "fault", "err", err)
}

// unloadContext pops the current context, moving its declared return values
// to the caller's evaluation stack (or the result stack at the outermost
// level).
func (e *Engine) unloadContext() error {
	ctx := e.Context()
	e.istack = e.istack[:len(e.istack)-1]

	n := ctx.stack.Len()
	if ctx.rvcount >= 0 && n != ctx.rvcount {
		ctx.unload()
		return fmt.Errorf("%w: %d return values, declared %d", vmerrors.ErrInvalidScript, n, ctx.rvcount)
	}
	target := e.rstack
	if len(e.istack) > 0 {
		target = e.Context().stack
	}
	if err := ctx.stack.CopyTo(target, n); err != nil {
		ctx.unload()
		return err
	}
	ctx.unload()
	return nil
}

// jump validates target against the current script and redirects the
// instruction pointer.
func (e *Engine) jump(ctx *Context, target int) error {
	if target < 0 || target > ctx.script.Len() {
		return fmt.Errorf("%w: jump target %d", vmerrors.ErrOutOfBounds, target)
	}
	ctx.ip = target
	return nil
}

// call clones the current context at target and pushes it.
func (e *Engine) call(ctx *Context, target int) error {
	if target < 0 || target > ctx.script.Len() {
		return fmt.Errorf("%w: call target %d", vmerrors.ErrOutOfBounds, target)
	}
	if len(e.istack) >= e.limits.MaxInvocationStackSize {
		return fmt.Errorf("%w: depth %d", vmerrors.ErrInvocationStackOverflow, len(e.istack))
	}
	e.istack = append(e.istack, ctx.cloneForCall(target, e.refs))
	return nil
}

// push places item on the current evaluation stack and enforces the global
// reference limit.
func (e *Engine) push(item stackitem.Item) error {
	e.Estack().Push(item)
	return e.refs.CheckLimit(e.limits.MaxStackSize)
}

// PushItem places item on the current evaluation stack and enforces the
// reference ceiling. Interop handlers use it to return results.
func (e *Engine) PushItem(item stackitem.Item) error { return e.push(item) }

// PopItem removes and returns the top of the current evaluation stack.
func (e *Engine) PopItem() (stackitem.Item, error) { return e.pop() }

// PopBytes pops the top item as bytes.
func (e *Engine) PopBytes() ([]byte, error) { return e.popBytes() }

// PopInt pops the top item as an integer.
func (e *Engine) PopInt() (*big.Int, error) { return e.popInt() }

func (e *Engine) pop() (stackitem.Item, error) {
	return e.Estack().Pop()
}

func (e *Engine) popInt() (*big.Int, error) {
	item, err := e.pop()
	if err != nil {
		return nil, err
	}
	v, err := item.TryInteger()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (e *Engine) popBytes() ([]byte, error) {
	item, err := e.pop()
	if err != nil {
		return nil, err
	}
	return item.TryBytes()
}

func (e *Engine) popBool() (bool, error) {
	item, err := e.pop()
	if err != nil {
		return false, err
	}
	return item.Bool(), nil
}

// popIndex pops a non-negative integer small enough to index in-memory data.
func (e *Engine) popIndex() (int, error) {
	v, err := e.popInt()
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() || v.Int64() < 0 || v.Int64() > int64(e.limits.MaxItemSize) {
		return 0, fmt.Errorf("%w: %s", vmerrors.ErrInvalidIndex, v.String())
	}
	return int(v.Int64()), nil
}

// checkItemSize guards byte payload growth against the item size limit.
func (e *Engine) checkItemSize(n int) error {
	if n > e.limits.MaxItemSize {
		return fmt.Errorf("%w: %d bytes", vmerrors.ErrMaxItemSize, n)
	}
	return nil
}
