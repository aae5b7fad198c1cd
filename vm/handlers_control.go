package vm

import (
	"fmt"

	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

func checkPointerTarget(ctx *Context, target int) error {
	if target < 0 || target > ctx.script.Len() {
		return fmt.Errorf("%w: pointer target %d", vmerrors.ErrOutOfBounds, target)
	}
	return nil
}

func opNop(e *Engine, in *Instruction) error { return nil }

func opJmp(e *Engine, in *Instruction) error {
	ctx := e.Context()
	return e.jump(ctx, ctx.insOffset+in.JumpOffset())
}

func opJmpIf(e *Engine, in *Instruction) error {
	cond, err := e.popBool()
	if err != nil {
		return err
	}
	if in.OpCode == JMPIFNOT || in.OpCode == JMPIFNOT_L {
		cond = !cond
	}
	if !cond {
		return nil
	}
	ctx := e.Context()
	return e.jump(ctx, ctx.insOffset+in.JumpOffset())
}

// opJmpEq branches on integer equality of the top two items.
func opJmpEq(e *Engine, in *Instruction) error {
	b, err := e.popInt()
	if err != nil {
		return err
	}
	a, err := e.popInt()
	if err != nil {
		return err
	}
	cond := a.Cmp(b) == 0
	if in.OpCode == JMPNE || in.OpCode == JMPNE_L {
		cond = !cond
	}
	if !cond {
		return nil
	}
	ctx := e.Context()
	return e.jump(ctx, ctx.insOffset+in.JumpOffset())
}

func opJmpCmp(e *Engine, in *Instruction) error {
	b, err := e.popInt()
	if err != nil {
		return err
	}
	a, err := e.popInt()
	if err != nil {
		return err
	}
	c := a.Cmp(b)
	var cond bool
	switch in.OpCode {
	case JMPGT, JMPGT_L:
		cond = c > 0
	case JMPGE, JMPGE_L:
		cond = c >= 0
	case JMPLT, JMPLT_L:
		cond = c < 0
	case JMPLE, JMPLE_L:
		cond = c <= 0
	}
	if !cond {
		return nil
	}
	ctx := e.Context()
	return e.jump(ctx, ctx.insOffset+in.JumpOffset())
}

func opCall(e *Engine, in *Instruction) error {
	ctx := e.Context()
	return e.call(ctx, ctx.insOffset+in.JumpOffset())
}

func opCallA(e *Engine, in *Instruction) error {
	item, err := e.pop()
	if err != nil {
		return err
	}
	ptr, ok := item.(*stackitem.Pointer)
	if !ok {
		return fmt.Errorf("%w: CALLA expects Pointer, got %s", vmerrors.ErrInvalidCast, item.Type())
	}
	ctx := e.Context()
	if ptr.ScriptRef() != ctx.script {
		return fmt.Errorf("%w: pointer into a different script", vmerrors.ErrInvalidScript)
	}
	return e.call(ctx, ptr.Position())
}

// opCallT is the standalone default. The interop layer replaces it with a
// handler that resolves the token against the loaded contract's method table.
func opCallT(e *Engine, in *Instruction) error {
	return fmt.Errorf("%w: token %d", vmerrors.ErrUnknownToken, in.TokenID())
}

// opSyscall is the standalone default; without a host there are no services.
func opSyscall(e *Engine, in *Instruction) error {
	return fmt.Errorf("%w: %#08x", vmerrors.ErrUnknownSyscall, in.SyscallID())
}

func opAbort(e *Engine, in *Instruction) error {
	if in.OpCode == ABORTMSG {
		msg, err := e.popBytes()
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", vmerrors.ErrAborted, msg)
	}
	return fmt.Errorf("%w: ABORT", vmerrors.ErrAborted)
}

func opAssert(e *Engine, in *Instruction) error {
	var msg []byte
	if in.OpCode == ASSERTMSG {
		var err error
		msg, err = e.popBytes()
		if err != nil {
			return err
		}
	}
	cond, err := e.popBool()
	if err != nil {
		return err
	}
	if cond {
		return nil
	}
	if in.OpCode == ASSERTMSG {
		return fmt.Errorf("%w: %s", vmerrors.ErrAssertFailed, msg)
	}
	return fmt.Errorf("%w: ASSERT", vmerrors.ErrAssertFailed)
}

func opThrow(e *Engine, in *Instruction) error {
	item, err := e.pop()
	if err != nil {
		return err
	}
	e.throw(item, nil)
	return nil
}

func opTry(e *Engine, in *Instruction) error {
	ctx := e.Context()
	catchRel, finallyRel := in.TryOffsets()
	if catchRel == 0 && finallyRel == 0 {
		return fmt.Errorf("%w: TRY with neither catch nor finally", vmerrors.ErrInvalidScript)
	}
	t := &tryContext{catchOffset: -1, finallyOffset: -1, endOffset: -1}
	if catchRel != 0 {
		t.catchOffset = ctx.insOffset + catchRel
		if err := checkPointerTarget(ctx, t.catchOffset); err != nil {
			return err
		}
	}
	if finallyRel != 0 {
		t.finallyOffset = ctx.insOffset + finallyRel
		if err := checkPointerTarget(ctx, t.finallyOffset); err != nil {
			return err
		}
	}
	return ctx.pushTry(t, e.limits.MaxTryNestingDepth)
}

func opEndTry(e *Engine, in *Instruction) error {
	ctx := e.Context()
	t := ctx.peekTry()
	if t == nil {
		return fmt.Errorf("%w: ENDTRY outside try", vmerrors.ErrInvalidScript)
	}
	if t.state == tryStateFinally {
		return fmt.Errorf("%w: ENDTRY inside finally", vmerrors.ErrInvalidScript)
	}
	end := ctx.insOffset + in.JumpOffset()
	if err := checkPointerTarget(ctx, end); err != nil {
		return err
	}
	if t.hasFinally() {
		t.state = tryStateFinally
		t.endOffset = end
		return e.jump(ctx, t.finallyOffset)
	}
	ctx.popTry()
	return e.jump(ctx, end)
}

func opEndFinally(e *Engine, in *Instruction) error {
	ctx := e.Context()
	t := ctx.popTry()
	if t == nil || t.state != tryStateFinally {
		return fmt.Errorf("%w: ENDFINALLY outside finally", vmerrors.ErrInvalidScript)
	}
	if e.uncaught != nil {
		// The finally body ran on the exception path; resume the search.
		e.handleException()
		return nil
	}
	return e.jump(ctx, t.endOffset)
}

func opRet(e *Engine, in *Instruction) error {
	if err := e.unloadContext(); err != nil {
		return err
	}
	if len(e.istack) == 0 {
		e.state = HaltState
	}
	return nil
}
