package vm

// Debug surface: breakpoints by (script, offset) plus single-stepping. A
// paused engine (BREAK) keeps its invocation stack fully inspectable and
// resumes through Run or any of the Step methods.

// AddBreakpoint pauses execution when script is about to execute the
// instruction at offset.
func (e *Engine) AddBreakpoint(script *Script, offset int) {
	if e.breakpoints == nil {
		e.breakpoints = make(map[*Script]map[int]bool)
	}
	m := e.breakpoints[script]
	if m == nil {
		m = make(map[int]bool)
		e.breakpoints[script] = m
	}
	m[offset] = true
}

// RemoveBreakpoint clears a breakpoint set by AddBreakpoint.
func (e *Engine) RemoveBreakpoint(script *Script, offset int) {
	if m := e.breakpoints[script]; m != nil {
		delete(m, offset)
	}
}

func (e *Engine) atBreakpoint() bool {
	if len(e.breakpoints) == 0 || len(e.istack) == 0 {
		return false
	}
	ctx := e.Context()
	return e.breakpoints[ctx.script][ctx.ip]
}

// StepInto executes one instruction and pauses.
func (e *Engine) StepInto() {
	if e.state == BreakState {
		e.state = NoneState
	}
	e.ExecuteNext()
	if e.state == NoneState {
		e.state = BreakState
	}
}

// StepOver executes the next instruction, running any call it makes to
// completion before pausing.
func (e *Engine) StepOver() {
	depth := len(e.istack)
	e.StepInto()
	for e.state == BreakState && len(e.istack) > depth {
		e.StepInto()
	}
}

// StepOut runs until the current context returns.
func (e *Engine) StepOut() {
	depth := len(e.istack)
	e.StepInto()
	for e.state == BreakState && len(e.istack) >= depth {
		e.StepInto()
	}
}
