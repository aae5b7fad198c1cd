package vm

// tryState tracks which section of a TRY block a handler frame is in.
type tryState byte

const (
	tryStateTry tryState = iota
	tryStateCatch
	tryStateFinally
)

func (s tryState) String() string {
	switch s {
	case tryStateTry:
		return "Try"
	case tryStateCatch:
		return "Catch"
	case tryStateFinally:
		return "Finally"
	default:
		return "Unknown"
	}
}

// tryContext is one frame of a context's exception-handler stack. Offsets
// are absolute; -1 marks an absent catch or finally section. endOffset is
// recorded by ENDTRY so that ENDFINALLY knows where normal control flow
// resumes.
type tryContext struct {
	catchOffset   int
	finallyOffset int
	endOffset     int
	state         tryState
}

func (t *tryContext) hasCatch() bool   { return t.catchOffset >= 0 }
func (t *tryContext) hasFinally() bool { return t.finallyOffset >= 0 }
