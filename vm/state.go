package vm

// State is the engine's run status. NoneState is transient; the other three
// are terminal for the current run, with BreakState resumable back into the
// fetch loop.
type State byte

const (
	NoneState State = iota
	HaltState
	FaultState
	BreakState
)

func (s State) String() string {
	switch s {
	case NoneState:
		return "NONE"
	case HaltState:
		return "HALT"
	case FaultState:
		return "FAULT"
	case BreakState:
		return "BREAK"
	default:
		return "UNKNOWN"
	}
}
