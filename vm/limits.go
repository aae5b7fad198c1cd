package vm

// ExecutionLimits bounds the resources one run may consume. The struct is
// supplied at engine construction and never mutated afterwards.
type ExecutionLimits struct {
	// MaxStackSize caps the total number of live stack item references
	// (stack entries, slot entries and container elements) per engine.
	MaxStackSize int
	// MaxItemSize caps the byte length of ByteString and Buffer items.
	MaxItemSize int
	// MaxInvocationStackSize caps the call depth.
	MaxInvocationStackSize int
	// MaxTryNestingDepth caps nested exception handlers per context.
	MaxTryNestingDepth int
	// MaxShift caps the operand of SHL and SHR.
	MaxShift int
}

// DefaultLimits are the consensus defaults.
func DefaultLimits() ExecutionLimits {
	return ExecutionLimits{
		MaxStackSize:           2048,
		MaxItemSize:            65535,
		MaxInvocationStackSize: 1024,
		MaxTryNestingDepth:     16,
		MaxShift:               256,
	}
}
