package vmerrors

import (
	"errors"
	"strings"
)

// Script decode (S) errors
var (
	ErrInvalidOpcode = errors.New("S1|InvalidOpcode: Byte value does not decode to a known instruction.")
	ErrOutOfBounds   = errors.New("S2|OutOfBounds: Instruction operand or branch target reads past the end of the script.")
	ErrInvalidScript = errors.New("S3|InvalidScript: Strict construction rejected the script.")
)

// Evaluation stack (E) errors
var (
	ErrStackUnderflow = errors.New("E1|StackUnderflow: Operation requires more items than the evaluation stack holds.")
	ErrInvalidIndex   = errors.New("E2|InvalidIndex: Index-based stack or container access outside current bounds.")
)

// Resource limit (R) errors. StackOverflow, InvocationStackOverflow and
// OutOfGas bypass try/catch (see nonCatchable); TryNestingOverflow and
// MaxItemSize surface to the script as catchable exceptions.
var (
	ErrStackOverflow           = errors.New("R1|StackOverflow: Live stack item references exceed the configured ceiling.")
	ErrInvocationStackOverflow = errors.New("R2|InvocationStackOverflow: Call depth exceeds the configured invocation stack bound.")
	ErrTryNestingOverflow      = errors.New("R3|TryNestingOverflow: Nested exception handlers exceed the configured depth.")
	ErrMaxItemSize             = errors.New("R4|MaxItemSize: Byte item length exceeds the configured maximum.")
	ErrOutOfGas                = errors.New("R5|OutOfGas: Gas consumed would exceed the gas limit.")
)

// Type system and arithmetic (T) errors
var (
	ErrInvalidCast     = errors.New("T1|InvalidCast: Stack item cannot be converted to the requested type.")
	ErrDivideByZero    = errors.New("T2|DivideByZero: Integer division or modulo by zero.")
	ErrArithmeticRange = errors.New("T3|ArithmeticRange: Numeric operand or result outside the permitted range.")
	ErrBigIntegerBound = errors.New("T4|BigIntegerBound: Integer result does not fit in a 32-byte two's-complement encoding.")
)

// Engine and host boundary (H) errors
var (
	ErrNoContext         = errors.New("H1|NoContext: Operation requires a current execution context.")
	ErrUnknownSyscall    = errors.New("H2|UnknownSyscall: No interop service registered under the requested id.")
	ErrPermissionDenied  = errors.New("H3|PermissionDenied: Current call flags do not satisfy the service requirements.")
	ErrUncaughtException = errors.New("H4|UncaughtException: Exception search exhausted the invocation stack.")
	ErrAborted           = errors.New("H5|Aborted: Execution aborted by ABORT or an external abort request.")
	ErrAssertFailed      = errors.New("H6|AssertFailed: ASSERT condition evaluated to false.")
	ErrUnknownToken      = errors.New("H7|UnknownToken: CALLT token has no registered invoker.")
)

// nonCatchable is the fixed list of faults that bypass the try-stack
// search and always terminate the run. Everything else raised inside an
// instruction handler is surfaced to the script as a catchable exception.
var nonCatchable = []error{
	ErrInvalidOpcode,
	ErrOutOfBounds,
	ErrInvalidScript,
	ErrStackOverflow,
	ErrInvocationStackOverflow,
	ErrOutOfGas,
	ErrUnknownSyscall,
	ErrPermissionDenied,
	ErrAborted,
	ErrAssertFailed,
	ErrUnknownToken,
}

// IsCatchable reports whether script code may recover from err via a
// TRY/CATCH handler.
func IsCatchable(err error) bool {
	if err == nil {
		return true
	}
	for _, nc := range nonCatchable {
		if errors.Is(err, nc) {
			return false
		}
	}
	return true
}

// GetErrorName extracts the error name from the error message.
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") || !strings.Contains(errStr, ":") {
		return errStr
	}
	parts := strings.SplitN(errStr, "|", 2)
	if len(parts) < 2 {
		return errStr
	}
	nameDesc := parts[1]
	nameParts := strings.SplitN(nameDesc, ":", 2)
	if len(nameParts) < 1 {
		return errStr
	}
	return strings.TrimSpace(nameParts[0])
}

// GetErrorCode extracts the error code from the error message.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") {
		return ""
	}
	parts := strings.SplitN(errStr, "|", 2)
	return strings.TrimSpace(parts[0])
}

// GetErrorDesc extracts the error description from the error message.
func GetErrorDesc(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()
	parts := strings.SplitN(errStr, ":", 2)
	if len(parts) < 2 {
		return "DESC NOT SET"
	}
	return strings.TrimSpace(parts[1])
}
