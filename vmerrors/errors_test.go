package vmerrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorExtractors(t *testing.T) {
	assert.Equal(t, "T2", GetErrorCode(ErrDivideByZero))
	assert.Equal(t, "DivideByZero", GetErrorName(ErrDivideByZero))
	assert.Equal(t, "Integer division or modulo by zero.", GetErrorDesc(ErrDivideByZero))

	assert.Equal(t, "No Error", GetErrorName(nil))
	assert.Equal(t, "", GetErrorCode(nil))
}

func TestExtractorsOnWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("%w: 5 / 0", ErrDivideByZero)
	assert.Equal(t, "T2", GetErrorCode(wrapped))
	assert.Equal(t, "DivideByZero", GetErrorName(wrapped))
}

func TestIsCatchable(t *testing.T) {
	catchable := []error{
		ErrStackUnderflow, ErrInvalidIndex, ErrTryNestingOverflow,
		ErrInvalidCast, ErrDivideByZero, ErrArithmeticRange,
		ErrBigIntegerBound, ErrMaxItemSize, ErrUncaughtException,
	}
	for _, err := range catchable {
		assert.True(t, IsCatchable(err), "expected %v catchable", err)
	}

	nonCatchableList := []error{
		ErrInvalidOpcode, ErrOutOfBounds, ErrInvalidScript,
		ErrStackOverflow, ErrInvocationStackOverflow, ErrOutOfGas,
		ErrUnknownSyscall, ErrPermissionDenied, ErrAborted,
		ErrAssertFailed, ErrUnknownToken,
	}
	for _, err := range nonCatchableList {
		assert.False(t, IsCatchable(err), "expected %v non-catchable", err)
	}
}

func TestIsCatchableWrapped(t *testing.T) {
	assert.False(t, IsCatchable(fmt.Errorf("%w: depth 1024", ErrInvocationStackOverflow)))
	assert.True(t, IsCatchable(fmt.Errorf("%w: 1 %% 0", ErrDivideByZero)))
	assert.True(t, IsCatchable(nil))
}

func TestCodesAreUnique(t *testing.T) {
	all := []error{
		ErrInvalidOpcode, ErrOutOfBounds, ErrInvalidScript,
		ErrStackUnderflow, ErrInvalidIndex,
		ErrStackOverflow, ErrInvocationStackOverflow, ErrTryNestingOverflow,
		ErrMaxItemSize, ErrOutOfGas,
		ErrInvalidCast, ErrDivideByZero, ErrArithmeticRange, ErrBigIntegerBound,
		ErrNoContext, ErrUnknownSyscall, ErrPermissionDenied,
		ErrUncaughtException, ErrAborted, ErrAssertFailed, ErrUnknownToken,
	}
	seen := make(map[string]bool)
	for _, err := range all {
		code := GetErrorCode(err)
		assert.NotEmpty(t, code)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}
