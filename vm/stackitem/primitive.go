package stackitem

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"reflect"

	"github.com/colorfulnotion/neovm/vmerrors"
)

// Null is the absence of a value. It equals only Null and converts to
// false / error for the other primitive views.
type Null struct{}

func (Null) Type() Type { return AnyT }
func (Null) Bool() bool { return false }

func (Null) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Null to Integer", vmerrors.ErrInvalidCast)
}

func (Null) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Null to ByteString", vmerrors.ErrInvalidCast)
}

func (Null) Equals(other Item) bool {
	_, ok := other.(Null)
	return ok
}

func (Null) String() string { return "Null" }

// Bool is a boolean value item.
type Bool bool

// NewBool returns a Bool item.
func NewBool(v bool) Bool { return Bool(v) }

func (b Bool) Type() Type { return BooleanT }
func (b Bool) Bool() bool { return bool(b) }

func (b Bool) TryInteger() (*big.Int, error) {
	if b {
		return big.NewInt(1), nil
	}
	return big.NewInt(0), nil
}

func (b Bool) TryBytes() ([]byte, error) {
	if b {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

func (b Bool) Equals(other Item) bool { return primitiveEquals(b, other) }

func (b Bool) String() string {
	if b {
		return "Boolean(true)"
	}
	return "Boolean(false)"
}

// BigInteger is an arbitrary-precision integer whose minimal two's-complement
// encoding never exceeds MaxIntegerBytes. The wrapped value is never mutated.
type BigInteger struct {
	value *big.Int
}

// NewBigInteger wraps v, rejecting values outside the 32-byte bound.
func NewBigInteger(v *big.Int) (*BigInteger, error) {
	if err := CheckIntegerSize(v); err != nil {
		return nil, err
	}
	return &BigInteger{value: v}, nil
}

func newBigIntegerUnchecked(v *big.Int) *BigInteger {
	return &BigInteger{value: v}
}

// Value returns the wrapped integer. Callers must not mutate it.
func (i *BigInteger) Value() *big.Int { return i.value }

func (i *BigInteger) Type() Type { return IntegerT }
func (i *BigInteger) Bool() bool { return i.value.Sign() != 0 }

func (i *BigInteger) TryInteger() (*big.Int, error) { return i.value, nil }

func (i *BigInteger) TryBytes() ([]byte, error) { return IntToBytes(i.value), nil }

func (i *BigInteger) Equals(other Item) bool { return primitiveEquals(i, other) }

func (i *BigInteger) String() string { return "Integer(" + i.value.String() + ")" }

// ByteString is an immutable byte sequence.
type ByteString []byte

// NewByteString wraps b without copying. The caller yields ownership.
func NewByteString(b []byte) ByteString { return ByteString(b) }

func (s ByteString) Type() Type { return ByteArrayT }

func (s ByteString) Bool() bool { return anyNonZero(s) }

func (s ByteString) TryInteger() (*big.Int, error) {
	if len(s) > MaxIntegerBytes {
		return nil, fmt.Errorf("%w: %d-byte string to Integer", vmerrors.ErrInvalidCast, len(s))
	}
	return BytesToInt(s), nil
}

func (s ByteString) TryBytes() ([]byte, error) { return s, nil }

func (s ByteString) Equals(other Item) bool { return primitiveEquals(s, other) }

func (s ByteString) String() string { return "ByteString(" + shortHex(s) + ")" }

// Buffer is a mutable byte sequence compared by identity.
type Buffer struct {
	value []byte
}

// NewBuffer wraps b without copying.
func NewBuffer(b []byte) *Buffer { return &Buffer{value: b} }

// Value returns the underlying mutable bytes.
func (b *Buffer) Value() []byte { return b.value }

func (b *Buffer) Type() Type { return BufferT }

func (b *Buffer) Bool() bool { return anyNonZero(b.value) }

func (b *Buffer) TryInteger() (*big.Int, error) {
	if len(b.value) > MaxIntegerBytes {
		return nil, fmt.Errorf("%w: %d-byte buffer to Integer", vmerrors.ErrInvalidCast, len(b.value))
	}
	return BytesToInt(b.value), nil
}

func (b *Buffer) TryBytes() ([]byte, error) { return b.value, nil }

func (b *Buffer) Equals(other Item) bool { return b == other }

func (b *Buffer) String() string { return "Buffer(" + shortHex(b.value) + ")" }

// Pointer is a code offset inside a specific script, pushed by PUSHA and
// consumed by CALLA.
type Pointer struct {
	pos    int
	script interface{} // the owning script, compared by identity
}

// NewPointer returns a pointer at pos into script.
func NewPointer(pos int, script interface{}) *Pointer {
	return &Pointer{pos: pos, script: script}
}

// Position returns the code offset.
func (p *Pointer) Position() int { return p.pos }

// ScriptRef returns the owning script handle.
func (p *Pointer) ScriptRef() interface{} { return p.script }

func (p *Pointer) Type() Type { return PointerT }
func (p *Pointer) Bool() bool { return true }

func (p *Pointer) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: Pointer to Integer", vmerrors.ErrInvalidCast)
}

func (p *Pointer) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: Pointer to ByteString", vmerrors.ErrInvalidCast)
}

func (p *Pointer) Equals(other Item) bool {
	o, ok := other.(*Pointer)
	return ok && p.pos == o.pos && p.script == o.script
}

func (p *Pointer) String() string { return fmt.Sprintf("Pointer(%d)", p.pos) }

// Interop is an opaque host object handle.
type Interop struct {
	value interface{}
}

// NewInterop wraps a host object.
func NewInterop(v interface{}) *Interop { return &Interop{value: v} }

// Value returns the wrapped host object.
func (i *Interop) Value() interface{} { return i.value }

func (i *Interop) Type() Type { return InteropT }
func (i *Interop) Bool() bool { return true }

func (i *Interop) TryInteger() (*big.Int, error) {
	return nil, fmt.Errorf("%w: InteropInterface to Integer", vmerrors.ErrInvalidCast)
}

func (i *Interop) TryBytes() ([]byte, error) {
	return nil, fmt.Errorf("%w: InteropInterface to ByteString", vmerrors.ErrInvalidCast)
}

func (i *Interop) Equals(other Item) bool {
	o, ok := other.(*Interop)
	if !ok {
		return false
	}
	if i == o {
		return true
	}
	ta, tb := reflect.TypeOf(i.value), reflect.TypeOf(o.value)
	if ta == nil || tb == nil || ta != tb || !ta.Comparable() {
		return false
	}
	return i.value == o.value
}

func (i *Interop) String() string { return fmt.Sprintf("InteropInterface(%T)", i.value) }

// primitiveEquals compares Boolean, Integer and ByteString items by their
// canonical byte encoding, matching the EQUAL opcode semantics.
func primitiveEquals(a, b Item) bool {
	if b == nil {
		return false
	}
	switch b.Type() {
	case BooleanT, IntegerT, ByteArrayT:
		ab, err := a.TryBytes()
		if err != nil {
			return false
		}
		bb, err := b.TryBytes()
		if err != nil {
			return false
		}
		return bytes.Equal(ab, bb)
	}
	return false
}

func anyNonZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return true
		}
	}
	return false
}

func shortHex(b []byte) string {
	const max = 16
	if len(b) <= max {
		return hex.EncodeToString(b)
	}
	return hex.EncodeToString(b[:max]) + fmt.Sprintf("..%d bytes", len(b))
}
