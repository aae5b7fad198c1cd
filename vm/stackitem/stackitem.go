// Package stackitem implements the tagged value model flowing through the
// VM's evaluation stacks: primitive values compared by content, reference
// types compared by identity, and Struct compared by cycle-safe deep value.
package stackitem

import (
	"fmt"
	"math/big"

	"github.com/colorfulnotion/neovm/vmerrors"
)

// Type is the wire tag of a stack item.
type Type byte

const (
	AnyT       Type = 0x00
	PointerT   Type = 0x10
	BooleanT   Type = 0x20
	IntegerT   Type = 0x21
	ByteArrayT Type = 0x28
	BufferT    Type = 0x30
	ArrayT     Type = 0x40
	StructT    Type = 0x41
	MapT       Type = 0x48
	InteropT   Type = 0x60
)

func (t Type) String() string {
	switch t {
	case AnyT:
		return "Any"
	case PointerT:
		return "Pointer"
	case BooleanT:
		return "Boolean"
	case IntegerT:
		return "Integer"
	case ByteArrayT:
		return "ByteString"
	case BufferT:
		return "Buffer"
	case ArrayT:
		return "Array"
	case StructT:
		return "Struct"
	case MapT:
		return "Map"
	case InteropT:
		return "InteropInterface"
	default:
		return fmt.Sprintf("Type(%#x)", byte(t))
	}
}

// IsValid reports whether t is a defined item type.
func (t Type) IsValid() bool {
	switch t {
	case AnyT, PointerT, BooleanT, IntegerT, ByteArrayT, BufferT, ArrayT, StructT, MapT, InteropT:
		return true
	}
	return false
}

// MaxIntegerBytes bounds the minimal two's-complement encoding of Integer items.
const MaxIntegerBytes = 32

// MaxMapKeySize bounds the canonical encoding of a map key.
const MaxMapKeySize = 64

// Item is one tagged value on an evaluation stack, in a slot, or inside a
// container.
type Item interface {
	// Type returns the tag of the item.
	Type() Type
	// Bool returns the truthiness of the item.
	Bool() bool
	// TryInteger converts the item to an integer, if the type allows it.
	TryInteger() (*big.Int, error)
	// TryBytes converts the item to a byte slice, if the type allows it.
	TryBytes() ([]byte, error)
	// Equals compares with another item. Struct comparison is deep and
	// cycle-safe; reference types compare by identity.
	Equals(other Item) bool
	// String returns a short human-readable rendering for logs and the
	// debugger, never the full content of large items.
	String() string
}

// Convertible items support CONVERT to another tag.
func Convert(item Item, t Type) (Item, error) {
	if !t.IsValid() || t == AnyT && item.Type() != AnyT {
		return nil, fmt.Errorf("%w: convert to %s", vmerrors.ErrInvalidCast, t)
	}
	if item.Type() == t {
		return item, nil
	}
	switch t {
	case BooleanT:
		return NewBool(item.Bool()), nil
	case IntegerT:
		v, err := item.TryInteger()
		if err != nil {
			return nil, err
		}
		return NewBigInteger(v)
	case ByteArrayT:
		b, err := item.TryBytes()
		if err != nil {
			return nil, err
		}
		return NewByteString(append([]byte{}, b...)), nil
	case BufferT:
		b, err := item.TryBytes()
		if err != nil {
			return nil, err
		}
		return NewBuffer(append([]byte{}, b...)), nil
	case ArrayT:
		if s, ok := item.(*Struct); ok {
			return NewArray(append([]Item{}, s.value...)), nil
		}
	case StructT:
		if a, ok := item.(*Array); ok {
			return NewStruct(append([]Item{}, a.value...)), nil
		}
	}
	return nil, fmt.Errorf("%w: %s to %s", vmerrors.ErrInvalidCast, item.Type(), t)
}

// Make wraps a native Go value into an Item. It accepts the types produced
// by interop handlers and tests; anything else panics, which indicates a
// programming error rather than a script fault.
func Make(v interface{}) Item {
	switch val := v.(type) {
	case Item:
		return val
	case nil:
		return Null{}
	case bool:
		return NewBool(val)
	case int:
		return newBigIntegerUnchecked(big.NewInt(int64(val)))
	case int64:
		return newBigIntegerUnchecked(big.NewInt(val))
	case uint32:
		return newBigIntegerUnchecked(big.NewInt(int64(val)))
	case *big.Int:
		it, err := NewBigInteger(val)
		if err != nil {
			panic(err)
		}
		return it
	case []byte:
		return NewByteString(val)
	case string:
		return NewByteString([]byte(val))
	case []Item:
		return NewArray(val)
	default:
		panic(fmt.Sprintf("stackitem.Make: unsupported type %T", v))
	}
}

// visitedPair keys in-flight deep comparisons by the identity of both sides.
type visitedPair [2]Item

// DeepCopy clones item. Reference types are duplicated; a visited map keyed
// by identity keeps self-referencing containers from recursing unboundedly,
// and cloned cycles preserve their shape.
func DeepCopy(item Item) Item {
	return deepCopy(item, make(map[Item]Item))
}

// seen is consulted only for reference types: interface comparison of the
// value variants is not meaningful (and ByteString is not a valid map key).
func deepCopy(item Item, seen map[Item]Item) Item {
	switch it := item.(type) {
	case *Array:
		if cp, ok := seen[item]; ok {
			return cp
		}
		cp := NewArray(make([]Item, 0, len(it.value)))
		seen[item] = cp
		for _, elem := range it.value {
			cp.value = append(cp.value, deepCopy(elem, seen))
		}
		return cp
	case *Struct:
		if cp, ok := seen[item]; ok {
			return cp
		}
		cp := NewStruct(make([]Item, 0, len(it.value)))
		seen[item] = cp
		for _, elem := range it.value {
			cp.value = append(cp.value, deepCopy(elem, seen))
		}
		return cp
	case *Map:
		if cp, ok := seen[item]; ok {
			return cp
		}
		cp := NewMap()
		seen[item] = cp
		for _, elem := range it.elems {
			cp.Set(elem.Key, deepCopy(elem.Value, seen))
		}
		return cp
	case *Buffer:
		if cp, ok := seen[item]; ok {
			return cp
		}
		cp := NewBuffer(append([]byte{}, it.value...))
		seen[item] = cp
		return cp
	default:
		// Value types are immutable and may be shared.
		return item
	}
}
