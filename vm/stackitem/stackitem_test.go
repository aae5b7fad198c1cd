package stackitem

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthiness(t *testing.T) {
	cases := []struct {
		name string
		item Item
		want bool
	}{
		{"null", Null{}, false},
		{"false", NewBool(false), false},
		{"true", NewBool(true), true},
		{"zero", Make(0), false},
		{"negative", Make(-5), true},
		{"empty bytestring", NewByteString(nil), false},
		{"all-zero bytestring", NewByteString([]byte{0, 0, 0}), false},
		{"nonzero bytestring", NewByteString([]byte{0, 1}), true},
		{"all-zero buffer", NewBuffer(make([]byte, 4)), false},
		{"nonzero buffer", NewBuffer([]byte{0, 0, 7}), true},
		{"empty array", NewArray(nil), true},
		{"empty struct", NewStruct(nil), true},
		{"empty map", NewMap(), true},
		{"pointer", NewPointer(0, nil), true},
		{"interop", NewInterop(42), true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.item.Bool(), tc.name)
	}
}

func TestPrimitiveCrossTypeEquality(t *testing.T) {
	// Boolean true, Integer 1 and ByteString{1} share a canonical encoding.
	one := Make(1)
	assert.True(t, NewBool(true).Equals(one))
	assert.True(t, one.Equals(NewByteString([]byte{1})))
	assert.True(t, NewByteString([]byte{1}).Equals(NewBool(true)))

	// Integer 0 encodes as empty, Boolean false as {0}: not equal.
	assert.False(t, NewBool(false).Equals(Make(0)))
	assert.True(t, Make(0).Equals(NewByteString(nil)))

	assert.False(t, one.Equals(Null{}))
	assert.True(t, Null{}.Equals(Null{}))
	assert.False(t, Null{}.Equals(one))
}

func TestBufferIdentityEquality(t *testing.T) {
	a := NewBuffer([]byte{1, 2})
	b := NewBuffer([]byte{1, 2})
	assert.True(t, a.Equals(a))
	assert.False(t, a.Equals(b))
	assert.False(t, a.Equals(NewByteString([]byte{1, 2})))
}

func TestArrayMapIdentityEquality(t *testing.T) {
	a := NewArray([]Item{Make(1)})
	b := NewArray([]Item{Make(1)})
	assert.True(t, a.Equals(a))
	assert.False(t, a.Equals(b))

	m1, m2 := NewMap(), NewMap()
	assert.True(t, m1.Equals(m1))
	assert.False(t, m1.Equals(m2))
}

func TestStructDeepEquality(t *testing.T) {
	a := NewStruct([]Item{Make(1), NewByteString([]byte("x"))})
	b := NewStruct([]Item{Make(1), NewByteString([]byte("x"))})
	c := NewStruct([]Item{Make(1), NewByteString([]byte("y"))})
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))

	// Nested.
	outer1 := NewStruct([]Item{a, Make(2)})
	outer2 := NewStruct([]Item{b, Make(2)})
	assert.True(t, outer1.Equals(outer2))
}

func TestStructCyclicEqualityTerminates(t *testing.T) {
	a := NewStruct([]Item{Make(1)})
	a.Append(a)
	b := NewStruct([]Item{Make(1)})
	b.Append(b)

	// Two isomorphic self-referencing structs compare equal; the visited
	// set treats in-flight pairs as equal.
	assert.True(t, a.Equals(b))

	c := NewStruct([]Item{Make(2)})
	c.Append(c)
	assert.False(t, a.Equals(c))
}

func TestPointerEquality(t *testing.T) {
	script := new(int)
	other := new(int)
	assert.True(t, NewPointer(4, script).Equals(NewPointer(4, script)))
	assert.False(t, NewPointer(4, script).Equals(NewPointer(5, script)))
	assert.False(t, NewPointer(4, script).Equals(NewPointer(4, other)))
}

func TestConvert(t *testing.T) {
	// Integer -> ByteString -> Integer round trip.
	v := Make(-129)
	bs, err := Convert(v, ByteArrayT)
	require.NoError(t, err)
	back, err := Convert(bs, IntegerT)
	require.NoError(t, err)
	i, err := back.TryInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(-129), i.Int64())

	// Array <-> Struct shallow conversion.
	arr := NewArray([]Item{Make(1), Make(2)})
	st, err := Convert(arr, StructT)
	require.NoError(t, err)
	require.IsType(t, &Struct{}, st)
	assert.Equal(t, 2, st.(*Struct).Len())
	// Shallow: elements shared.
	assert.Same(t, arr.Get(0), st.(*Struct).Get(0))

	// Boolean conversion uses truthiness.
	b, err := Convert(NewByteString([]byte{0, 0}), BooleanT)
	require.NoError(t, err)
	assert.False(t, b.Bool())

	// Map does not convert to Integer.
	_, err = Convert(NewMap(), IntegerT)
	assert.Error(t, err)

	// Same-type conversion is the identity.
	same, err := Convert(arr, ArrayT)
	require.NoError(t, err)
	assert.Same(t, Item(arr), same)
}

func TestIntegerBound(t *testing.T) {
	max := new(big.Int).Lsh(big.NewInt(1), 255) // 2^255
	_, err := NewBigInteger(new(big.Int).Sub(max, big.NewInt(1)))
	assert.NoError(t, err)
	_, err = NewBigInteger(max)
	assert.Error(t, err)

	min := new(big.Int).Neg(max) // -2^255 fits exactly
	_, err = NewBigInteger(min)
	assert.NoError(t, err)
	_, err = NewBigInteger(new(big.Int).Sub(min, big.NewInt(1)))
	assert.Error(t, err)
}

func TestMapInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set(NewByteString([]byte("b")), Make(1))
	m.Set(NewByteString([]byte("a")), Make(2))
	m.Set(NewByteString([]byte("c")), Make(3))

	var order []string
	for _, elem := range m.Value() {
		b, _ := elem.Key.TryBytes()
		order = append(order, string(b))
	}
	assert.Equal(t, []string{"b", "a", "c"}, order)

	// Replacing a value keeps the key's position.
	old := m.Set(NewByteString([]byte("a")), Make(9))
	require.NotNil(t, old)
	v, _ := old.TryInteger()
	assert.Equal(t, int64(2), v.Int64())
	order = order[:0]
	for _, elem := range m.Value() {
		b, _ := elem.Key.TryBytes()
		order = append(order, string(b))
	}
	assert.Equal(t, []string{"b", "a", "c"}, order)

	// Deleting reindexes correctly.
	_, ok := m.Delete(NewByteString([]byte("b")))
	assert.True(t, ok)
	got, ok := m.Get(NewByteString([]byte("c")))
	require.True(t, ok)
	i, _ := got.TryInteger()
	assert.Equal(t, int64(3), i.Int64())
	assert.Equal(t, 2, m.Len())
}

func TestMapCrossTypeKeys(t *testing.T) {
	m := NewMap()
	// Integer 1 and ByteString{1} share a canonical key encoding.
	m.Set(Make(1), Make(100))
	v, ok := m.Get(NewByteString([]byte{1}))
	require.True(t, ok)
	i, _ := v.TryInteger()
	assert.Equal(t, int64(100), i.Int64())
}

func TestIsValidMapKey(t *testing.T) {
	assert.NoError(t, IsValidMapKey(Make(5)))
	assert.NoError(t, IsValidMapKey(NewBool(true)))
	assert.NoError(t, IsValidMapKey(NewByteString(make([]byte, MaxMapKeySize))))
	assert.Error(t, IsValidMapKey(NewByteString(make([]byte, MaxMapKeySize+1))))
	assert.Error(t, IsValidMapKey(NewArray(nil)))
	assert.Error(t, IsValidMapKey(NewBuffer([]byte{1})))
	assert.Error(t, IsValidMapKey(Null{}))
}

func TestDeepCopy(t *testing.T) {
	inner := NewArray([]Item{Make(1)})
	m := NewMap()
	m.Set(NewByteString([]byte("k")), inner)
	outer := NewArray([]Item{inner, m, NewBuffer([]byte{9})})

	cp := DeepCopy(outer).(*Array)
	require.Equal(t, 3, cp.Len())
	assert.NotSame(t, outer.Get(0), cp.Get(0))

	// Mutating the copy leaves the original untouched.
	cp.Get(0).(*Array).Append(Make(2))
	assert.Equal(t, 1, inner.Len())

	// Shared references stay shared inside the copy.
	cpMap := cp.Get(1).(*Map)
	v, ok := cpMap.Get(NewByteString([]byte("k")))
	require.True(t, ok)
	assert.Same(t, cp.Get(0), v)
}

func TestDeepCopyCycle(t *testing.T) {
	a := NewArray(nil)
	a.Append(a)
	cp := DeepCopy(a).(*Array)
	require.Equal(t, 1, cp.Len())
	// The copied cycle points at the copy, not the original.
	assert.Same(t, Item(cp), cp.Get(0))
}
