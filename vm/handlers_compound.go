package vm

import (
	"fmt"
	"math/big"

	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

// popCount pops the element count for a container constructor.
func (e *Engine) popCount() (int, error) {
	n, err := e.popIndex()
	if err != nil {
		return 0, err
	}
	if n > e.limits.MaxStackSize {
		return 0, fmt.Errorf("%w: %d elements", vmerrors.ErrStackOverflow, n)
	}
	return n, nil
}

func opPackMap(e *Engine, in *Instruction) error {
	n, err := e.popCount()
	if err != nil {
		return err
	}
	m := stackitem.NewMap()
	for i := 0; i < n; i++ {
		key, err := e.pop()
		if err != nil {
			return err
		}
		if err := stackitem.IsValidMapKey(key); err != nil {
			return err
		}
		value, err := e.pop()
		if err != nil {
			return err
		}
		m.Set(key, value)
	}
	return e.push(m)
}

func opPack(e *Engine, in *Instruction) error {
	n, err := e.popCount()
	if err != nil {
		return err
	}
	items, err := e.Estack().PopItems(n)
	if err != nil {
		return err
	}
	if in.OpCode == PACKSTRUCT {
		return e.push(stackitem.NewStruct(items))
	}
	return e.push(stackitem.NewArray(items))
}

func opUnpack(e *Engine, in *Instruction) error {
	item, err := e.pop()
	if err != nil {
		return err
	}
	switch t := item.(type) {
	case *stackitem.Array, *stackitem.Struct:
		elems := arrayLike(t)
		for i := len(elems) - 1; i >= 0; i-- {
			if err := e.push(elems[i]); err != nil {
				return err
			}
		}
		return e.pushInt(big.NewInt(int64(len(elems))))
	case *stackitem.Map:
		elems := t.Value()
		for i := len(elems) - 1; i >= 0; i-- {
			if err := e.push(elems[i].Value); err != nil {
				return err
			}
			if err := e.push(elems[i].Key); err != nil {
				return err
			}
		}
		return e.pushInt(big.NewInt(int64(len(elems))))
	default:
		return fmt.Errorf("%w: UNPACK of %s", vmerrors.ErrInvalidCast, item.Type())
	}
}

// arrayLike returns the element slice of an Array or Struct.
func arrayLike(item stackitem.Item) []stackitem.Item {
	switch t := item.(type) {
	case *stackitem.Array:
		return t.Value()
	case *stackitem.Struct:
		return t.Value()
	}
	return nil
}

func opNewArray0(e *Engine, in *Instruction) error {
	return e.push(stackitem.NewArray(nil))
}

func opNewArray(e *Engine, in *Instruction) error {
	if in.OpCode == NEWARRAY_T {
		if !stackitem.Type(in.Operand[0]).IsValid() {
			return fmt.Errorf("%w: element type %#02x", vmerrors.ErrInvalidCast, in.Operand[0])
		}
	}
	n, err := e.popCount()
	if err != nil {
		return err
	}
	items := make([]stackitem.Item, n)
	for i := range items {
		items[i] = stackitem.Null{}
	}
	return e.push(stackitem.NewArray(items))
}

func opNewStruct0(e *Engine, in *Instruction) error {
	return e.push(stackitem.NewStruct(nil))
}

func opNewStruct(e *Engine, in *Instruction) error {
	n, err := e.popCount()
	if err != nil {
		return err
	}
	items := make([]stackitem.Item, n)
	for i := range items {
		items[i] = stackitem.Null{}
	}
	return e.push(stackitem.NewStruct(items))
}

func opNewMap(e *Engine, in *Instruction) error {
	return e.push(stackitem.NewMap())
}

func opSize(e *Engine, in *Instruction) error {
	item, err := e.pop()
	if err != nil {
		return err
	}
	var n int
	switch t := item.(type) {
	case *stackitem.Array:
		n = t.Len()
	case *stackitem.Struct:
		n = t.Len()
	case *stackitem.Map:
		n = t.Len()
	default:
		b, err := item.TryBytes()
		if err != nil {
			return err
		}
		n = len(b)
	}
	return e.pushInt(big.NewInt(int64(n)))
}

func opHasKey(e *Engine, in *Instruction) error {
	key, err := e.pop()
	if err != nil {
		return err
	}
	item, err := e.pop()
	if err != nil {
		return err
	}
	if m, ok := item.(*stackitem.Map); ok {
		if err := stackitem.IsValidMapKey(key); err != nil {
			return err
		}
		return e.pushBoolItem(m.Has(key))
	}
	index, err := key.TryInteger()
	if err != nil {
		return err
	}
	if index.Sign() < 0 || !index.IsInt64() {
		return fmt.Errorf("%w: key %s", vmerrors.ErrInvalidIndex, index)
	}
	var n int
	switch t := item.(type) {
	case *stackitem.Array:
		n = t.Len()
	case *stackitem.Struct:
		n = t.Len()
	case *stackitem.Buffer:
		n = len(t.Value())
	case stackitem.ByteString:
		n = len(t)
	default:
		return fmt.Errorf("%w: HASKEY on %s", vmerrors.ErrInvalidCast, item.Type())
	}
	return e.pushBoolItem(index.Int64() < int64(n))
}

func opKeys(e *Engine, in *Instruction) error {
	item, err := e.pop()
	if err != nil {
		return err
	}
	m, ok := item.(*stackitem.Map)
	if !ok {
		return fmt.Errorf("%w: KEYS on %s", vmerrors.ErrInvalidCast, item.Type())
	}
	keys := make([]stackitem.Item, 0, m.Len())
	for _, elem := range m.Value() {
		keys = append(keys, elem.Key)
	}
	return e.push(stackitem.NewArray(keys))
}

// opValues collects container values into a fresh Array; struct elements are
// copied so the result cannot alias the source's value semantics.
func opValues(e *Engine, in *Instruction) error {
	item, err := e.pop()
	if err != nil {
		return err
	}
	var src []stackitem.Item
	switch t := item.(type) {
	case *stackitem.Array, *stackitem.Struct:
		src = arrayLike(t)
	case *stackitem.Map:
		for _, elem := range t.Value() {
			src = append(src, elem.Value)
		}
	default:
		return fmt.Errorf("%w: VALUES on %s", vmerrors.ErrInvalidCast, item.Type())
	}
	values := make([]stackitem.Item, len(src))
	for i, v := range src {
		if s, ok := v.(*stackitem.Struct); ok {
			values[i] = stackitem.DeepCopy(s)
		} else {
			values[i] = v
		}
	}
	return e.push(stackitem.NewArray(values))
}

func opPickItem(e *Engine, in *Instruction) error {
	key, err := e.pop()
	if err != nil {
		return err
	}
	item, err := e.pop()
	if err != nil {
		return err
	}
	if m, ok := item.(*stackitem.Map); ok {
		if err := stackitem.IsValidMapKey(key); err != nil {
			return err
		}
		v, ok := m.Get(key)
		if !ok {
			return fmt.Errorf("%w: key %s not in map", vmerrors.ErrInvalidIndex, key)
		}
		return e.push(v)
	}
	index, err := key.TryInteger()
	if err != nil {
		return err
	}
	if index.Sign() < 0 || !index.IsInt64() {
		return fmt.Errorf("%w: index %s", vmerrors.ErrInvalidIndex, index)
	}
	i := int(index.Int64())
	switch t := item.(type) {
	case *stackitem.Array:
		if i >= t.Len() {
			return fmt.Errorf("%w: index %d of %d", vmerrors.ErrInvalidIndex, i, t.Len())
		}
		return e.push(t.Get(i))
	case *stackitem.Struct:
		if i >= t.Len() {
			return fmt.Errorf("%w: index %d of %d", vmerrors.ErrInvalidIndex, i, t.Len())
		}
		return e.push(t.Get(i))
	default:
		b, berr := item.TryBytes()
		if berr != nil {
			return fmt.Errorf("%w: PICKITEM on %s", vmerrors.ErrInvalidCast, item.Type())
		}
		if i >= len(b) {
			return fmt.Errorf("%w: index %d of %d", vmerrors.ErrInvalidIndex, i, len(b))
		}
		return e.pushInt(big.NewInt(int64(b[i])))
	}
}

func opAppend(e *Engine, in *Instruction) error {
	item, err := e.pop()
	if err != nil {
		return err
	}
	target, err := e.pop()
	if err != nil {
		return err
	}
	if s, ok := item.(*stackitem.Struct); ok {
		item = stackitem.DeepCopy(s)
	}
	switch t := target.(type) {
	case *stackitem.Array:
		t.Append(item)
	case *stackitem.Struct:
		t.Append(item)
	default:
		return fmt.Errorf("%w: APPEND to %s", vmerrors.ErrInvalidCast, target.Type())
	}
	e.refs.AddChild(target, item)
	return e.refs.CheckLimit(e.limits.MaxStackSize)
}

func opSetItem(e *Engine, in *Instruction) error {
	value, err := e.pop()
	if err != nil {
		return err
	}
	key, err := e.pop()
	if err != nil {
		return err
	}
	target, err := e.pop()
	if err != nil {
		return err
	}
	if s, ok := value.(*stackitem.Struct); ok {
		value = stackitem.DeepCopy(s)
	}
	switch t := target.(type) {
	case *stackitem.Map:
		if err := stackitem.IsValidMapKey(key); err != nil {
			return err
		}
		old := t.Set(key, value)
		if old != nil {
			e.refs.RemoveChild(t, old)
		} else {
			e.refs.AddChild(t, key)
		}
		e.refs.AddChild(t, value)
	case *stackitem.Array, *stackitem.Struct:
		index, err := key.TryInteger()
		if err != nil {
			return err
		}
		elems := arrayLike(t)
		if index.Sign() < 0 || !index.IsInt64() || index.Int64() >= int64(len(elems)) {
			return fmt.Errorf("%w: index %s of %d", vmerrors.ErrInvalidIndex, index, len(elems))
		}
		i := int(index.Int64())
		e.refs.RemoveChild(t, elems[i])
		elems[i] = value
		e.refs.AddChild(t, value)
	case *stackitem.Buffer:
		index, err := key.TryInteger()
		if err != nil {
			return err
		}
		if index.Sign() < 0 || !index.IsInt64() || index.Int64() >= int64(len(t.Value())) {
			return fmt.Errorf("%w: index %s of %d", vmerrors.ErrInvalidIndex, index, len(t.Value()))
		}
		v, err := value.TryInteger()
		if err != nil {
			return err
		}
		if !v.IsInt64() || v.Int64() < 0 || v.Int64() > 255 {
			return fmt.Errorf("%w: byte value %s", vmerrors.ErrArithmeticRange, v)
		}
		t.Value()[index.Int64()] = byte(v.Int64())
	default:
		return fmt.Errorf("%w: SETITEM on %s", vmerrors.ErrInvalidCast, target.Type())
	}
	return e.refs.CheckLimit(e.limits.MaxStackSize)
}

func opReverseItems(e *Engine, in *Instruction) error {
	item, err := e.pop()
	if err != nil {
		return err
	}
	switch t := item.(type) {
	case *stackitem.Array:
		t.Reverse()
	case *stackitem.Struct:
		t.Reverse()
	case *stackitem.Buffer:
		b := t.Value()
		for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
	default:
		return fmt.Errorf("%w: REVERSEITEMS on %s", vmerrors.ErrInvalidCast, item.Type())
	}
	return nil
}

func opRemove(e *Engine, in *Instruction) error {
	key, err := e.pop()
	if err != nil {
		return err
	}
	target, err := e.pop()
	if err != nil {
		return err
	}
	switch t := target.(type) {
	case *stackitem.Map:
		if err := stackitem.IsValidMapKey(key); err != nil {
			return err
		}
		if elem, ok := t.Delete(key); ok {
			e.refs.RemoveChild(t, elem.Key)
			e.refs.RemoveChild(t, elem.Value)
		}
	case *stackitem.Array, *stackitem.Struct:
		index, err := key.TryInteger()
		if err != nil {
			return err
		}
		elems := arrayLike(t)
		if index.Sign() < 0 || !index.IsInt64() || index.Int64() >= int64(len(elems)) {
			return fmt.Errorf("%w: index %s of %d", vmerrors.ErrInvalidIndex, index, len(elems))
		}
		i := int(index.Int64())
		removed := elems[i]
		switch c := t.(type) {
		case *stackitem.Array:
			c.Remove(i)
		case *stackitem.Struct:
			c.Remove(i)
		}
		e.refs.RemoveChild(t, removed)
	default:
		return fmt.Errorf("%w: REMOVE on %s", vmerrors.ErrInvalidCast, target.Type())
	}
	return nil
}

func opClearItems(e *Engine, in *Instruction) error {
	item, err := e.pop()
	if err != nil {
		return err
	}
	switch t := item.(type) {
	case *stackitem.Array:
		for _, elem := range t.Value() {
			e.refs.RemoveChild(t, elem)
		}
		t.Clear()
	case *stackitem.Struct:
		for _, elem := range t.Value() {
			e.refs.RemoveChild(t, elem)
		}
		t.Clear()
	case *stackitem.Map:
		for _, elem := range t.Value() {
			e.refs.RemoveChild(t, elem.Key)
			e.refs.RemoveChild(t, elem.Value)
		}
		t.Clear()
	default:
		return fmt.Errorf("%w: CLEARITEMS on %s", vmerrors.ErrInvalidCast, item.Type())
	}
	return nil
}

func opPopItem(e *Engine, in *Instruction) error {
	item, err := e.pop()
	if err != nil {
		return err
	}
	a, ok := item.(*stackitem.Array)
	if !ok {
		return fmt.Errorf("%w: POPITEM on %s", vmerrors.ErrInvalidCast, item.Type())
	}
	if a.Len() == 0 {
		return fmt.Errorf("%w: POPITEM on empty array", vmerrors.ErrInvalidIndex)
	}
	last := a.Get(a.Len() - 1)
	a.Remove(a.Len() - 1)
	e.refs.RemoveChild(a, last)
	return e.push(last)
}
