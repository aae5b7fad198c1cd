package vm

import (
	"fmt"

	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

func opNewBuffer(e *Engine, in *Instruction) error {
	n, err := e.popIndex()
	if err != nil {
		return err
	}
	if err := e.checkItemSize(n); err != nil {
		return err
	}
	return e.push(stackitem.NewBuffer(make([]byte, n)))
}

// opMemCpy copies count bytes of src starting at srcIndex into the buffer dst
// at dstIndex, in place.
func opMemCpy(e *Engine, in *Instruction) error {
	count, err := e.popIndex()
	if err != nil {
		return err
	}
	srcIndex, err := e.popIndex()
	if err != nil {
		return err
	}
	src, err := e.popBytes()
	if err != nil {
		return err
	}
	if srcIndex+count > len(src) {
		return fmt.Errorf("%w: read %d+%d of %d", vmerrors.ErrInvalidIndex, srcIndex, count, len(src))
	}
	dstIndex, err := e.popIndex()
	if err != nil {
		return err
	}
	item, err := e.pop()
	if err != nil {
		return err
	}
	dst, ok := item.(*stackitem.Buffer)
	if !ok {
		return fmt.Errorf("%w: MEMCPY destination is %s, not Buffer", vmerrors.ErrInvalidCast, item.Type())
	}
	if dstIndex+count > len(dst.Value()) {
		return fmt.Errorf("%w: write %d+%d of %d", vmerrors.ErrInvalidIndex, dstIndex, count, len(dst.Value()))
	}
	copy(dst.Value()[dstIndex:dstIndex+count], src[srcIndex:srcIndex+count])
	return nil
}

func opCat(e *Engine, in *Instruction) error {
	b, err := e.popBytes()
	if err != nil {
		return err
	}
	a, err := e.popBytes()
	if err != nil {
		return err
	}
	if err := e.checkItemSize(len(a) + len(b)); err != nil {
		return err
	}
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return e.push(stackitem.NewBuffer(out))
}

func opSubStr(e *Engine, in *Instruction) error {
	count, err := e.popIndex()
	if err != nil {
		return err
	}
	index, err := e.popIndex()
	if err != nil {
		return err
	}
	src, err := e.popBytes()
	if err != nil {
		return err
	}
	if index+count > len(src) {
		return fmt.Errorf("%w: substring %d+%d of %d", vmerrors.ErrInvalidIndex, index, count, len(src))
	}
	out := make([]byte, count)
	copy(out, src[index:index+count])
	return e.push(stackitem.NewBuffer(out))
}

func opLeft(e *Engine, in *Instruction) error {
	count, err := e.popIndex()
	if err != nil {
		return err
	}
	src, err := e.popBytes()
	if err != nil {
		return err
	}
	if count > len(src) {
		return fmt.Errorf("%w: left %d of %d", vmerrors.ErrInvalidIndex, count, len(src))
	}
	out := make([]byte, count)
	copy(out, src[:count])
	return e.push(stackitem.NewBuffer(out))
}

func opRight(e *Engine, in *Instruction) error {
	count, err := e.popIndex()
	if err != nil {
		return err
	}
	src, err := e.popBytes()
	if err != nil {
		return err
	}
	if count > len(src) {
		return fmt.Errorf("%w: right %d of %d", vmerrors.ErrInvalidIndex, count, len(src))
	}
	out := make([]byte, count)
	copy(out, src[len(src)-count:])
	return e.push(stackitem.NewBuffer(out))
}
