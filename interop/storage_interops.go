package interop

import (
	"fmt"

	"github.com/colorfulnotion/neovm/log"
	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

const (
	// MaxStorageKeyLen bounds keys passed to the storage interops.
	MaxStorageKeyLen = 64
	// MaxStorageValueLen bounds stored values.
	MaxStorageValueLen = 65535
	// StoragePrice is the per-byte charge of System.Storage.Put.
	StoragePrice = 1 << 10
)

// StorageContext scopes storage access to the script that obtained it. The
// item crosses the stack as an opaque InteropInterface.
type StorageContext struct {
	Hash     ScriptHashID
	ReadOnly bool
}

// storageFindIterator drives System.Iterator.Next/Value over a Seek result.
type storageFindIterator struct {
	kv        kvSource
	prefixLen int
}

type kvSource interface {
	Next() bool
	Key() []byte
	Value() []byte
}

func registerStorageServices(r *Registry) {
	r.Register(&Descriptor{
		Name: "System.Storage.GetContext", Price: 1 << 4,
		RequiredFlags: ReadStates, Handler: storageGetContext,
	})
	r.Register(&Descriptor{
		Name: "System.Storage.GetReadOnlyContext", Price: 1 << 4,
		RequiredFlags: ReadStates, Handler: storageGetReadOnlyContext,
	})
	r.Register(&Descriptor{
		Name: "System.Storage.AsReadOnly", Price: 1 << 4,
		RequiredFlags: ReadStates, Handler: storageAsReadOnly,
	})
	r.Register(&Descriptor{
		Name: "System.Storage.Get", Price: 1 << 15,
		RequiredFlags: ReadStates, Handler: storageGet,
	})
	r.Register(&Descriptor{
		Name: "System.Storage.Put", Price: 1 << 15,
		RequiredFlags: WriteStates, Handler: storagePut,
	})
	r.Register(&Descriptor{
		Name: "System.Storage.Delete", Price: 1 << 15,
		RequiredFlags: WriteStates, Handler: storageDelete,
	})
	r.Register(&Descriptor{
		Name: "System.Storage.Find", Price: 1 << 15,
		RequiredFlags: ReadStates, Handler: storageFind,
	})
	r.Register(&Descriptor{
		Name: "System.Iterator.Next", Price: 1 << 15,
		Handler: iteratorNext,
	})
	r.Register(&Descriptor{
		Name: "System.Iterator.Value", Price: 1 << 4,
		Handler: iteratorValue,
	})
}

func (ae *ApplicationEngine) popStorageContext() (*StorageContext, error) {
	item, err := ae.PopItem()
	if err != nil {
		return nil, err
	}
	iop, ok := item.(*stackitem.Interop)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a storage context", vmerrors.ErrInvalidCast, item.Type())
	}
	sc, ok := iop.Value().(*StorageContext)
	if !ok {
		return nil, fmt.Errorf("%w: interop value %T is not a storage context", vmerrors.ErrInvalidCast, iop.Value())
	}
	return sc, nil
}

func (ae *ApplicationEngine) popStorageKey() ([]byte, error) {
	key, err := ae.PopBytes()
	if err != nil {
		return nil, err
	}
	if len(key) > MaxStorageKeyLen {
		return nil, fmt.Errorf("%w: storage key of %d bytes", vmerrors.ErrMaxItemSize, len(key))
	}
	return key, nil
}

// storedKey prepends the owning script hash so contexts cannot read or write
// across contracts.
func storedKey(sc *StorageContext, key []byte) []byte {
	out := make([]byte, 0, len(sc.Hash)+len(key))
	out = append(out, sc.Hash.Bytes()...)
	out = append(out, key...)
	return out
}

func storageGetContext(ae *ApplicationEngine) error {
	return ae.PushItem(stackitem.NewInterop(&StorageContext{Hash: ae.CurrentScriptHash()}))
}

func storageGetReadOnlyContext(ae *ApplicationEngine) error {
	return ae.PushItem(stackitem.NewInterop(&StorageContext{Hash: ae.CurrentScriptHash(), ReadOnly: true}))
}

func storageAsReadOnly(ae *ApplicationEngine) error {
	sc, err := ae.popStorageContext()
	if err != nil {
		return err
	}
	return ae.PushItem(stackitem.NewInterop(&StorageContext{Hash: sc.Hash, ReadOnly: true}))
}

func storageGet(ae *ApplicationEngine) error {
	key, err := ae.popStorageKey()
	if err != nil {
		return err
	}
	sc, err := ae.popStorageContext()
	if err != nil {
		return err
	}
	value, found, err := ae.snapshot.Get(storedKey(sc, key))
	if err != nil {
		return fmt.Errorf("%w: %v", vmerrors.ErrInvalidScript, err)
	}
	if !found {
		return ae.PushItem(stackitem.Null{})
	}
	return ae.PushItem(stackitem.NewByteString(value))
}

func storagePut(ae *ApplicationEngine) error {
	value, err := ae.PopBytes()
	if err != nil {
		return err
	}
	key, err := ae.popStorageKey()
	if err != nil {
		return err
	}
	sc, err := ae.popStorageContext()
	if err != nil {
		return err
	}
	if sc.ReadOnly {
		return fmt.Errorf("%w: put through a read-only storage context", vmerrors.ErrPermissionDenied)
	}
	if len(value) > MaxStorageValueLen {
		return fmt.Errorf("%w: storage value of %d bytes", vmerrors.ErrMaxItemSize, len(value))
	}
	if err := ae.ChargeGas(int64(len(key)+len(value)) * StoragePrice); err != nil {
		return err
	}
	log.Trace(log.StorageMonitoring, "storage put", "key", fmt.Sprintf("%x", key), "len", len(value))
	return ae.snapshot.Put(storedKey(sc, key), value)
}

func storageDelete(ae *ApplicationEngine) error {
	key, err := ae.popStorageKey()
	if err != nil {
		return err
	}
	sc, err := ae.popStorageContext()
	if err != nil {
		return err
	}
	if sc.ReadOnly {
		return fmt.Errorf("%w: delete through a read-only storage context", vmerrors.ErrPermissionDenied)
	}
	return ae.snapshot.Delete(storedKey(sc, key))
}

func storageFind(ae *ApplicationEngine) error {
	prefix, err := ae.popStorageKey()
	if err != nil {
		return err
	}
	sc, err := ae.popStorageContext()
	if err != nil {
		return err
	}
	full := storedKey(sc, prefix)
	it := ae.snapshot.Seek(full)
	return ae.PushItem(stackitem.NewInterop(&storageFindIterator{
		kv:        it,
		prefixLen: len(sc.Hash),
	}))
}

func (ae *ApplicationEngine) popFindIterator() (*storageFindIterator, error) {
	item, err := ae.PopItem()
	if err != nil {
		return nil, err
	}
	iop, ok := item.(*stackitem.Interop)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an iterator", vmerrors.ErrInvalidCast, item.Type())
	}
	fi, ok := iop.Value().(*storageFindIterator)
	if !ok {
		return nil, fmt.Errorf("%w: interop value %T is not an iterator", vmerrors.ErrInvalidCast, iop.Value())
	}
	return fi, nil
}

func iteratorNext(ae *ApplicationEngine) error {
	fi, err := ae.popFindIterator()
	if err != nil {
		return err
	}
	return ae.PushItem(stackitem.NewBool(fi.kv.Next()))
}

// iteratorValue surfaces the current pair as Struct[key, value]; the key is
// relative to the storage context.
func iteratorValue(ae *ApplicationEngine) error {
	fi, err := ae.popFindIterator()
	if err != nil {
		return err
	}
	key := fi.kv.Key()
	if len(key) < fi.prefixLen {
		return fmt.Errorf("%w: iterator key of %d bytes", vmerrors.ErrInvalidIndex, len(key))
	}
	relKey := make([]byte, len(key)-fi.prefixLen)
	copy(relKey, key[fi.prefixLen:])
	value := make([]byte, len(fi.kv.Value()))
	copy(value, fi.kv.Value())
	return ae.PushItem(stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteString(relKey),
		stackitem.NewByteString(value),
	}))
}
