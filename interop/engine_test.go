package interop

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorfulnotion/neovm/storage"
	"github.com/colorfulnotion/neovm/vm"
	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

// runApp assembles a script and runs it under an application engine with the
// given gas budget.
func runApp(t *testing.T, snapshot storage.Snapshot, gas int64, emit func(b *vm.ScriptBuilder)) *ApplicationEngine {
	t.Helper()
	var b vm.ScriptBuilder
	emit(&b)
	ae := NewApplicationEngine(Application, snapshot, gas)
	_, err := ae.LoadScriptBytes(b.Bytes())
	require.NoError(t, err)
	ae.Run()
	return ae
}

func topBytes(t *testing.T, ae *ApplicationEngine) []byte {
	t.Helper()
	top, err := ae.ResultStack().Peek(0)
	require.NoError(t, err)
	b, err := top.TryBytes()
	require.NoError(t, err)
	return b
}

func topInt(t *testing.T, ae *ApplicationEngine) int64 {
	t.Helper()
	top, err := ae.ResultStack().Peek(0)
	require.NoError(t, err)
	v, err := top.TryInteger()
	require.NoError(t, err)
	return v.Int64()
}

func TestGasAccounting(t *testing.T) {
	ae := runApp(t, storage.NewMemoryStore(), -1, func(b *vm.ScriptBuilder) {
		b.EmitPushInt64(1)
		b.EmitPushInt64(2)
		b.Emit(vm.ADD)
	})
	require.Equal(t, vm.HaltState, ae.State())
	// Two unit pushes, one ADD, a free implicit RET.
	assert.Equal(t, int64(1+1+8), ae.GasConsumed())
}

func TestOutOfGasStopsBeforeCharging(t *testing.T) {
	ae := runApp(t, storage.NewMemoryStore(), 2, func(b *vm.ScriptBuilder) {
		b.EmitPushInt64(1)
		b.EmitPushInt64(2)
		b.Emit(vm.ADD) // costs 8, budget already spent
	})
	assert.Equal(t, vm.FaultState, ae.State())
	assert.True(t, errors.Is(ae.FaultError(), vmerrors.ErrOutOfGas))
	// The failed charge is not applied.
	assert.Equal(t, int64(2), ae.GasConsumed())
}

func TestGasConsumedIsMonotonic(t *testing.T) {
	ae := NewApplicationEngine(Application, storage.NewMemoryStore(), -1)
	var b vm.ScriptBuilder
	for i := 0; i < 10; i++ {
		b.EmitPushInt64(int64(i))
	}
	_, err := ae.LoadScriptBytes(b.Bytes())
	require.NoError(t, err)

	last := int64(0)
	for ae.State() == vm.NoneState || ae.State() == vm.BreakState {
		ae.StepInto()
		assert.GreaterOrEqual(t, ae.GasConsumed(), last)
		last = ae.GasConsumed()
	}
}

func TestOutOfGasNotCatchable(t *testing.T) {
	ae := runApp(t, storage.NewMemoryStore(), 10, func(b *vm.ScriptBuilder) {
		b.Emit(vm.TRY, 6, 0)
		b.EmitPushInt64(1)
		b.EmitPushInt64(2)
		b.Emit(vm.ADD) // exceeds the budget inside the try body
		b.Emit(vm.DROP)
		b.Emit(vm.RET)
	})
	assert.Equal(t, vm.FaultState, ae.State())
	assert.True(t, errors.Is(ae.FaultError(), vmerrors.ErrOutOfGas))
}

func TestRuntimePlatform(t *testing.T) {
	ae := runApp(t, storage.NewMemoryStore(), -1, func(b *vm.ScriptBuilder) {
		b.EmitSyscall(ServiceID("System.Runtime.Platform"))
	})
	require.Equal(t, vm.HaltState, ae.State())
	assert.Equal(t, "NEOVM", string(topBytes(t, ae)))
}

func TestRuntimeGetTrigger(t *testing.T) {
	ae := runApp(t, storage.NewMemoryStore(), -1, func(b *vm.ScriptBuilder) {
		b.EmitSyscall(ServiceID("System.Runtime.GetTrigger"))
	})
	require.Equal(t, vm.HaltState, ae.State())
	assert.Equal(t, int64(Application), topInt(t, ae))
}

func TestBurnGas(t *testing.T) {
	ae := runApp(t, storage.NewMemoryStore(), 10000, func(b *vm.ScriptBuilder) {
		b.EmitPushInt64(500)
		b.EmitSyscall(ServiceID("System.Runtime.BurnGas"))
	})
	require.Equal(t, vm.HaltState, ae.State())
	// PUSHINT16 (1) + SYSCALL (0) + BurnGas price (16) + burned 500.
	assert.Equal(t, int64(1+16+500), ae.GasConsumed())

	ae = runApp(t, storage.NewMemoryStore(), 10000, func(b *vm.ScriptBuilder) {
		b.EmitPushInt64(-1)
		b.EmitSyscall(ServiceID("System.Runtime.BurnGas"))
	})
	assert.Equal(t, vm.FaultState, ae.State())
}

func TestUnknownSyscall(t *testing.T) {
	ae := runApp(t, storage.NewMemoryStore(), -1, func(b *vm.ScriptBuilder) {
		b.EmitSyscall(0xDEADBEEF)
	})
	assert.Equal(t, vm.FaultState, ae.State())
	assert.True(t, errors.Is(ae.FaultError(), vmerrors.ErrUnknownSyscall))
}

func TestSyscallPermissionDenied(t *testing.T) {
	var b vm.ScriptBuilder
	b.EmitPushString("evt")
	b.Emit(vm.NEWARRAY0)
	b.EmitSyscall(ServiceID("System.Runtime.Notify"))

	ae := NewApplicationEngine(Application, storage.NewMemoryStore(), -1)
	ae.SetCallFlags(ReadStates)
	_, err := ae.LoadScriptBytes(b.Bytes())
	require.NoError(t, err)
	ae.Run()

	assert.Equal(t, vm.FaultState, ae.State())
	assert.True(t, errors.Is(ae.FaultError(), vmerrors.ErrPermissionDenied))
}

func TestNotifyRecordsDeepCopy(t *testing.T) {
	var b vm.ScriptBuilder
	b.Emit(vm.INITSLOT, 1, 0)
	b.EmitPushString("transfer")
	b.EmitPushInt64(42)
	b.EmitPushInt64(1)
	b.Emit(vm.PACK)
	b.Emit(vm.DUP)
	b.Emit(vm.STLOC0)
	b.EmitSyscall(ServiceID("System.Runtime.Notify"))
	// Mutate the original state array after emission.
	b.Emit(vm.LDLOC0)
	b.EmitPushInt64(0)
	b.EmitPushInt64(99)
	b.Emit(vm.SETITEM)

	ae := NewApplicationEngine(Application, storage.NewMemoryStore(), -1)
	_, err := ae.LoadScriptBytes(b.Bytes())
	require.NoError(t, err)
	ae.Run()
	require.Equal(t, vm.HaltState, ae.State(), "fault: %v", ae.FaultError())

	require.Len(t, ae.Notifications(), 1)
	n := ae.Notifications()[0]
	assert.Equal(t, "transfer", n.Name)
	assert.Equal(t, HashScript(b.Bytes()), n.ScriptHash)
	require.Equal(t, 1, n.State.Len())
	v, err := n.State.Get(0).TryInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int64())
}

func TestGetNotifications(t *testing.T) {
	ae := runApp(t, storage.NewMemoryStore(), -1, func(b *vm.ScriptBuilder) {
		b.EmitPushString("evt")
		b.Emit(vm.NEWARRAY0)
		b.EmitSyscall(ServiceID("System.Runtime.Notify"))
		b.Emit(vm.PUSHNULL)
		b.EmitSyscall(ServiceID("System.Runtime.GetNotifications"))
		b.Emit(vm.SIZE)
	})
	require.Equal(t, vm.HaltState, ae.State(), "fault: %v", ae.FaultError())
	assert.Equal(t, int64(1), topInt(t, ae))
}

func TestStorageRoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()
	var b vm.ScriptBuilder
	b.EmitSyscall(ServiceID("System.Storage.GetContext"))
	b.EmitPushString("k")
	b.EmitPushString("v")
	b.EmitSyscall(ServiceID("System.Storage.Put"))
	b.EmitSyscall(ServiceID("System.Storage.GetContext"))
	b.EmitPushString("k")
	b.EmitSyscall(ServiceID("System.Storage.Get"))

	ae := NewApplicationEngine(Application, store, -1)
	_, err := ae.LoadScriptBytes(b.Bytes())
	require.NoError(t, err)
	ae.Run()
	require.Equal(t, vm.HaltState, ae.State(), "fault: %v", ae.FaultError())
	assert.Equal(t, "v", string(topBytes(t, ae)))

	// The stored key is scoped by the script hash.
	hash := HashScript(b.Bytes())
	raw, found, err := store.Get(append(hash.Bytes(), 'k'))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v", string(raw))
	_, found, _ = store.Get([]byte("k"))
	assert.False(t, found)
}

func TestStorageGetMissingPushesNull(t *testing.T) {
	ae := runApp(t, storage.NewMemoryStore(), -1, func(b *vm.ScriptBuilder) {
		b.EmitSyscall(ServiceID("System.Storage.GetContext"))
		b.EmitPushString("absent")
		b.EmitSyscall(ServiceID("System.Storage.Get"))
		b.Emit(vm.ISNULL)
	})
	require.Equal(t, vm.HaltState, ae.State())
	assert.Equal(t, int64(1), topInt(t, ae))
}

func TestStoragePutChargesPerByte(t *testing.T) {
	ae := runApp(t, storage.NewMemoryStore(), -1, func(b *vm.ScriptBuilder) {
		b.EmitSyscall(ServiceID("System.Storage.GetContext"))
		b.EmitPushString("key")
		b.EmitPushString("value")
		b.EmitSyscall(ServiceID("System.Storage.Put"))
	})
	require.Equal(t, vm.HaltState, ae.State())
	assert.GreaterOrEqual(t, ae.GasConsumed(), int64((3+5)*StoragePrice))
}

func TestStorageReadOnlyContextRejectsWrites(t *testing.T) {
	ae := runApp(t, storage.NewMemoryStore(), -1, func(b *vm.ScriptBuilder) {
		b.EmitSyscall(ServiceID("System.Storage.GetReadOnlyContext"))
		b.EmitPushString("k")
		b.EmitPushString("v")
		b.EmitSyscall(ServiceID("System.Storage.Put"))
	})
	assert.Equal(t, vm.FaultState, ae.State())
	assert.True(t, errors.Is(ae.FaultError(), vmerrors.ErrPermissionDenied))
}

func TestStorageAsReadOnly(t *testing.T) {
	ae := runApp(t, storage.NewMemoryStore(), -1, func(b *vm.ScriptBuilder) {
		b.EmitSyscall(ServiceID("System.Storage.GetContext"))
		b.EmitSyscall(ServiceID("System.Storage.AsReadOnly"))
		b.EmitPushString("k")
		b.EmitPushString("v")
		b.EmitSyscall(ServiceID("System.Storage.Put"))
	})
	assert.Equal(t, vm.FaultState, ae.State())
	assert.True(t, errors.Is(ae.FaultError(), vmerrors.ErrPermissionDenied))
}

func TestStorageFindIterator(t *testing.T) {
	store := storage.NewMemoryStore()

	var b vm.ScriptBuilder
	b.EmitSyscall(ServiceID("System.Storage.GetContext"))
	b.EmitPushString("a")
	b.EmitSyscall(ServiceID("System.Storage.Find"))
	b.Emit(vm.DUP)
	b.EmitSyscall(ServiceID("System.Iterator.Next")) // -> true
	b.Emit(vm.DROP)
	b.Emit(vm.DUP)
	b.EmitSyscall(ServiceID("System.Iterator.Value"))
	b.EmitPushInt64(0)
	b.Emit(vm.PICKITEM) // key relative to the context
	b.Emit(vm.NIP)      // drop the iterator below it

	// Seed under this script's hash, plus one entry outside the prefix.
	hash := HashScript(b.Bytes())
	require.NoError(t, store.Put(append(hash.Bytes(), []byte("a1")...), []byte("v1")))
	require.NoError(t, store.Put(append(hash.Bytes(), []byte("a2")...), []byte("v2")))
	require.NoError(t, store.Put(append(hash.Bytes(), []byte("b1")...), []byte("v3")))

	ae := NewApplicationEngine(Application, store, -1)
	_, err := ae.LoadScriptBytes(b.Bytes())
	require.NoError(t, err)
	ae.Run()
	require.Equal(t, vm.HaltState, ae.State(), "fault: %v", ae.FaultError())
	assert.Equal(t, "a1", string(topBytes(t, ae)))
}

func TestCallT(t *testing.T) {
	code := []byte{byte(vm.CALLT), 7, 0, byte(vm.RET)}

	// Without a resolver the token is unknown.
	ae := NewApplicationEngine(Application, storage.NewMemoryStore(), -1)
	_, err := ae.LoadScriptBytes(code)
	require.NoError(t, err)
	ae.Run()
	assert.Equal(t, vm.FaultState, ae.State())
	assert.True(t, errors.Is(ae.FaultError(), vmerrors.ErrUnknownToken))

	// With one, the token reaches the host.
	ae = NewApplicationEngine(Application, storage.NewMemoryStore(), -1)
	ae.SetCallT(func(ae *ApplicationEngine, token uint16) error {
		return ae.PushItem(stackitem.Make(int(token)))
	})
	_, err = ae.LoadScriptBytes(code)
	require.NoError(t, err)
	ae.Run()
	require.Equal(t, vm.HaltState, ae.State())
	assert.Equal(t, int64(7), topInt(t, ae))
}

func TestCryptoSyscalls(t *testing.T) {
	want := sha256.Sum256([]byte("abc"))
	ae := runApp(t, storage.NewMemoryStore(), -1, func(b *vm.ScriptBuilder) {
		b.EmitPushString("abc")
		b.EmitSyscall(ServiceID("System.Crypto.Sha256"))
	})
	require.Equal(t, vm.HaltState, ae.State())
	assert.Equal(t, want[:], topBytes(t, ae))

	ae = runApp(t, storage.NewMemoryStore(), -1, func(b *vm.ScriptBuilder) {
		b.EmitPushString("abc")
		b.EmitSyscall(ServiceID("System.Crypto.Ripemd160"))
	})
	require.Equal(t, vm.HaltState, ae.State())
	assert.Len(t, topBytes(t, ae), 20)
}

func TestServiceID(t *testing.T) {
	// Stable and collision-free across the built-in surface.
	assert.Equal(t, ServiceID("System.Storage.Get"), ServiceID("System.Storage.Get"))
	assert.NotEqual(t, ServiceID("System.Storage.Get"), ServiceID("System.Storage.Put"))

	r := DefaultRegistry()
	d := r.Lookup(ServiceID("System.Runtime.Notify"))
	require.NotNil(t, d)
	assert.Equal(t, "System.Runtime.Notify", d.Name)
	assert.Equal(t, AllowNotify, d.RequiredFlags)
	assert.Nil(t, r.Lookup(0))
}

func TestCallFlags(t *testing.T) {
	assert.True(t, AllFlags.Has(States))
	assert.True(t, States.Has(ReadStates))
	assert.True(t, States.Has(WriteStates))
	assert.False(t, ReadOnly.Has(WriteStates))
	assert.True(t, ReadOnly.Has(ReadStates|AllowCall))
	assert.True(t, NoneFlag.Has(NoneFlag))
	assert.False(t, NoneFlag.Has(AllowNotify))
}

func TestHashScript(t *testing.T) {
	a := HashScript([]byte{1, 2, 3})
	b := HashScript([]byte{1, 2, 3})
	c := HashScript([]byte{1, 2, 4})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a.Bytes(), 20)
}

func TestOpcodePrices(t *testing.T) {
	assert.Equal(t, int64(0), OpcodePrice(vm.SYSCALL))
	assert.Equal(t, int64(0), OpcodePrice(vm.RET))
	assert.Equal(t, int64(1), OpcodePrice(vm.PUSH1))
	assert.Equal(t, int64(1<<13), OpcodePrice(vm.APPEND))
	assert.Equal(t, int64(1<<9), OpcodePrice(vm.CALL))
}
