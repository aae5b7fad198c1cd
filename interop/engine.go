// Package interop hosts the boundary between bytecode execution and the
// outside world: gas metering, the syscall registry, permissions, the
// notification log and storage access.
package interop

import (
	"fmt"
	"math"

	"github.com/colorfulnotion/neovm/log"
	"github.com/colorfulnotion/neovm/storage"
	"github.com/colorfulnotion/neovm/vm"
	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

// NotificationEvent is one entry of the append-only notification log. State
// is deep-copied at emission so later script mutation cannot rewrite it.
type NotificationEvent struct {
	ScriptHash ScriptHashID
	Name       string
	State      *stackitem.Array
}

// CallTHandler resolves a CALLT token for the host. Installed with SetCallT.
type CallTHandler func(ae *ApplicationEngine, token uint16) error

// ApplicationEngine is an ExecutionEngine bound to a host: every instruction
// is gas-charged before dispatch, SYSCALL routes through the service
// registry, and storage runs against a snapshot.
type ApplicationEngine struct {
	*vm.Engine

	trigger     Trigger
	gasLimit    int64
	gasConsumed int64
	callFlags   CallFlags

	registry *Registry
	snapshot storage.Snapshot

	notifications []NotificationEvent
	hashCache     map[*vm.Script]ScriptHashID

	onCallT CallTHandler
}

// NewApplicationEngine binds a fresh engine to trigger, snapshot and gas
// limit. A negative gasLimit means unmetered execution.
func NewApplicationEngine(trigger Trigger, snapshot storage.Snapshot, gasLimit int64) *ApplicationEngine {
	if gasLimit < 0 {
		gasLimit = math.MaxInt64
	}
	ae := &ApplicationEngine{
		Engine:    vm.NewEngine(vm.DefaultLimits()),
		trigger:   trigger,
		gasLimit:  gasLimit,
		callFlags: AllFlags,
		registry:  DefaultRegistry(),
		snapshot:  snapshot,
		hashCache: make(map[*vm.Script]ScriptHashID),
	}
	ae.SetPreExecHook(ae.chargeOpcode)
	ae.SetHandler(vm.SYSCALL, ae.handleSyscall)
	ae.SetHandler(vm.CALLT, ae.handleCallT)
	return ae
}

// Trigger returns the execution trigger.
func (ae *ApplicationEngine) Trigger() Trigger { return ae.trigger }

// GasConsumed returns the gas charged so far.
func (ae *ApplicationEngine) GasConsumed() int64 { return ae.gasConsumed }

// GasLeft returns the remaining budget.
func (ae *ApplicationEngine) GasLeft() int64 { return ae.gasLimit - ae.gasConsumed }

// CallFlags returns the current permission mask.
func (ae *ApplicationEngine) CallFlags() CallFlags { return ae.callFlags }

// SetCallFlags restricts (or widens) the permission mask for subsequent
// syscalls.
func (ae *ApplicationEngine) SetCallFlags(f CallFlags) { ae.callFlags = f }

// Snapshot returns the storage view this engine runs against.
func (ae *ApplicationEngine) Snapshot() storage.Snapshot { return ae.snapshot }

// Notifications returns the log in emission order.
func (ae *ApplicationEngine) Notifications() []NotificationEvent { return ae.notifications }

// SetCallT installs the host's CALLT token resolver.
func (ae *ApplicationEngine) SetCallT(h CallTHandler) { ae.onCallT = h }

// Registry exposes the service registry so hosts can add services before
// execution starts.
func (ae *ApplicationEngine) Registry() *Registry { return ae.registry }

// ChargeGas consumes amount from the budget. The check happens before the
// charge: when the budget would be exceeded nothing is consumed and the
// engine faults with OutOfGas.
func (ae *ApplicationEngine) ChargeGas(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative charge %d", vmerrors.ErrOutOfGas, amount)
	}
	if ae.gasConsumed > ae.gasLimit-amount {
		return fmt.Errorf("%w: consumed %d + %d exceeds limit %d",
			vmerrors.ErrOutOfGas, ae.gasConsumed, amount, ae.gasLimit)
	}
	ae.gasConsumed += amount
	return nil
}

func (ae *ApplicationEngine) chargeOpcode(ctx *vm.Context, in *vm.Instruction) error {
	return ae.ChargeGas(OpcodePrice(in.OpCode))
}

// CurrentScriptHash identifies the script of the innermost context.
func (ae *ApplicationEngine) CurrentScriptHash() ScriptHashID {
	script := ae.Context().Script()
	if h, ok := ae.hashCache[script]; ok {
		return h
	}
	h := HashScript(script.Bytes())
	ae.hashCache[script] = h
	return h
}

func (ae *ApplicationEngine) handleSyscall(e *vm.Engine, in *vm.Instruction) error {
	id := in.SyscallID()
	d := ae.registry.Lookup(id)
	if d == nil {
		return fmt.Errorf("%w: %#08x", vmerrors.ErrUnknownSyscall, id)
	}
	if !ae.callFlags.Has(d.RequiredFlags) {
		return fmt.Errorf("%w: %s requires flags %#02x, have %#02x",
			vmerrors.ErrPermissionDenied, d.Name, byte(d.RequiredFlags), byte(ae.callFlags))
	}
	if err := ae.ChargeGas(d.Price); err != nil {
		return err
	}
	log.Trace(log.InteropMonitoring, "syscall", "name", d.Name, "gas", ae.gasConsumed)
	return d.Handler(ae)
}

func (ae *ApplicationEngine) handleCallT(e *vm.Engine, in *vm.Instruction) error {
	if ae.onCallT == nil {
		return fmt.Errorf("%w: token %d", vmerrors.ErrUnknownToken, in.TokenID())
	}
	return ae.onCallT(ae, in.TokenID())
}
