package interop

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/colorfulnotion/neovm/log"
	"github.com/colorfulnotion/neovm/vm/stackitem"
	"github.com/colorfulnotion/neovm/vmerrors"
)

const (
	// MaxNotificationName bounds the event name of System.Runtime.Notify.
	MaxNotificationName = 32
	// MaxLogMessage bounds the payload of System.Runtime.Log.
	MaxLogMessage = 1024
	platformName  = "NEOVM"
)

func registerRuntimeServices(r *Registry) {
	r.Register(&Descriptor{
		Name: "System.Runtime.Platform", Price: 1 << 3,
		Handler: runtimePlatform,
	})
	r.Register(&Descriptor{
		Name: "System.Runtime.GetTrigger", Price: 1 << 3,
		Handler: runtimeGetTrigger,
	})
	r.Register(&Descriptor{
		Name: "System.Runtime.GasLeft", Price: 1 << 4,
		Handler: runtimeGasLeft,
	})
	r.Register(&Descriptor{
		Name: "System.Runtime.BurnGas", Price: 1 << 4,
		Handler: runtimeBurnGas,
	})
	r.Register(&Descriptor{
		Name: "System.Runtime.Log", Price: 1 << 15,
		Handler: runtimeLog,
	})
	r.Register(&Descriptor{
		Name: "System.Runtime.Notify", Price: 1 << 15,
		RequiredFlags: AllowNotify,
		Handler:       runtimeNotify,
	})
	r.Register(&Descriptor{
		Name: "System.Runtime.GetNotifications", Price: 1 << 12,
		Handler: runtimeGetNotifications,
	})
}

func runtimePlatform(ae *ApplicationEngine) error {
	return ae.PushItem(stackitem.NewByteString([]byte(platformName)))
}

func runtimeGetTrigger(ae *ApplicationEngine) error {
	item, err := stackitem.NewBigInteger(big.NewInt(int64(ae.trigger)))
	if err != nil {
		return err
	}
	return ae.PushItem(item)
}

func runtimeGasLeft(ae *ApplicationEngine) error {
	item, err := stackitem.NewBigInteger(big.NewInt(ae.GasLeft()))
	if err != nil {
		return err
	}
	return ae.PushItem(item)
}

func runtimeBurnGas(ae *ApplicationEngine) error {
	amount, err := ae.PopInt()
	if err != nil {
		return err
	}
	if amount.Sign() <= 0 || !amount.IsInt64() {
		return fmt.Errorf("%w: burn %s", vmerrors.ErrArithmeticRange, amount)
	}
	return ae.ChargeGas(amount.Int64())
}

func runtimeLog(ae *ApplicationEngine) error {
	msg, err := ae.PopBytes()
	if err != nil {
		return err
	}
	if len(msg) > MaxLogMessage {
		return fmt.Errorf("%w: log message of %d bytes", vmerrors.ErrMaxItemSize, len(msg))
	}
	log.Info(log.InteropMonitoring, "runtime log",
		"script", fmt.Sprintf("%x", ae.CurrentScriptHash()), "msg", string(msg))
	return nil
}

func runtimeNotify(ae *ApplicationEngine) error {
	state, err := ae.PopItem()
	if err != nil {
		return err
	}
	nameBytes, err := ae.PopBytes()
	if err != nil {
		return err
	}
	if len(nameBytes) > MaxNotificationName {
		return fmt.Errorf("%w: event name of %d bytes", vmerrors.ErrMaxItemSize, len(nameBytes))
	}
	arr, ok := state.(*stackitem.Array)
	if !ok {
		return fmt.Errorf("%w: notification state is %s, not Array", vmerrors.ErrInvalidCast, state.Type())
	}
	ae.notifications = append(ae.notifications, NotificationEvent{
		ScriptHash: ae.CurrentScriptHash(),
		Name:       string(nameBytes),
		State:      stackitem.DeepCopy(arr).(*stackitem.Array),
	})
	return nil
}

// runtimeGetNotifications pushes the log filtered by script hash; a Null
// filter returns everything. Each entry surfaces as [hash, name, state].
func runtimeGetNotifications(ae *ApplicationEngine) error {
	filter, err := ae.PopItem()
	if err != nil {
		return err
	}
	var want []byte
	if _, isNull := filter.(stackitem.Null); !isNull {
		want, err = filter.TryBytes()
		if err != nil {
			return err
		}
		if len(want) != len(ScriptHashID{}) {
			return fmt.Errorf("%w: filter of %d bytes", vmerrors.ErrInvalidIndex, len(want))
		}
	}
	out := stackitem.NewArray(nil)
	for _, n := range ae.notifications {
		if want != nil && !bytes.Equal(want, n.ScriptHash.Bytes()) {
			continue
		}
		out.Append(stackitem.NewArray([]stackitem.Item{
			stackitem.NewByteString(n.ScriptHash.Bytes()),
			stackitem.NewByteString([]byte(n.Name)),
			stackitem.DeepCopy(n.State),
		}))
	}
	return ae.PushItem(out)
}
