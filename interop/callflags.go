package interop

// CallFlags is the permission mask checked against each syscall's required
// flags before its handler runs.
type CallFlags byte

const (
	NoneFlag    CallFlags = 0
	ReadStates  CallFlags = 1 << 0
	WriteStates CallFlags = 1 << 1
	AllowCall   CallFlags = 1 << 2
	AllowNotify CallFlags = 1 << 3

	States   = ReadStates | WriteStates
	ReadOnly = ReadStates | AllowCall
	AllFlags = States | AllowCall | AllowNotify
)

// Has reports whether every bit of required is present.
func (f CallFlags) Has(required CallFlags) bool {
	return f&required == required
}
