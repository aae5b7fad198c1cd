package interop

// Trigger names the reason an execution was started. The value is visible to
// scripts through System.Runtime.GetTrigger.
type Trigger byte

const (
	OnPersist    Trigger = 0x01
	PostPersist  Trigger = 0x02
	Verification Trigger = 0x20
	Application  Trigger = 0x40
)

func (t Trigger) String() string {
	switch t {
	case OnPersist:
		return "OnPersist"
	case PostPersist:
		return "PostPersist"
	case Verification:
		return "Verification"
	case Application:
		return "Application"
	default:
		return "Unknown"
	}
}
