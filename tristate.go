package govee

// Tristate represents a boolean device attribute that may also be unknown.
// Connectivity and power state start out unknown and stay unknown until the
// first status report for the device arrives over the broker.
type Tristate uint8

// Tristate values.
const (
	TristateUnknown Tristate = iota
	TristateFalse
	TristateTrue
)

// tristateOf converts a definite boolean into a Tristate.
func tristateOf(v bool) Tristate {
	if v {
		return TristateTrue
	}
	return TristateFalse
}

// Bool unpacks the Tristate into a boolean and a flag reporting whether the
// value is known. When known is false, value is always false.
func (t Tristate) Bool() (value, known bool) {
	switch t {
	case TristateTrue:
		return true, true
	case TristateFalse:
		return false, true
	default:
		return false, false
	}
}

// String returns "true", "false" or "unknown".
func (t Tristate) String() string {
	switch t {
	case TristateTrue:
		return "true"
	case TristateFalse:
		return "false"
	default:
		return "unknown"
	}
}
