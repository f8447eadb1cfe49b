package entities

// SessionState is the lifecycle position of a bridge session.
type SessionState int

// Session states, in the only order a session moves through them.
const (
	SessionUninitialized SessionState = iota
	SessionInstantiating
	SessionRunning
	SessionEnded
)

func (s SessionState) String() string {
	switch s {
	case SessionUninitialized:
		return "uninitialized"
	case SessionInstantiating:
		return "instantiating"
	case SessionRunning:
		return "running"
	case SessionEnded:
		return "ended"
	default:
		return "unknown"
	}
}
