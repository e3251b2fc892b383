package bootstrap

// State is a state of the bind loop.
type State int

const (
	StateIdle State = iota
	StateBinding
	StateBound
	StateRetrying
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBinding:
		return "binding"
	case StateBound:
		return "bound"
	case StateRetrying:
		return "retrying"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transition records one state change of the machine.
type Transition struct {
	From    State
	To      State
	Attempt int
	Port    int
}
