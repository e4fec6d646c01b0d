package backend

// State is the supervisor's position in the backend lifecycle. Transitions
// are monotonic (NotStarted → Starting → Polling → Ready|Failed) except
// Stopped, which may follow any state.
type State int

const (
	StateNotStarted State = iota
	StateStarting
	StatePolling
	StateReady
	StateFailed
	StateStopped
)

// String returns the lowercase name used in logs.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateStarting:
		return "starting"
	case StatePolling:
		return "polling"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
