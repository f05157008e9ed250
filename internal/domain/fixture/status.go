package fixture

// ContainerStatus is the runtime's view of a container process.
type ContainerStatus struct {
	Running   bool
	ExitCode  int64
	OOMKilled bool
}

// State tracks a fixture container through its lifecycle.
//
// Unstarted -> Starting -> Ready | Failed, and any state -> Stopped.
type State int

const (
	StateUnstarted State = iota
	StateStarting
	StateReady
	StateFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateStarting:
		return "starting"
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
