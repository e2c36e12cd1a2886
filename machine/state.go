package machine

// State is the scheduler run state. Idle means no program is running (never
// started, or explicitly stopped); Halted is terminal for the current run.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_IDLE    = State(0) // idle
	STATE_RUNNING = State(1) // running
	STATE_HALTED  = State(2) // halted
)
