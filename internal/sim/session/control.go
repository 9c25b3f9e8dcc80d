// Package session owns the run lifecycle: the pure control state machine
// that decides what a control message means for a session, and the
// orchestrator that applies those decisions to live sessions.
package session

import "triocell/internal/protocol"

// Phase is the session lifecycle state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhasePaused  Phase = "paused"
)

// Snapshot is the part of a session the control state machine looks at.
// Phase is meaningless when HasRun is false.
type Snapshot struct {
	HasRun bool
	Phase  Phase
}

// ActionKind enumerates the effects a decision can demand.
type ActionKind int

const (
	ActionNoop ActionKind = iota
	ActionStartNew
	ActionResume
	ActionPause
	ActionReset
	ActionStep
	ActionStop
	ActionError
)

func (k ActionKind) String() string {
	switch k {
	case ActionNoop:
		return "noop"
	case ActionStartNew:
		return "start_new"
	case ActionResume:
		return "resume"
	case ActionPause:
		return "pause"
	case ActionReset:
		return "reset"
	case ActionStep:
		return "step"
	case ActionStop:
		return "stop"
	case ActionError:
		return "error"
	default:
		return "unknown"
	}
}

// Command is a decoded control message: the protocol type plus the STEP
// tick count (nil when absent).
type Command struct {
	Kind  string
	Ticks *int
}

// Decision is the outcome of Decide. Ticks is set for ActionStep; Reason
// for ActionError.
type Decision struct {
	Kind   ActionKind
	Ticks  int
	Reason string
}

// Decide maps (snapshot, command) to an action. It is side-effect free and
// total over the control message types; the orchestrator executes whatever
// comes back.
func Decide(snap Snapshot, cmd Command) Decision {
	switch cmd.Kind {
	case protocol.TypeStart:
		if !snap.HasRun {
			return Decision{Kind: ActionStartNew}
		}
		if snap.Phase == PhasePaused {
			return Decision{Kind: ActionResume}
		}
		return Decision{Kind: ActionNoop}

	case protocol.TypePause:
		if snap.HasRun && snap.Phase == PhaseRunning {
			return Decision{Kind: ActionPause}
		}
		return Decision{Kind: ActionNoop}

	case protocol.TypeResume:
		if snap.HasRun && snap.Phase == PhasePaused {
			return Decision{Kind: ActionResume}
		}
		return Decision{Kind: ActionNoop}

	case protocol.TypeReset:
		if !snap.HasRun {
			return Decision{Kind: ActionError, Reason: "no active run"}
		}
		return Decision{Kind: ActionReset}

	case protocol.TypeStep:
		if !snap.HasRun {
			return Decision{Kind: ActionError, Reason: "no active run"}
		}
		return Decision{Kind: ActionStep, Ticks: normalizeTicks(cmd.Ticks)}

	case protocol.TypeStop:
		if !snap.HasRun {
			return Decision{Kind: ActionNoop}
		}
		return Decision{Kind: ActionStop}

	default:
		return Decision{Kind: ActionError, Reason: "unknown control message: " + cmd.Kind}
	}
}

func normalizeTicks(t *int) int {
	if t == nil || *t < 1 {
		return 1
	}
	return *t
}
