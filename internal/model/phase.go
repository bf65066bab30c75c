package model

// Phase is the lifecycle stage of a TargetingState.
type Phase int32

const (
	// PhaseIdle - no current target
	PhaseIdle Phase = iota
	// PhaseEngaged - has a target the persistence mode may replace
	PhaseEngaged
	// PhaseLocked - has a target that survives strategy and mode
	PhaseLocked
)

// String returns human-readable phase name
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseEngaged:
		return "ENGAGED"
	case PhaseLocked:
		return "LOCKED"
	default:
		return "UNKNOWN"
	}
}

// Phase derives the lifecycle stage. A lock without a target counts as Idle.
func (s TargetingState) Phase() Phase {
	switch {
	case !s.HasTarget():
		return PhaseIdle
	case s.Locked:
		return PhaseLocked
	default:
		return PhaseEngaged
	}
}
