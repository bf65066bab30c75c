package targeting

import "github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"

// Status is a compact summary for UIs and logs.
type Status struct {
	Phase        model.Phase
	HasTarget    bool
	TargetID     model.EntityID
	Strategy     model.StrategyName
	Mode         model.PersistenceMode
	Locked       bool
	SwitchCount  uint64
	FallbackUsed bool
}

// Status returns the current summary.
func (e *Engine) Status() Status {
	return Status{
		Phase:        e.state.Phase(),
		HasTarget:    e.state.HasTarget(),
		TargetID:     e.state.CurrentTarget,
		Strategy:     e.state.Strategy,
		Mode:         e.cfg.PersistenceMode,
		Locked:       e.state.Locked,
		SwitchCount:  e.state.SwitchCount,
		FallbackUsed: e.fallbackUsed,
	}
}
