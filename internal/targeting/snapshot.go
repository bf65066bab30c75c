package targeting

import (
	"fmt"
	"slices"
	"time"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
)

// Snapshot is the serializable part of the engine state.
// Targets are ids; live entity references are never persisted.
type Snapshot struct {
	CurrentTarget      model.EntityID
	LastTarget         model.EntityID
	History            []model.EntityID
	LastUpdate         time.Time
	Strategy           model.StrategyName
	PersistenceMode    model.PersistenceMode
	Locked             bool
	LockStart          time.Time
	SwitchCount        uint64
	LastStrategyChange time.Time
}

// Snapshot captures the current state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		CurrentTarget:      e.state.CurrentTarget,
		LastTarget:         e.state.LastTarget,
		History:            slices.Clone(e.state.History),
		LastUpdate:         e.state.LastUpdate,
		Strategy:           e.state.Strategy,
		PersistenceMode:    e.cfg.PersistenceMode,
		Locked:             e.state.Locked,
		LockStart:          e.state.LockStart,
		SwitchCount:        e.state.SwitchCount,
		LastStrategyChange: e.state.LastStrategyChange,
	}
}

// Restore replaces the state with s. Entity ids do not survive a restart,
// so the stored target comes back as the last target and the engine starts
// Idle and unlocked. Counters and history are kept.
func (e *Engine) Restore(s Snapshot) error {
	if !e.lib.Has(s.Strategy) {
		return fmt.Errorf("restoring snapshot: %w: %q", ErrUnknownStrategy, s.Strategy)
	}
	if s.PersistenceMode != "" && !e.policies.Has(s.PersistenceMode) {
		return fmt.Errorf("restoring snapshot: %w: %q", ErrUnknownMode, s.PersistenceMode)
	}
	if s.Locked && s.CurrentTarget == 0 {
		return fmt.Errorf("%w: locked without a target", ErrInvalidSnapshot)
	}

	history := slices.Clone(s.History)
	if limit := e.historyLimit(); len(history) > limit {
		history = history[len(history)-limit:]
	}

	e.state = model.TargetingState{
		LastTarget:         s.LastTarget,
		History:            history,
		LastUpdate:         s.LastUpdate,
		Strategy:           s.Strategy,
		SwitchCount:        s.SwitchCount,
		LastStrategyChange: s.LastStrategyChange,
	}
	e.retire(s.CurrentTarget)
	if s.PersistenceMode != "" {
		e.cfg.PersistenceMode = s.PersistenceMode
	}
	e.fallbackUsed = false
	return nil
}
