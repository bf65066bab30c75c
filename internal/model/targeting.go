package model

import (
	"slices"
	"time"
)

// StrategyName names a target selection strategy.
type StrategyName string

const (
	StrategyClosest         StrategyName = "closest"
	StrategyHighestThreat   StrategyName = "highest_threat"
	StrategyLowestThreat    StrategyName = "lowest_threat"
	StrategyHighestHP       StrategyName = "highest_hp"
	StrategyLowestHP        StrategyName = "lowest_hp"
	StrategyHighestDamage   StrategyName = "highest_damage"
	StrategyLowestDamage    StrategyName = "lowest_damage"
	StrategyFastest         StrategyName = "fastest"
	StrategySlowest         StrategyName = "slowest"
	StrategyHighestArmor    StrategyName = "highest_armor"
	StrategyLowestArmor     StrategyName = "lowest_armor"
	StrategyShielded        StrategyName = "shielded"
	StrategyUnshielded      StrategyName = "unshielded"
	StrategyElementalWeak   StrategyName = "elemental_weak"
	StrategyElementalStrong StrategyName = "elemental_strong"
	StrategyCustom          StrategyName = "custom"
)

var builtinStrategies = []StrategyName{
	StrategyClosest,
	StrategyHighestThreat,
	StrategyLowestThreat,
	StrategyHighestHP,
	StrategyLowestHP,
	StrategyHighestDamage,
	StrategyLowestDamage,
	StrategyFastest,
	StrategySlowest,
	StrategyHighestArmor,
	StrategyLowestArmor,
	StrategyShielded,
	StrategyUnshielded,
	StrategyElementalWeak,
	StrategyElementalStrong,
	StrategyCustom,
}

// BuiltinStrategies returns all built-in strategy names in canonical order.
func BuiltinStrategies() []StrategyName {
	return slices.Clone(builtinStrategies)
}

// IsBuiltinStrategy reports whether name is one of the built-in strategies.
func IsBuiltinStrategy(name StrategyName) bool {
	return slices.Contains(builtinStrategies, name)
}

// PersistenceMode names a target persistence policy.
type PersistenceMode string

const (
	ModeKeepTarget       PersistenceMode = "keep_target"
	ModeSwitchFreely     PersistenceMode = "switch_freely"
	ModeSwitchAggressive PersistenceMode = "switch_aggressive"
	ModeManualOnly       PersistenceMode = "manual_only"
)

var builtinModes = []PersistenceMode{
	ModeKeepTarget,
	ModeSwitchFreely,
	ModeSwitchAggressive,
	ModeManualOnly,
}

// BuiltinModes returns all built-in persistence modes.
func BuiltinModes() []PersistenceMode {
	return slices.Clone(builtinModes)
}

// IsBuiltinMode reports whether mode is one of the built-in persistence modes.
func IsBuiltinMode(mode PersistenceMode) bool {
	return slices.Contains(builtinModes, mode)
}

// TargetingState is the mutable per-actor targeting state.
// Targets are held by ID only and re-validated every tick.
type TargetingState struct {
	CurrentTarget EntityID
	LastTarget    EntityID
	History       []EntityID

	LastUpdate time.Time
	Strategy   StrategyName

	Locked    bool
	LockStart time.Time

	SwitchCount        uint64
	LastStrategyChange time.Time
}

// HasTarget reports whether the state is Engaged.
func (s TargetingState) HasTarget() bool {
	return s.CurrentTarget != 0
}

// Clone returns a deep copy of the state.
func (s TargetingState) Clone() TargetingState {
	s.History = slices.Clone(s.History)
	return s
}

// PushHistory appends id to the history, dropping the oldest entries over limit.
func (s *TargetingState) PushHistory(id EntityID, limit int) {
	if id == 0 {
		return
	}
	s.History = append(s.History, id)
	if limit > 0 && len(s.History) > limit {
		s.History = slices.Delete(s.History, 0, len(s.History)-limit)
	}
}
