package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
)

// ErrInvalid is returned by Validate for malformed targeting settings.
var ErrInvalid = errors.New("invalid targeting config")

// Targeting holds per-actor targeting settings.
type Targeting struct {
	PrimaryStrategy  model.StrategyName `yaml:"primary_strategy"`
	FallbackStrategy model.StrategyName `yaml:"fallback_strategy"`

	// Range overrides the actor's attack range when positive.
	Range          float64       `yaml:"range"`
	UpdateInterval time.Duration `yaml:"update_interval"`

	// SwitchThreshold is the absolute threat delta (0..1) a candidate must
	// exceed before switch_freely abandons the current target.
	SwitchThreshold float64 `yaml:"switch_threshold"`

	EnabledStrategies  []model.StrategyName  `yaml:"enabled_strategies"`
	PersistenceMode    model.PersistenceMode `yaml:"persistence_mode"`
	TargetLockDuration time.Duration         `yaml:"target_lock_duration"` // 0 = lock until unlocked

	ThreatWeights model.ThreatWeights `yaml:"threat_weights"`

	// Spatial index kicks in at this many entities. 0 disables it.
	SpatialIndexThreshold int     `yaml:"spatial_index_threshold"`
	SpatialCellSize       float64 `yaml:"spatial_cell_size"`

	HistorySize int `yaml:"history_size"`
}

// DefaultTargeting returns the baseline targeting configuration.
func DefaultTargeting() Targeting {
	enabled := make([]model.StrategyName, 0, 15)
	for _, name := range model.BuiltinStrategies() {
		if name != model.StrategyCustom {
			enabled = append(enabled, name)
		}
	}

	return Targeting{
		PrimaryStrategy:    model.StrategyClosest,
		FallbackStrategy:   model.StrategyHighestThreat,
		Range:              500,
		UpdateInterval:     100 * time.Millisecond,
		SwitchThreshold:    0.1,
		EnabledStrategies:  enabled,
		PersistenceMode:    model.ModeKeepTarget,
		TargetLockDuration: 5 * time.Second,
		ThreatWeights: model.ThreatWeights{
			Proximity: 0.4,
			Health:    0.3,
			Damage:    0.2,
			Speed:     0.1,
		},
		SpatialIndexThreshold: 128,
		SpatialCellSize:       100,
		HistorySize:           10,
	}
}

// Validate checks value ranges. Name resolution is left to the registries,
// which know about strategies registered at runtime.
func (t Targeting) Validate() error {
	switch {
	case t.PrimaryStrategy == "":
		return fmt.Errorf("%w: primary strategy is empty", ErrInvalid)
	case t.FallbackStrategy == "":
		return fmt.Errorf("%w: fallback strategy is empty", ErrInvalid)
	case t.PersistenceMode == "":
		return fmt.Errorf("%w: persistence mode is empty", ErrInvalid)
	case math.IsNaN(t.Range) || t.Range < 0:
		return fmt.Errorf("%w: range %v", ErrInvalid, t.Range)
	case math.IsNaN(t.SwitchThreshold) || t.SwitchThreshold < 0 || t.SwitchThreshold > 1:
		return fmt.Errorf("%w: switch threshold %v outside [0,1]", ErrInvalid, t.SwitchThreshold)
	case t.UpdateInterval < 0:
		return fmt.Errorf("%w: update interval %v", ErrInvalid, t.UpdateInterval)
	case t.TargetLockDuration < 0:
		return fmt.Errorf("%w: lock duration %v", ErrInvalid, t.TargetLockDuration)
	case t.SpatialIndexThreshold < 0:
		return fmt.Errorf("%w: spatial index threshold %d", ErrInvalid, t.SpatialIndexThreshold)
	case math.IsNaN(t.SpatialCellSize) || t.SpatialCellSize < 0:
		return fmt.Errorf("%w: spatial cell size %v", ErrInvalid, t.SpatialCellSize)
	case t.HistorySize < 0:
		return fmt.Errorf("%w: history size %d", ErrInvalid, t.HistorySize)
	}
	return nil
}

// StrategyEnabled reports whether name is in EnabledStrategies.
// An empty list enables everything.
func (t Targeting) StrategyEnabled(name model.StrategyName) bool {
	if len(t.EnabledStrategies) == 0 {
		return true
	}
	for _, n := range t.EnabledStrategies {
		if n == name {
			return true
		}
	}
	return false
}

// EffectiveRange returns the configured range or fallback when unset.
func (t Targeting) EffectiveRange(actorRange float64) float64 {
	if t.Range > 0 {
		return t.Range
	}
	return actorRange
}

// Clone returns a copy that shares no slices with t.
func (t Targeting) Clone() Targeting {
	if t.EnabledStrategies != nil {
		t.EnabledStrategies = append([]model.StrategyName(nil), t.EnabledStrategies...)
	}
	return t
}
