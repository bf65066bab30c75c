package targeting

import (
	"fmt"
	"time"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/rangefilter"
)

// Patch is a partial configuration update. Nil fields are left unchanged.
type Patch struct {
	PrimaryStrategy       *model.StrategyName
	FallbackStrategy      *model.StrategyName
	Range                 *float64
	UpdateInterval        *time.Duration
	SwitchThreshold       *float64
	EnabledStrategies     []model.StrategyName
	PersistenceMode       *model.PersistenceMode
	TargetLockDuration    *time.Duration
	ThreatWeights         *model.ThreatWeights
	SpatialIndexThreshold *int
	SpatialCellSize       *float64
	HistorySize           *int
}

// UpdateConfig applies p atomically: on error nothing changes.
// A new primary strategy becomes the active strategy without counting as an
// explicit strategy change.
func (e *Engine) UpdateConfig(p Patch) error {
	next := e.cfg.Clone()

	if p.PrimaryStrategy != nil {
		next.PrimaryStrategy = *p.PrimaryStrategy
	}
	if p.FallbackStrategy != nil {
		next.FallbackStrategy = *p.FallbackStrategy
	}
	if p.Range != nil {
		next.Range = *p.Range
	}
	if p.UpdateInterval != nil {
		next.UpdateInterval = *p.UpdateInterval
	}
	if p.SwitchThreshold != nil {
		next.SwitchThreshold = *p.SwitchThreshold
	}
	if p.EnabledStrategies != nil {
		next.EnabledStrategies = append([]model.StrategyName(nil), p.EnabledStrategies...)
	}
	if p.PersistenceMode != nil {
		next.PersistenceMode = *p.PersistenceMode
	}
	if p.TargetLockDuration != nil {
		next.TargetLockDuration = *p.TargetLockDuration
	}
	if p.ThreatWeights != nil {
		next.ThreatWeights = *p.ThreatWeights
	}
	if p.SpatialIndexThreshold != nil {
		next.SpatialIndexThreshold = *p.SpatialIndexThreshold
	}
	if p.SpatialCellSize != nil {
		next.SpatialCellSize = *p.SpatialCellSize
	}
	if p.HistorySize != nil {
		next.HistorySize = *p.HistorySize
	}

	if err := e.checkConfig(next); err != nil {
		return fmt.Errorf("updating targeting config: %w", err)
	}

	if next.SpatialCellSize != e.cfg.SpatialCellSize || next.SpatialIndexThreshold != e.cfg.SpatialIndexThreshold {
		e.indexed = rangefilter.NewIndexed(next.SpatialCellSize, next.SpatialIndexThreshold)
	}
	e.cfg = next
	if p.PrimaryStrategy != nil {
		e.state.Strategy = next.PrimaryStrategy
	}
	if limit := e.historyLimit(); len(e.state.History) > limit {
		e.state.History = append([]model.EntityID(nil), e.state.History[len(e.state.History)-limit:]...)
	}
	return nil
}
