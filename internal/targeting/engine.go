// Package targeting drives per-actor target selection: it filters the tick's
// entities, asks the active strategy for a candidate and the active
// persistence mode whether to switch, and keeps the lock/switch state.
package targeting

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/config"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/metrics"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/persistence"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/rangefilter"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/strategy"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/unlock"
)

// DefaultHistorySize bounds target history when the config leaves it at 0.
const DefaultHistorySize = 10

// Engine is the targeting state machine of one actor.
// Not safe for concurrent use: drive it from one goroutine.
type Engine struct {
	actor *model.Actor
	view  model.Actor // actor with effective range and weights, rebuilt per call

	cfg      config.Targeting
	lib      *strategy.Library
	policies *persistence.Registry
	unlocks  unlock.Provider
	sink     metrics.Sink
	clock    func() time.Time
	indexed  *rangefilter.Indexed

	state        model.TargetingState
	fallbackUsed bool
}

// NewEngine creates an Idle engine for actor. Nil lib or policies get the
// built-in registries.
func NewEngine(actor *model.Actor, cfg config.Targeting, lib *strategy.Library, policies *persistence.Registry) (*Engine, error) {
	if actor == nil {
		return nil, errors.New("creating targeting engine: nil actor")
	}
	if lib == nil {
		lib = strategy.NewLibrary(nil)
	}
	if policies == nil {
		policies = persistence.NewRegistry()
	}

	e := &Engine{
		actor:    actor,
		lib:      lib,
		policies: policies,
		unlocks:  unlock.AllowAll(),
		sink:     metrics.Discard,
		clock:    time.Now,
	}
	if err := e.checkConfig(cfg); err != nil {
		return nil, fmt.Errorf("creating targeting engine: %w", err)
	}
	e.cfg = cfg.Clone()
	e.indexed = rangefilter.NewIndexed(cfg.SpatialCellSize, cfg.SpatialIndexThreshold)
	e.state.Strategy = cfg.PrimaryStrategy
	return e, nil
}

// SetUnlocks installs the unlock provider. nil unlocks everything.
func (e *Engine) SetUnlocks(p unlock.Provider) {
	if p == nil {
		p = unlock.AllowAll()
	}
	e.unlocks = p
}

// SetMetrics installs the timing sink. nil discards samples.
func (e *Engine) SetMetrics(s metrics.Sink) {
	if s == nil {
		s = metrics.Discard
	}
	e.sink = s
}

// SetClock replaces the time source used for state timestamps.
func (e *Engine) SetClock(clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	e.clock = clock
}

// Actor returns the actor this engine targets for.
func (e *Engine) Actor() *model.Actor {
	return e.actor
}

// FindTarget returns the entity the active strategy would pick right now.
// It never changes engine state.
func (e *Engine) FindTarget(entities []*model.Entity) *model.Entity {
	start := time.Now()
	view := e.refreshView()
	valid := e.filter(entities, view)
	candidate, _ := e.pickCandidate(valid, view)
	e.sink.Record(metrics.Measure(metrics.OpFindTarget, start))
	return candidate
}

// UpdateTarget runs one tick of the state machine.
func (e *Engine) UpdateTarget(entities []*model.Entity) {
	start := time.Now()
	defer func() { e.sink.Record(metrics.Measure(metrics.OpUpdateTarget, start)) }()

	now := e.clock()
	defer func() { e.state.LastUpdate = now }()

	view := e.refreshView()
	valid := e.filter(entities, view)
	e.expireLock(now)

	current := model.FindEntity(valid, e.state.CurrentTarget)
	if e.state.Locked && current != nil {
		return
	}

	candidate, fallback := e.pickCandidate(valid, view)
	e.fallbackUsed = fallback

	if e.state.HasTarget() && current == nil {
		// Stored target died, despawned or left range.
		e.state.Locked = false
		e.state.LockStart = time.Time{}
		e.switchTo(candidate)
		return
	}

	d := persistence.Decision{
		Current:   current,
		Candidate: candidate,
		State:     &e.state,
		Config:    &e.cfg,
		Now:       now,
	}
	if current != nil && candidate != nil && current.ID != candidate.ID {
		tStart := time.Now()
		d.CurrentThreat = e.lib.Threat().Level(current, view, rangefilter.Distance(view, current))
		d.CandidateThreat = e.lib.Threat().Level(candidate, view, rangefilter.Distance(view, candidate))
		e.sink.Record(metrics.Measure(metrics.OpThreatCalculation, tStart))
	}

	switchTarget, err := e.policies.ShouldSwitch(e.activeMode(), d)
	if err != nil {
		slog.Warn("persistence mode unavailable, keeping target", "err", err)
		return
	}
	if switchTarget {
		e.switchTo(candidate)
	}
}

// LockTarget engages target and locks it regardless of strategy and mode.
// nil and the zero id are ignored.
func (e *Engine) LockTarget(target *model.Entity) {
	if target == nil || target.ID == 0 {
		return
	}
	now := e.clock()
	if target.ID != e.state.CurrentTarget {
		e.retire(e.state.CurrentTarget)
		e.state.CurrentTarget = target.ID
	}
	e.state.Locked = true
	e.state.LockStart = now
}

// UnlockTarget clears the lock and keeps the target.
func (e *Engine) UnlockTarget() {
	e.state.Locked = false
	e.state.LockStart = time.Time{}
}

// SwitchStrategy makes name the active strategy. Locked or disabled
// strategies are accepted and substituted at selection time.
func (e *Engine) SwitchStrategy(name model.StrategyName) error {
	if !e.lib.Has(name) {
		return fmt.Errorf("switching strategy: %w: %q", ErrUnknownStrategy, name)
	}
	e.state.Strategy = name
	e.state.LastStrategyChange = e.clock()
	return nil
}

// SetPersistenceMode makes mode the active persistence mode.
func (e *Engine) SetPersistenceMode(mode model.PersistenceMode) error {
	if !e.policies.Has(mode) {
		return fmt.Errorf("setting persistence mode: %w: %q", ErrUnknownMode, mode)
	}
	e.cfg.PersistenceMode = mode
	return nil
}

// Reset returns the engine to Idle with zeroed counters.
func (e *Engine) Reset() {
	e.state = model.TargetingState{Strategy: e.cfg.PrimaryStrategy}
	e.fallbackUsed = false
}

// CanSwitchTarget reports whether the target is not locked.
func (e *Engine) CanSwitchTarget() bool {
	return !e.state.Locked
}

// IsInRange reports whether target is alive and within effective range.
func (e *Engine) IsInRange(target *model.Entity) bool {
	return rangefilter.IsValid(e.refreshView(), target)
}

// ThreatLevel returns target's threat as seen by this actor.
func (e *Engine) ThreatLevel(target *model.Entity) float64 {
	if target == nil {
		return 0
	}
	view := e.refreshView()
	return e.lib.Threat().Level(target, view, rangefilter.Distance(view, target))
}

// FallbackUsed reports whether the last UpdateTarget substituted the
// active strategy.
func (e *Engine) FallbackUsed() bool {
	return e.fallbackUsed
}

// Due reports whether UpdateInterval has elapsed since the last update.
func (e *Engine) Due(now time.Time) bool {
	return e.state.LastUpdate.IsZero() || now.Sub(e.state.LastUpdate) >= e.cfg.UpdateInterval
}

// State returns a copy of the targeting state.
func (e *Engine) State() model.TargetingState {
	return e.state.Clone()
}

// Config returns a copy of the configuration.
func (e *Engine) Config() config.Targeting {
	return e.cfg.Clone()
}

// Performance returns timing summaries when the metrics sink keeps them.
func (e *Engine) Performance() []metrics.Stats {
	if r, ok := e.sink.(interface{ All() []metrics.Stats }); ok {
		return r.All()
	}
	return nil
}

func (e *Engine) refreshView() *model.Actor {
	e.view = e.actor.WithRange(e.cfg.EffectiveRange(e.actor.AttackRange))
	if e.view.Weights.IsZero() {
		e.view.Weights = e.cfg.ThreatWeights
	}
	return &e.view
}

func (e *Engine) filter(entities []*model.Entity, view *model.Actor) []*model.Entity {
	start := time.Now()
	var valid []*model.Entity
	if e.cfg.SpatialIndexThreshold > 0 {
		valid = e.indexed.Filter(entities, view)
	} else {
		valid = rangefilter.Filter(entities, view)
	}
	e.sink.Record(metrics.Measure(metrics.OpRangeFilter, start))
	return valid
}

func (e *Engine) strategyAvailable(name model.StrategyName) bool {
	return e.cfg.StrategyEnabled(name) && e.lib.IsUnlocked(name, e.unlocks)
}

// pickCandidate applies the active strategy, substituting the configured
// fallback and then closest when a strategy is locked or disabled.
// A disabled custom strategy always resolves to closest.
func (e *Engine) pickCandidate(valid []*model.Entity, view *model.Actor) (*model.Entity, bool) {
	name, fallback := e.state.Strategy, false
	if !e.strategyAvailable(name) {
		fallback = true
		switch {
		case name == model.StrategyCustom:
			name = model.StrategyClosest
		case e.strategyAvailable(e.cfg.FallbackStrategy):
			name = e.cfg.FallbackStrategy
		default:
			name = model.StrategyClosest
		}
	}

	candidate, err := e.lib.Apply(name, valid, view)
	if err != nil {
		return strategy.Closest(valid, view), true
	}
	return candidate, fallback
}

func (e *Engine) activeMode() model.PersistenceMode {
	if e.policies.IsUnlocked(e.cfg.PersistenceMode, e.unlocks) {
		return e.cfg.PersistenceMode
	}
	return model.ModeKeepTarget
}

func (e *Engine) expireLock(now time.Time) {
	if !e.state.Locked || e.cfg.TargetLockDuration <= 0 {
		return
	}
	if now.Sub(e.state.LockStart) >= e.cfg.TargetLockDuration {
		e.UnlockTarget()
	}
}

// switchTo moves the current target to candidate (nil = Idle).
func (e *Engine) switchTo(candidate *model.Entity) {
	var next model.EntityID
	if candidate != nil {
		next = candidate.ID
	}
	prev := e.state.CurrentTarget
	if next == prev {
		return
	}

	e.retire(prev)
	e.state.CurrentTarget = next
	if next != 0 {
		e.state.SwitchCount++
	}

	slog.Debug("target switched",
		"from", prev,
		"to", next,
		"strategy", e.state.Strategy,
		"mode", e.cfg.PersistenceMode)
}

// retire records id as the previous target.
func (e *Engine) retire(id model.EntityID) {
	if id == 0 {
		return
	}
	e.state.LastTarget = id
	e.state.PushHistory(id, e.historyLimit())
}

func (e *Engine) historyLimit() int {
	if e.cfg.HistorySize > 0 {
		return e.cfg.HistorySize
	}
	return DefaultHistorySize
}

func (e *Engine) checkConfig(cfg config.Targeting) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !e.lib.Has(cfg.PrimaryStrategy) {
		return fmt.Errorf("%w: primary %q", ErrUnknownStrategy, cfg.PrimaryStrategy)
	}
	if !e.lib.Has(cfg.FallbackStrategy) {
		return fmt.Errorf("%w: fallback %q", ErrUnknownStrategy, cfg.FallbackStrategy)
	}
	if !e.policies.Has(cfg.PersistenceMode) {
		return fmt.Errorf("%w: %q", ErrUnknownMode, cfg.PersistenceMode)
	}
	return nil
}
