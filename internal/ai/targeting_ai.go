package ai

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/targeting"
)

// AttackFunc is called after a tick with the actor's current target.
// The simulation harness uses it to apply damage; the engine never does.
type AttackFunc func(actorID uint32, target model.EntityID, dt time.Duration)

// TargetingAI drives one targeting engine. The engine itself is lock-free;
// the mutex only serialises the tick goroutine against readers such as the
// snapshot flusher.
type TargetingAI struct {
	actorID uint32
	name    string

	mu       sync.Mutex
	engine   *targeting.Engine
	lastTick time.Time

	attack    AttackFunc
	isRunning atomic.Bool
	tickCount atomic.Uint64
}

// NewTargetingAI creates a controller for engine.
func NewTargetingAI(actorID uint32, name string, engine *targeting.Engine) *TargetingAI {
	return &TargetingAI{
		actorID: actorID,
		name:    name,
		engine:  engine,
	}
}

// SetAttackFunc sets the callback invoked with the current target each tick.
func (ai *TargetingAI) SetAttackFunc(fn AttackFunc) {
	ai.attack = fn
}

// ActorID returns the actor this controller belongs to.
func (ai *TargetingAI) ActorID() uint32 {
	return ai.actorID
}

// Name returns the actor name.
func (ai *TargetingAI) Name() string {
	return ai.name
}

// Start starts the controller.
func (ai *TargetingAI) Start() {
	ai.isRunning.Store(true)
	slog.Debug("targeting AI started",
		"actor", ai.name,
		"actorID", ai.actorID)
}

// Stop stops the controller. The engine state is kept.
func (ai *TargetingAI) Stop() {
	ai.isRunning.Store(false)
	slog.Debug("targeting AI stopped",
		"actor", ai.name,
		"actorID", ai.actorID)
}

// IsRunning reports whether the controller accepts ticks.
func (ai *TargetingAI) IsRunning() bool {
	return ai.isRunning.Load()
}

// Tick updates the target when the engine's update interval has elapsed.
func (ai *TargetingAI) Tick(now time.Time, entities []*model.Entity) {
	if !ai.isRunning.Load() {
		return
	}

	ai.mu.Lock()
	if !ai.engine.Due(now) {
		ai.mu.Unlock()
		return
	}
	before := ai.engine.Status()
	ai.engine.UpdateTarget(entities)
	after := ai.engine.Status()

	dt := time.Duration(0)
	if !ai.lastTick.IsZero() {
		dt = now.Sub(ai.lastTick)
	}
	ai.lastTick = now
	ai.mu.Unlock()

	ai.tickCount.Add(1)

	if before.TargetID != after.TargetID && IsDebugEnabled() {
		slog.Debug("actor target changed",
			"actor", ai.name,
			"from", before.TargetID,
			"to", after.TargetID,
			"phase", after.Phase,
			"strategy", after.Strategy,
			"fallback", after.FallbackUsed)
	}

	if ai.attack != nil && after.HasTarget {
		ai.attack(ai.actorID, after.TargetID, dt)
	}
}

// TickCount returns number of ticks that reached the engine.
func (ai *TargetingAI) TickCount() uint64 {
	return ai.tickCount.Load()
}

// Status returns the engine status.
func (ai *TargetingAI) Status() targeting.Status {
	ai.mu.Lock()
	defer ai.mu.Unlock()
	return ai.engine.Status()
}

// Snapshot returns the engine snapshot.
func (ai *TargetingAI) Snapshot() targeting.Snapshot {
	ai.mu.Lock()
	defer ai.mu.Unlock()
	return ai.engine.Snapshot()
}

// Restore loads a persisted snapshot into the engine.
func (ai *TargetingAI) Restore(s targeting.Snapshot) error {
	ai.mu.Lock()
	defer ai.mu.Unlock()
	return ai.engine.Restore(s)
}

// WithEngine runs fn with exclusive access to the engine, for operations
// such as SwitchStrategy or LockTarget issued from outside the tick loop.
func (ai *TargetingAI) WithEngine(fn func(e *targeting.Engine)) {
	ai.mu.Lock()
	defer ai.mu.Unlock()
	fn(ai.engine)
}
