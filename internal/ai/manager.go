package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
)

// DefaultTickInterval is used when the manager is created with interval <= 0.
const DefaultTickInterval = 100 * time.Millisecond

// TickManager steps the world and then ticks every registered controller,
// sequentially, from a single goroutine.
type TickManager struct {
	controllers     sync.Map // actorID -> Controller
	source          EntitySource
	interval        time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
	controllerCount atomic.Int32
	ticks           atomic.Uint64
}

// NewTickManager creates a tick manager pulling entities from source.
// source may be nil, in which case controllers tick over an empty set.
func NewTickManager(source EntitySource, interval time.Duration) *TickManager {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &TickManager{
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Register registers controller for actorID and starts it.
// A controller already registered under actorID is stopped and replaced.
func (m *TickManager) Register(actorID uint32, controller Controller) {
	if prev, loaded := m.controllers.Swap(actorID, controller); loaded {
		prev.(Controller).Stop()
	} else {
		m.controllerCount.Add(1)
	}
	controller.Start()

	slog.Debug("targeting controller registered", "actorID", actorID)
}

// Unregister stops and removes the controller of actorID.
func (m *TickManager) Unregister(actorID uint32) {
	value, ok := m.controllers.LoadAndDelete(actorID)
	if !ok {
		return
	}
	m.controllerCount.Add(-1)
	value.(Controller).Stop()

	slog.Debug("targeting controller unregistered", "actorID", actorID)
}

// Start runs the tick loop (blocks until context is canceled or Stop is called).
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("targeting tick manager started", "interval", m.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("targeting tick manager stopping", "ticks", m.ticks.Load())
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("targeting tick manager stopped", "ticks", m.ticks.Load())
			return nil

		case now := <-ticker.C:
			m.TickOnce(now)
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// TickOnce advances the world and ticks every controller once.
func (m *TickManager) TickOnce(now time.Time) {
	entities := m.stepSource(now)

	count := 0
	m.controllers.Range(func(_, value any) bool {
		value.(Controller).Tick(now, entities)
		count++
		return true
	})
	m.ticks.Add(1)

	if count > 0 && IsDebugEnabled() {
		slog.Debug("targeting tick completed",
			"controllers", count,
			"entities", len(entities))
	}
}

func (m *TickManager) stepSource(now time.Time) []*model.Entity {
	if m.source == nil {
		return nil
	}
	return m.source.Step(now)
}

// Count returns number of registered controllers.
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// Ticks returns number of completed ticks.
func (m *TickManager) Ticks() uint64 {
	return m.ticks.Load()
}

// GetController returns the controller of actorID.
func (m *TickManager) GetController(actorID uint32) (Controller, error) {
	value, ok := m.controllers.Load(actorID)
	if !ok {
		return nil, fmt.Errorf("controller not found for actorID %d", actorID)
	}
	return value.(Controller), nil
}

// Each calls fn for every registered controller until fn returns false.
func (m *TickManager) Each(fn func(actorID uint32, c Controller) bool) {
	m.controllers.Range(func(key, value any) bool {
		return fn(key.(uint32), value.(Controller))
	})
}
