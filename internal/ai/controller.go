package ai

import (
	"time"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
)

// Controller represents a per-actor controller driven by TickManager.
type Controller interface {
	// Start starts the controller
	Start()

	// Stop stops the controller
	Stop()

	// Tick performs one decision step over this tick's entity snapshot.
	// entities must not be retained after Tick returns.
	Tick(now time.Time, entities []*model.Entity)
}

// EntitySource advances the world by one tick and returns its entities.
type EntitySource interface {
	Step(now time.Time) []*model.Entity
}
