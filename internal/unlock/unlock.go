// Package unlock answers whether a strategy or persistence mode is available
// to an actor. Progression bookkeeping lives elsewhere; this package only
// exposes the query boundary and static implementations of it.
package unlock

import (
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
)

// Provider reports feature availability. Queried synchronously every time
// a strategy or mode is about to be used as the primary choice.
type Provider interface {
	StrategyUnlocked(name model.StrategyName) bool
	ModeUnlocked(mode model.PersistenceMode) bool
}

// allowAll unlocks everything.
type allowAll struct{}

func (allowAll) StrategyUnlocked(model.StrategyName) bool { return true }
func (allowAll) ModeUnlocked(model.PersistenceMode) bool  { return true }

// AllowAll returns a provider that unlocks every strategy and mode.
func AllowAll() Provider {
	return allowAll{}
}

// Static is a fixed set of unlocked strategies and modes.
// An empty set of modes unlocks every mode.
type Static struct {
	strategies map[model.StrategyName]struct{}
	modes      map[model.PersistenceMode]struct{}
}

// NewStatic creates a provider unlocking exactly the given names.
func NewStatic(strategies []model.StrategyName, modes []model.PersistenceMode) *Static {
	s := &Static{
		strategies: make(map[model.StrategyName]struct{}, len(strategies)),
		modes:      make(map[model.PersistenceMode]struct{}, len(modes)),
	}
	for _, name := range strategies {
		s.strategies[name] = struct{}{}
	}
	for _, m := range modes {
		s.modes[m] = struct{}{}
	}
	return s
}

// StrategyUnlocked implements Provider.
func (s *Static) StrategyUnlocked(name model.StrategyName) bool {
	_, ok := s.strategies[name]
	return ok
}

// ModeUnlocked implements Provider.
func (s *Static) ModeUnlocked(mode model.PersistenceMode) bool {
	if len(s.modes) == 0 {
		return true
	}
	_, ok := s.modes[mode]
	return ok
}

// Unlock adds a strategy to the set.
func (s *Static) Unlock(name model.StrategyName) {
	s.strategies[name] = struct{}{}
}

// Lock removes a strategy from the set.
func (s *Static) Lock(name model.StrategyName) {
	delete(s.strategies, name)
}
