// Package strategy holds the target selection heuristics and the registry
// that maps strategy names to them.
package strategy

import (
	"errors"
	"fmt"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/rangefilter"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/threat"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/unlock"
)

// ErrUnknownStrategy is returned for names that are not registered.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Handler picks one entity from an already range-filtered set.
// It returns nil only when valid is empty.
type Handler func(valid []*model.Entity, actor *model.Actor) *model.Entity

// Categories used by built-in strategies.
const (
	CategoryBasic     = "basic"
	CategoryHealth    = "health"
	CategoryDamage    = "damage"
	CategorySpeed     = "speed"
	CategoryDefense   = "defense"
	CategoryElemental = "elemental"
	CategoryAdvanced  = "advanced"
)

// Definition describes a registered strategy.
type Definition struct {
	Name        model.StrategyName
	Description string
	Category    string
	Handler     Handler
}

// Library is the strategy registry. Build one per engine (or share a
// read-only one); it is not safe for concurrent Register calls.
type Library struct {
	threat *threat.Model
	defs   map[model.StrategyName]Definition
	order  []model.StrategyName
	custom CustomSelector
}

// NewLibrary creates a library with all built-in strategies registered.
// A nil model uses threat.NewModel().
func NewLibrary(m *threat.Model) *Library {
	if m == nil {
		m = threat.NewModel()
	}
	l := &Library{
		threat: m,
		defs:   make(map[model.StrategyName]Definition, 16),
	}
	for _, def := range l.builtins() {
		_ = l.Register(def)
	}
	return l
}

// Threat returns the threat model used by threat-based strategies.
func (l *Library) Threat() *threat.Model {
	return l.threat
}

// Register adds or replaces a strategy. Replacing keeps its position in Names.
func (l *Library) Register(def Definition) error {
	if def.Name == "" {
		return errors.New("registering strategy: empty name")
	}
	if def.Handler == nil {
		return fmt.Errorf("registering strategy %q: nil handler", def.Name)
	}
	if def.Category == "" {
		def.Category = CategoryAdvanced
	}
	if _, exists := l.defs[def.Name]; !exists {
		l.order = append(l.order, def.Name)
	}
	l.defs[def.Name] = def
	return nil
}

// Unregister removes a strategy. Returns false if it was not registered.
func (l *Library) Unregister(name model.StrategyName) bool {
	if _, ok := l.defs[name]; !ok {
		return false
	}
	delete(l.defs, name)
	for i, n := range l.order {
		if n == name {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// Lookup returns the definition registered under name.
func (l *Library) Lookup(name model.StrategyName) (Definition, bool) {
	def, ok := l.defs[name]
	return def, ok
}

// Has reports whether name is registered.
func (l *Library) Has(name model.StrategyName) bool {
	_, ok := l.defs[name]
	return ok
}

// Names returns registered names in registration order.
func (l *Library) Names() []model.StrategyName {
	return append([]model.StrategyName(nil), l.order...)
}

// Descriptions returns the description of every registered strategy.
func (l *Library) Descriptions() map[model.StrategyName]string {
	out := make(map[model.StrategyName]string, len(l.defs))
	for name, def := range l.defs {
		out[name] = def.Description
	}
	return out
}

// Category returns the strategy's category, or "" if unknown.
func (l *Library) Category(name model.StrategyName) string {
	return l.defs[name].Category
}

// IsUnlocked reports whether name is registered and unlocked by p.
// A nil provider unlocks everything registered.
func (l *Library) IsUnlocked(name model.StrategyName, p unlock.Provider) bool {
	if !l.Has(name) {
		return false
	}
	return p == nil || p.StrategyUnlocked(name)
}

// Select range-filters entities and applies strategy name.
func (l *Library) Select(name model.StrategyName, entities []*model.Entity, actor *model.Actor) (*model.Entity, error) {
	return l.Apply(name, rangefilter.Filter(entities, actor), actor)
}

// Apply runs strategy name over an already-filtered set.
func (l *Library) Apply(name model.StrategyName, valid []*model.Entity, actor *model.Actor) (*model.Entity, error) {
	def, ok := l.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	if len(valid) == 0 {
		return nil, nil
	}
	return def.Handler(valid, actor), nil
}
